package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// UserLookup loads a user by id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (core.User, error)
}

// Resolver turns an Authorization header into a user, caching lookups.
type Resolver struct {
	issuer *Issuer
	users  UserLookup
	cache  cache.Cache[core.User]
}

// NewResolver builds a resolver. A nil cache disables caching.
func NewResolver(issuer *Issuer, users UserLookup, c cache.Cache[core.User]) *Resolver {
	return &Resolver{issuer: issuer, users: users, cache: c}
}

// Resolve validates a "Bearer <token>" header value and loads its user.
func (r *Resolver) Resolve(ctx context.Context, header string) (core.User, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return core.User{}, ErrMissingToken
	}
	id, err := r.issuer.Verify(strings.TrimSpace(token))
	if err != nil {
		return core.User{}, err
	}

	if r.cache != nil {
		if u, ok := r.cache.Get(id); ok {
			return u, nil
		}
	}
	u, err := r.users.GetUserByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("%w: unknown user", ErrInvalidToken)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	if r.cache != nil {
		r.cache.Set(id, u)
	}
	return u, nil
}

type userKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the user stored by the middleware.
func UserFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey{}).(core.User)
	return u, ok
}

// Middleware rejects requests without a valid bearer token by calling
// onFail, and otherwise forwards them with the user in the context.
func Middleware(r *Resolver, onFail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			u, err := r.Resolve(req.Context(), req.Header.Get("Authorization"))
			if err != nil {
				slog.DebugContext(req.Context(), "Authentication failed", "path", req.URL.Path, "error", err)
				onFail(w, req, err)
				return
			}
			next.ServeHTTP(w, req.WithContext(WithUser(req.Context(), u)))
		})
	}
}

// Package http exposes the fintrack JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// Ports the handlers depend on.
type (
	SummaryService interface {
		ComputeSummary(ctx context.Context, userID string, r core.DateRange) (dashboard.Summary, error)
	}

	TransactionService interface {
		Create(ctx context.Context, owner string, kind core.Kind, in services.CreateInput) (core.Transaction, error)
		List(ctx context.Context, q store.Query, page, limit int) (services.ListResult, error)
		Delete(ctx context.Context, owner string, kind core.Kind, id string) error
		Export(ctx context.Context, owner string, kind core.Kind) ([]byte, error)
	}

	AccountService interface {
		Register(ctx context.Context, name, email, password string) (services.Session, error)
		Login(ctx context.Context, email, password string) (services.Session, error)
		Me(ctx context.Context, id string) (core.User, error)
	}
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.health.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not found")
}

// withTimeout bounds the request context by the configured query timeout.
func (s *Server) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.queryTimeout)
}

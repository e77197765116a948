package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func newAuthService() (*AuthService, *auth.Issuer) {
	iss := auth.NewIssuer("0123456789abcdef", time.Hour)
	svc := NewAuthService(memory.New(), iss)
	svc.cost = bcrypt.MinCost
	return svc, iss
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, iss := newAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Ada", " Ada@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ada@example.com" || reg.User.PasswordHash == "secret1" {
		t.Fatalf("user = %+v", reg.User)
	}
	if sub, err := iss.Verify(reg.Token); err != nil || sub != reg.User.ID {
		t.Fatalf("token subject = %q, err = %v", sub, err)
	}

	login, err := svc.Login(ctx, "ADA@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Fatalf("login user = %+v", login.User)
	}

	me, err := svc.Me(ctx, reg.User.ID)
	if err != nil || me.Name != "Ada" {
		t.Fatalf("Me = %+v, %v", me, err)
	}
}

func TestAuthService_RegisterErrors(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, user, email, password string
		want                        error
	}{
		{"missing name", "", "b@example.com", "secret1", core.ErrMissingFields},
		{"missing password", "Bob", "b@example.com", "", core.ErrMissingFields},
		{"bad email", "Bob", "not-an-email", "secret1", core.ErrInvalidEmail},
		{"short password", "Bob", "b@example.com", "12345", core.ErrWeakPassword},
		{"duplicate email", "Ada2", "ADA@example.com", "secret1", core.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.user, tt.email, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthService_LoginErrors(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()
	_, _ = svc.Register(ctx, "Ada", "ada@example.com", "secret1")

	tests := []struct {
		name, email, password string
		want                  error
	}{
		{"unknown email", "zed@example.com", "secret1", core.ErrInvalidCredentials},
		{"wrong password", "ada@example.com", "secret2", core.ErrInvalidCredentials},
		{"missing fields", "", "", core.ErrMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.email, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("Login() error = %v, want %v", err, tt.want)
			}
		})
	}
}

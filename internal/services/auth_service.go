package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const minPasswordLen = 6

// TokenIssuer signs a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService registers and authenticates users.
type AuthService struct {
	users  store.UserStore
	tokens TokenIssuer
	cost   int
}

func NewAuthService(users store.UserStore, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Session is a user together with a freshly issued token.
type Session struct {
	User  core.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return Session{}, core.ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, core.ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return Session{}, core.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, core.User{Name: name, Email: email, PasswordHash: string(hash)})
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "user_id", u.ID)
	return s.session(u)
}

// Login returns core.ErrInvalidCredentials for an unknown email or a wrong
// password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, core.ErrMissingFields
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, core.ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *AuthService) Me(ctx context.Context, id string) (core.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AuthService) session(u core.User) (Session, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok}, nil
}

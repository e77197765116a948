package http

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/services"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

func newSessionResponse(s services.Session) sessionResponse {
	return sessionResponse{ID: s.User.ID, Name: s.User.Name, Email: s.User.Email, Token: s.Token}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	sess, err := s.accounts.Register(ctx, sanitizeInput(req.Name), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	sess, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	me, err := s.accounts.Me(ctx, u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: me.ID, Name: me.Name, Email: me.Email})
}

package http

import (
	"context"
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// errorBody is the failure payload. Stack is always null.
type errorBody struct {
	Message string  `json:"message"`
	Stack   *string `json:"stack"`
}

type apiError struct {
	status  int
	message string
}

var errorTable = []struct {
	target error
	apiError
}{
	{core.ErrMissingFields, apiError{http.StatusBadRequest, "Please add all fields"}},
	{core.ErrInvalidAmount, apiError{http.StatusBadRequest, "Amount must be a positive number"}},
	{core.ErrInvalidCategory, apiError{http.StatusBadRequest, "Invalid category"}},
	{core.ErrEmptyTitle, apiError{http.StatusBadRequest, "Title is required"}},
	{core.ErrTitleTooLong, apiError{http.StatusBadRequest, "Title must be at most 200 characters"}},
	{core.ErrInvalidKind, apiError{http.StatusBadRequest, "Invalid transaction type"}},
	{core.ErrInvalidRange, apiError{http.StatusBadRequest, "Invalid date range"}},
	{core.ErrInvalidDate, apiError{http.StatusBadRequest, "Invalid date"}},
	{core.ErrInvalidEmail, apiError{http.StatusBadRequest, "Invalid email address"}},
	{core.ErrWeakPassword, apiError{http.StatusBadRequest, "Password must be at least 6 characters"}},
	{errBadRequestBody, apiError{http.StatusBadRequest, "Invalid request body"}},
	{core.ErrForbidden, apiError{http.StatusUnauthorized, "User not authorized"}},
	{auth.ErrMissingToken, apiError{http.StatusUnauthorized, "Not authorized, no token"}},
	{auth.ErrInvalidToken, apiError{http.StatusUnauthorized, "Not authorized, token failed"}},
	{core.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "Invalid credentials"}},
	{core.ErrNotFound, apiError{http.StatusNotFound, "Not found"}},
	{core.ErrDuplicateEmail, apiError{http.StatusConflict, "User already exists"}},
	{context.DeadlineExceeded, apiError{http.StatusGatewayTimeout, "Request timed out"}},
}

// classify maps err to a status and client-safe message. Unknown errors are
// 500s with a generic message.
func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return e.apiError
		}
	}
	return apiError{http.StatusInternalServerError, "Internal server error"}
}

// writeError logs server-side failures with the underlying error and writes
// the JSON failure body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := classify(err)
	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithError(err)
	if u, ok := auth.UserFromContext(r.Context()); ok {
		fields = fields.WithUser(u.ID)
	}
	if ae.status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", fields...)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", append(fields, "status_code", ae.status)...)
	}
	writeMessage(w, ae.status, ae.message)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	NewJSONResponse().Status(status).Body(errorBody{Message: message}).Write(w)
}

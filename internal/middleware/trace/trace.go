// Package trace tags each request with an id and a request-scoped logger.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/log"
)

const HeaderRequestID = "X-Request-ID"

type contextKey struct{}

// Incoming ids are honoured only when they look like ids.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type Middleware struct {
	base      *log.Logger
	extractIP func(*http.Request) string
	metrics   Metrics
}

// Metrics counts traced requests.
type Metrics struct {
	TotalRequests  atomic.Int64
	ServerErrors   atomic.Int64
	TotalLatencyMs atomic.Int64
}

// NewMiddleware builds request loggers from base (the context logger when
// nil) and resolves client addresses with extractIP.
func NewMiddleware(base *log.Logger, extractIP func(*http.Request) string) *Middleware {
	if base == nil {
		base = log.FromContext(context.Background())
	}
	return &Middleware{base: base.WithComponent(log.ComponentHTTP), extractIP: extractIP}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		logger := m.base.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), contextKey{}, requestID)
		ctx = log.WithLogger(ctx, logger)
		r = r.WithContext(ctx)

		reqFields := log.NewFields().
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"))
		logger.DebugContext(ctx, "HTTP request started", reqFields...)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		durationMs := time.Since(start).Milliseconds()
		m.metrics.TotalRequests.Add(1)
		m.metrics.TotalLatencyMs.Add(durationMs)
		if rw.statusCode >= 500 {
			m.metrics.ServerErrors.Add(1)
		}

		logger.Log(ctx, levelFor(rw.statusCode), "HTTP request completed",
			reqFields.WithHTTPResponse(rw.statusCode, durationMs)...)
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// GetRequestID returns the id stored by the middleware, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// Stats returns request count, server error count and mean latency.
func (m *Middleware) Stats() (total, serverErrors int64, avgLatency time.Duration) {
	total = m.metrics.TotalRequests.Load()
	serverErrors = m.metrics.ServerErrors.Load()
	if total > 0 {
		avgLatency = time.Duration(m.metrics.TotalLatencyMs.Load()/total) * time.Millisecond
	}
	return total, serverErrors, avgLatency
}

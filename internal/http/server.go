package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/store"
)

// Services are the application ports behind the routes.
type Services struct {
	Summaries    SummaryService
	Transactions TransactionService
	Accounts     AccountService
	// Health is pinged by /readyz. Nil reports ready.
	Health store.Pinger
}

type Options struct {
	QueryTimeout      time.Duration
	CORSAllowedOrigin string
	Logger            *log.Logger
	Resolver          *auth.Resolver
	// Limiter throttles the credential endpoints. Nil disables limiting.
	Limiter  *ratelimit.Limiter
	Detector *security.Detector
}

type Server struct {
	http.Server

	summaries    SummaryService
	transactions TransactionService
	accounts     AccountService
	health       store.Pinger

	logger       *log.Logger
	queryTimeout time.Duration
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
}

func NewServer(addr string, svc Services, opts Options) *Server {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}
	if opts.CORSAllowedOrigin == "" {
		opts.CORSAllowedOrigin = "*"
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(context.Background())
	}
	if opts.Detector == nil {
		opts.Detector = security.NewDetector()
	}

	s := &Server{
		summaries:    svc.Summaries,
		transactions: svc.Transactions,
		accounts:     svc.Accounts,
		health:       svc.Health,
		logger:       opts.Logger.WithComponent(log.ComponentHTTP),
		queryTimeout: opts.QueryTimeout,
		limiter:      opts.Limiter,
		detector:     opts.Detector,
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	protect := auth.Middleware(opts.Resolver, writeError)
	throttle := func(h http.Handler) http.Handler { return h }
	if s.limiter != nil {
		throttle = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.NewFields().WithClientIP(s.detector.ExtractClientIP(r)).WithHTTPRequest(r.Method, r.URL.Path, "", "")...)
			writeMessage(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("POST /auth/register", throttle(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /auth/login", throttle(http.HandlerFunc(s.handleLogin)))
	mux.Handle("GET /auth/me", protect(http.HandlerFunc(s.handleMe)))

	mux.Handle("GET /dashboard/summary", protect(http.HandlerFunc(s.handleSummary)))

	for _, kind := range core.Kinds() {
		tr := transactionRoutes{s: s, kind: kind}
		base := "/" + kind.String()
		mux.Handle("POST "+base+"/add", protect(http.HandlerFunc(tr.handleAdd)))
		mux.Handle("GET "+base+"/all", protect(http.HandlerFunc(tr.handleList)))
		mux.Handle("GET "+base+"/export", protect(http.HandlerFunc(tr.handleExport)))
		mux.Handle("DELETE "+base+"/{id}", protect(http.HandlerFunc(tr.handleDelete)))
	}
	mux.HandleFunc("/", notFound)

	var handler http.Handler = mux
	handler = s.detector.Middleware(handler)
	handler = security.CORS(opts.CORSAllowedOrigin)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = recoverer(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2*opts.QueryTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// recoverer turns a handler panic into a 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panic",
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()))
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Shutdown drains connections and stops the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	total, serverErrors, avg := s.tracer.Stats()
	s.logger.InfoContext(ctx, "HTTP server shutting down",
		"requests", total,
		"server_errors", serverErrors,
		"avg_latency", avg.String(),
		"suspicious_requests", s.detector.Suspicious())
	return s.Server.Shutdown(ctx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/services"
)

const (
	userCacheSize = 1000
	userCacheTTL  = time.Minute
)

func main() {
	cli.LoadEnvFile()

	boot := config.Load()
	logger := cli.SetupLogger(boot.LogLevel, boot.LogFormat, log.ComponentApp)
	cfg := cli.MustLoadConfig(logger, cli.ModeAPI)

	ctx := context.Background()
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	userCache := cache.NewLRUCache[core.User](userCacheSize, userCacheTTL)
	caches := cache.NewManager()
	caches.Register("users", userCache)
	caches.Start(userCacheTTL)

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Limit:           cfg.RateLimitPerMinute,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	})

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Summaries:    dashboard.NewEngine(res.Store),
		Transactions: services.NewTransactionService(res.Store, res.Publisher),
		Accounts:     services.NewAuthService(res.Store, issuer),
		Health:       res.Store,
	}, apphttp.Options{
		QueryTimeout:      cfg.QueryTimeout,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Logger:            logger,
		Resolver:          auth.NewResolver(issuer, res.Store, userCache),
		Limiter:           limiter,
		Detector:          security.NewDetector(),
	})
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"sync_enabled", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

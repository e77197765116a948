// Package cli holds the start-up steps shared by cmd/fintrack and
// cmd/fintrack-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

// Mode selects which validation a binary runs.
type Mode int

const (
	ModeAPI Mode = iota
	ModeWorker
)

func (m Mode) String() string {
	if m == ModeWorker {
		return "worker"
	}
	return "api"
}

// LoadEnvFile loads .env (or the given files) for local development.
// Missing files are ignored.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT
// values and installs it as the slog default.
func SetupLogger(level, format, component string) *log.Logger {
	logger := log.New(log.Options{
		Level:     log.ParseLevel(level),
		Format:    format,
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadConfig reads the environment and validates it for mode.
func LoadConfig(mode Mode) (*config.Config, error) {
	cfg := config.Load()
	var err error
	switch mode {
	case ModeWorker:
		err = cfg.ValidateWorker()
	default:
		err = cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mode, err)
	}
	return cfg, nil
}

// MustLoadConfig is LoadConfig that exits the process on failure.
func MustLoadConfig(logger *log.Logger, mode Mode) *config.Config {
	cfg, err := LoadConfig(mode)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// cleanup runs with a timeout-bounded context after cancellation and done
// closes when it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return shutdownOn(sigChan, logger, timeout, cleanup)
}

func shutdownOn(sigChan <-chan os.Signal, logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	boot := config.Load()
	logger := cli.SetupLogger(boot.LogLevel, boot.LogFormat, log.ComponentWorker)
	cfg := cli.MustLoadConfig(logger, cli.ModeWorker)

	logger.Info("Starting fintrack-worker",
		"queue", cfg.AMQPQueue,
		"prefetch", cfg.SyncBatchSize,
		"layout_refresh", cfg.SyncInterval.String())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	mirror, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		amqp.WithPrefetch(cfg.SyncBatchSize))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	syncWorker := worker.NewSyncWorker(mirror, cfg.SyncInterval)
	if err := syncWorker.Run(ctx, client); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Sync worker stopped", "error", err)
		client.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}

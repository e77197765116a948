// Package worker mirrors stored transactions into the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
)

// Consumer delivers sync messages to a handler until ctx is done.
type Consumer interface {
	ConsumeTransactionSync(ctx context.Context, handler amqp.Handler) error
}

// SyncWorker applies transaction sync messages to a spreadsheet mirror.
type SyncWorker struct {
	mirror          sheets.Mirror
	refreshInterval time.Duration
}

func NewSyncWorker(mirror sheets.Mirror, refreshInterval time.Duration) *SyncWorker {
	return &SyncWorker{mirror: mirror, refreshInterval: refreshInterval}
}

// HandleMessage mirrors one create or delete.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"kind", msg.Kind,
		"op", msg.Op,
		"user_id", msg.Owner)

	switch msg.Op {
	case amqp.OpCreate:
		if msg.Transaction == nil {
			return fmt.Errorf("create message %s carries no transaction", msg.ID)
		}
		if err := w.mirror.AppendTransaction(ctx, *msg.Transaction); err != nil {
			return fmt.Errorf("mirror create %s: %w", msg.ID, err)
		}
	case amqp.OpDelete:
		if err := w.mirror.DeleteTransaction(ctx, msg.Kind, msg.ID); err != nil {
			return fmt.Errorf("mirror delete %s: %w", msg.ID, err)
		}
	default:
		return fmt.Errorf("unknown operation %q", msg.Op)
	}
	return nil
}

// Run consumes messages and, when the mirror supports it, re-checks the
// spreadsheet layout every refresh interval. It returns when ctx is done.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	g, gctx := errgroup.WithContext(ctx)

	if r, ok := w.mirror.(sheets.LayoutRefresher); ok {
		if err := r.EnsureLayout(ctx); err != nil {
			return fmt.Errorf("prepare mirror layout: %w", err)
		}
		if w.refreshInterval > 0 {
			g.Go(func() error {
				w.refreshLayout(gctx, r)
				return nil
			})
		}
	}

	g.Go(func() error {
		return consumer.ConsumeTransactionSync(gctx, w.HandleMessage)
	})
	return g.Wait()
}

func (w *SyncWorker) refreshLayout(ctx context.Context, r sheets.LayoutRefresher) {
	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.EnsureLayout(ctx); err != nil {
				slog.WarnContext(ctx, "Mirror layout refresh failed", "error", err)
			}
		}
	}
}

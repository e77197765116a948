package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/store"
)

// Publisher announces transaction changes to the sync worker.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error
}

// TransactionStore is the persistence surface the service needs.
type TransactionStore interface {
	store.TransactionWriter
	store.TransactionReader
}

// TransactionService orchestrates transaction operations across the store
// and the sync queue.
type TransactionService struct {
	store     TransactionStore
	publisher Publisher
	now       func() time.Time
}

// NewTransactionService wires the service. publisher may be nil, in which
// case no sync messages are sent.
func NewTransactionService(s TransactionStore, publisher Publisher) *TransactionService {
	return &TransactionService{store: s, publisher: publisher, now: time.Now}
}

// CreateInput is the caller-supplied part of a new transaction.
type CreateInput struct {
	Title    string
	Amount   core.Money
	Category string
	Date     time.Time
}

// Create validates and stores a transaction, then publishes a sync message.
// A zero Date defaults to now. Publishing failures are logged, never returned.
func (s *TransactionService) Create(ctx context.Context, owner string, kind core.Kind, in CreateInput) (core.Transaction, error) {
	if strings.TrimSpace(in.Title) == "" || in.Amount.Cents == 0 || strings.TrimSpace(in.Category) == "" {
		return core.Transaction{}, core.ErrMissingFields
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	tx := core.Transaction{
		Owner:    owner,
		Kind:     kind,
		Title:    strings.TrimSpace(in.Title),
		Amount:   in.Amount,
		Category: strings.TrimSpace(in.Category),
		Date:     date.UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", kind, err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", saved.ID,
		"kind", kind,
		"user_id", owner,
		"amount_cents", saved.Amount.Cents,
		"category", saved.Category)

	s.publish(ctx, amqp.NewCreateMessage(saved))
	return saved, nil
}

// ListResult is one page of a date-descending listing.
type ListResult struct {
	Items      []core.Transaction
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// List returns the page-th window (1-based) of the owner's records.
func (s *TransactionService) List(ctx context.Context, q store.Query, page, limit int) (ListResult, error) {
	if q.Owner == "" {
		return ListResult{}, core.ErrEmptyOwner
	}
	if page < 1 || limit < 1 {
		return ListResult{}, fmt.Errorf("invalid page %d or limit %d", page, limit)
	}

	total, err := s.store.CountTransactions(ctx, q)
	if err != nil {
		return ListResult{}, fmt.Errorf("count %s: %w", q.Kind, err)
	}
	items, err := s.store.ListTransactions(ctx, q, store.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return ListResult{}, fmt.Errorf("list %s: %w", q.Kind, err)
	}
	if items == nil {
		items = []core.Transaction{}
	}

	return ListResult{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// Delete removes the owner's record. It returns core.ErrNotFound when the
// record is absent and core.ErrForbidden when another user owns it.
func (s *TransactionService) Delete(ctx context.Context, owner string, kind core.Kind, id string) error {
	tx, err := s.store.GetTransaction(ctx, kind, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrNotFound
		}
		return fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	if tx.Owner != owner {
		slog.WarnContext(ctx, "Delete refused for non-owner", "id", id, "kind", kind, "user_id", owner)
		return core.ErrForbidden
	}

	if err := s.store.DeleteTransaction(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "kind", kind, "user_id", owner)

	s.publish(ctx, amqp.NewDeleteMessage(kind, id, owner))
	return nil
}

// Export renders every record of the kind owned by owner, newest first.
func (s *TransactionService) Export(ctx context.Context, owner string, kind core.Kind) ([]byte, error) {
	items, err := s.store.ListTransactions(ctx, store.Query{Owner: owner, Kind: kind}, store.Page{})
	if err != nil {
		return nil, fmt.Errorf("list %s for export: %w", kind, err)
	}
	b, err := export.Workbook(kind, items)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", kind, err)
	}
	return b, nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.TransactionSyncMessage) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping sync message", "id", msg.ID)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", msg.ID,
			"op", msg.Op,
			"error", err)
	}
}

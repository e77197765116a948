package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateTransaction implements store.TransactionWriter
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := r.now().UnixMilli()

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:          tx.ID,
		OwnerID:     tx.Owner,
		Kind:        tx.Kind.String(),
		Title:       tx.Title,
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		DateMs:      tx.Date.UnixMilli(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", tx.Kind, err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"kind", row.Kind,
		"amount_cents", row.AmountCents,
		"category", row.Category)

	return toCore(row), nil
}

// DeleteTransaction implements store.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, kind.String(), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetTransaction implements store.TransactionReader
func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, kind.String(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s: %w", kind, err)
	}
	return toCore(row), nil
}

// ListTransactions implements store.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context, q store.Query, p store.Page) ([]core.Transaction, error) {
	limit := int64(p.Limit)
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		RangeParams: rangeParams(q),
		Limit:       limit,
		Offset:      int64(p.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", q.Kind, err)
	}
	return toCoreSlice(rows), nil
}

// CountTransactions implements store.TransactionReader
func (r *SQLiteRepository) CountTransactions(ctx context.Context, q store.Query) (int64, error) {
	n, err := r.queries.CountTransactions(ctx, rangeParams(q))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Kind, err)
	}
	return n, nil
}

// SumAmount implements store.Aggregator
func (r *SQLiteRepository) SumAmount(ctx context.Context, q store.Query) (core.Money, error) {
	total, err := r.queries.SumAmount(ctx, rangeParams(q))
	if err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", q.Kind, overflow(err))
	}
	return core.Money{Cents: total}, nil
}

// RecentTransactions implements store.Aggregator
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, q store.Query, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		RangeParams: RangeParams{OwnerID: q.Owner, Kind: q.Kind.String()},
		Limit:       int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("recent %s: %w", q.Kind, err)
	}
	return toCoreSlice(rows), nil
}

// SumByDay implements store.Aggregator
func (r *SQLiteRepository) SumByDay(ctx context.Context, q store.Query) ([]core.DayTotal, error) {
	rows, err := r.queries.SumByDay(ctx, rangeParams(q))
	if err != nil {
		return nil, fmt.Errorf("sum %s by day: %w", q.Kind, overflow(err))
	}
	out := make([]core.DayTotal, len(rows))
	for i, row := range rows {
		out[i] = core.DayTotal{Day: row.Day, Total: core.Money{Cents: row.Total}}
	}
	return out, nil
}

// SumByCategory implements store.Aggregator
func (r *SQLiteRepository) SumByCategory(ctx context.Context, q store.Query) ([]core.CategoryTotal, error) {
	rows, err := r.queries.SumByCategory(ctx, rangeParams(q))
	if err != nil {
		return nil, fmt.Errorf("sum %s by category: %w", q.Kind, overflow(err))
	}
	out := make([]core.CategoryTotal, len(rows))
	for i, row := range rows {
		out[i] = core.CategoryTotal{Category: row.Category, Total: core.Money{Cents: row.Total}}
	}
	return out, nil
}

// CreateUser implements store.UserStore
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		ID:           u.ID,
		Name:         u.Name,
		Email:        strings.ToLower(strings.TrimSpace(u.Email)),
		PasswordHash: u.PasswordHash,
		CreatedAt:    r.now().UnixMilli(),
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.User{}, core.ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "id", row.ID)
	return userToCore(row), nil
}

// GetUserByEmail implements store.UserStore
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return userToCore(row), nil
}

// GetUserByID implements store.UserStore
func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return userToCore(row), nil
}

func rangeParams(q store.Query) RangeParams {
	p := RangeParams{OwnerID: q.Owner, Kind: q.Kind.String()}
	if !q.Range.From.IsZero() {
		p.FromMs = sql.NullInt64{Int64: q.Range.From.UnixMilli(), Valid: true}
	}
	if !q.Range.Until.IsZero() {
		p.UntilMs = sql.NullInt64{Int64: untilMillis(q.Range.Until), Valid: true}
	}
	return p
}

// untilMillis rounds an exclusive bound up to the next millisecond so that
// sub-millisecond bounds keep records stored at that millisecond.
func untilMillis(t time.Time) int64 {
	ms := t.UnixMilli()
	if t.Sub(time.UnixMilli(ms)) > 0 {
		ms++
	}
	return ms
}

// SUM raises "integer overflow" instead of wrapping.
func overflow(err error) error {
	if err != nil && strings.Contains(err.Error(), "integer overflow") {
		return fmt.Errorf("%w: %v", core.ErrAmountOverflow, err)
	}
	return err
}

func toCore(row Transaction) core.Transaction {
	return core.Transaction{
		ID:        row.ID,
		Owner:     row.OwnerID,
		Kind:      core.Kind(row.Kind),
		Title:     row.Title,
		Amount:    core.Money{Cents: row.AmountCents},
		Category:  row.Category,
		Date:      time.UnixMilli(row.DateMs).UTC(),
		CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(row.UpdatedAt).UTC(),
	}
}

func toCoreSlice(rows []Transaction) []core.Transaction {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = toCore(row)
	}
	return out
}

func userToCore(row User) core.User {
	return core.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    time.UnixMilli(row.CreatedAt).UTC(),
	}
}

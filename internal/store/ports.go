// Package store declares the persistence ports shared by the SQLite, MongoDB
// and in-memory backends.
package store

import (
	"context"

	"fintrack/internal/core"
)

// Query scopes a read to one owner and kind, optionally bounded by date.
type Query struct {
	Owner string
	Kind  core.Kind
	Range core.DateRange
}

// Page selects a window of a date-descending listing.
type Page struct {
	Limit  int
	Offset int
}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, kind core.Kind, id string) error
	}

	TransactionReader interface {
		// GetTransaction returns core.ErrNotFound when no record of the kind has id.
		GetTransaction(ctx context.Context, kind core.Kind, id string) (core.Transaction, error)
		// ListTransactions returns matching records sorted by date descending.
		// A zero Page returns every match.
		ListTransactions(ctx context.Context, q Query, p Page) ([]core.Transaction, error)
		CountTransactions(ctx context.Context, q Query) (int64, error)
	}

	// Aggregator answers the grouped reads behind the dashboard. Empty inputs
	// produce a zero sum and empty slices, never an error.
	Aggregator interface {
		SumAmount(ctx context.Context, q Query) (core.Money, error)
		// RecentTransactions returns at most limit records, newest first,
		// ignoring q.Range.
		RecentTransactions(ctx context.Context, q Query, limit int) ([]core.Transaction, error)
		// SumByDay groups by UTC calendar day, ascending.
		SumByDay(ctx context.Context, q Query) ([]core.DayTotal, error)
		// SumByCategory groups by category, ascending by category name.
		SumByCategory(ctx context.Context, q Query) ([]core.CategoryTotal, error)
	}

	UserStore interface {
		// CreateUser returns core.ErrDuplicateEmail when the email is taken.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		GetUserByID(ctx context.Context, id string) (core.User, error)
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Store is the full capability set a backend provides.
type Store interface {
	TransactionWriter
	TransactionReader
	Aggregator
	UserStore
	Pinger
	Close() error
}

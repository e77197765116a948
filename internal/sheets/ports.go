// Package sheets declares the spreadsheet mirror that receives a copy of
// every stored transaction.
package sheets

import (
	"context"
	"strings"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// Mirror keeps one tab per transaction kind in sync with the primary store.
	// Both operations are idempotent: appending an id that is already present
	// and deleting an id that is absent are no-ops.
	Mirror interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, kind core.Kind, id string) error
	}

	// LayoutRefresher is implemented by mirrors whose tab layout can drift.
	LayoutRefresher interface {
		EnsureLayout(ctx context.Context) error
	}
)

// Header is the first row written to every mirror tab.
var Header = []string{"ID", "Owner", "Title", "Amount", "Category", "Date"}

// TabName is the mirror tab for a kind, e.g. "Incomes".
func TabName(k core.Kind) string {
	p := k.Plural()
	if p == "" {
		return ""
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

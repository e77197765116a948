// Package memory is an in-process spreadsheet mirror used in tests and when
// no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows map[core.Kind][]core.Transaction
}

var _ ports.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[core.Kind][]core.Transaction)}
}

func (m *Mirror) AppendTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if indexOf(m.rows[tx.Kind], tx.ID) >= 0 {
		return nil
	}
	m.rows[tx.Kind] = append(m.rows[tx.Kind], tx)
	return nil
}

func (m *Mirror) DeleteTransaction(_ context.Context, kind core.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.rows[kind]
	if i := indexOf(rows, id); i >= 0 {
		m.rows[kind] = append(rows[:i:i], rows[i+1:]...)
	}
	return nil
}

// Rows returns a copy of the mirrored rows of a kind in insertion order.
func (m *Mirror) Rows(kind core.Kind) []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows[kind]...)
}

func indexOf(rows []core.Transaction, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Package memory is an in-process Store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu    sync.RWMutex
	items map[core.Kind][]core.Transaction
	users map[string]core.User
	now   func() time.Time
}

func New() *Store {
	return &Store{
		items: make(map[core.Kind][]core.Transaction),
		users: make(map[string]core.User),
		now:   time.Now,
	}
}

// CreateTransaction assigns an id and timestamps and stores the record.
func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Date = tx.Date.UTC()
	tx.CreatedAt, tx.UpdatedAt = now, now
	s.items[tx.Kind] = append(s.items[tx.Kind], tx)
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.items[kind]
	for i := range list {
		if list[i].ID == id {
			s.items[kind] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) GetTransaction(_ context.Context, kind core.Kind, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.items[kind] {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) ListTransactions(_ context.Context, q store.Query, p store.Page) ([]core.Transaction, error) {
	matches := s.match(q, true)
	sortNewestFirst(matches)
	if p.Offset > 0 {
		if p.Offset >= len(matches) {
			return []core.Transaction{}, nil
		}
		matches = matches[p.Offset:]
	}
	if p.Limit > 0 && len(matches) > p.Limit {
		matches = matches[:p.Limit]
	}
	return matches, nil
}

func (s *Store) CountTransactions(_ context.Context, q store.Query) (int64, error) {
	return int64(len(s.match(q, true))), nil
}

func (s *Store) SumAmount(_ context.Context, q store.Query) (core.Money, error) {
	var total core.Money
	for _, tx := range s.match(q, true) {
		var err error
		if total, err = total.Add(tx.Amount); err != nil {
			return core.Money{}, err
		}
	}
	return total, nil
}

func (s *Store) RecentTransactions(_ context.Context, q store.Query, limit int) ([]core.Transaction, error) {
	matches := s.match(q, false)
	sortNewestFirst(matches)
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) SumByDay(_ context.Context, q store.Query) ([]core.DayTotal, error) {
	sums := map[string]core.Money{}
	for _, tx := range s.match(q, true) {
		day := core.DayOf(tx.Date)
		next, err := sums[day].Add(tx.Amount)
		if err != nil {
			return nil, err
		}
		sums[day] = next
	}
	out := make([]core.DayTotal, 0, len(sums))
	for day, total := range sums {
		out = append(out, core.DayTotal{Day: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *Store) SumByCategory(_ context.Context, q store.Query) ([]core.CategoryTotal, error) {
	sums := map[string]core.Money{}
	for _, tx := range s.match(q, true) {
		next, err := sums[tx.Category].Add(tx.Amount)
		if err != nil {
			return nil, err
		}
		sums[tx.Category] = next
	}
	out := make([]core.CategoryTotal, 0, len(sums))
	for cat, total := range sums {
		out = append(out, core.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.User{}, core.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// match copies the records of q.Kind owned by q.Owner, applying q.Range
// when useRange is set.
func (s *Store) match(q store.Query, useRange bool) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0)
	for _, tx := range s.items[q.Kind] {
		if tx.Owner != q.Owner {
			continue
		}
		if useRange && !q.Range.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

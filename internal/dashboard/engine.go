// Package dashboard computes the per-user financial summary: totals, a merged
// recent-activity feed and time-windowed breakdowns.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const (
	// RecentLimit caps the recent-activity feed.
	RecentLimit = 5

	expenseWindow = 30 * 24 * time.Hour
	incomeWindow  = 60 * 24 * time.Hour
)

// Summary is the dashboard payload.
type Summary struct {
	TotalIncome        core.Money           `json:"totalIncome"`
	TotalExpense       core.Money           `json:"totalExpense"`
	TotalBalance       core.Money           `json:"totalBalance"`
	RecentTransactions []core.Transaction   `json:"recentTransactions"`
	ExpenseTrend       []core.DayTotal      `json:"last30DaysExpenses"`
	IncomeByCategory   []core.CategoryTotal `json:"last60DaysIncome"`
	ExpenseByCategory  []core.CategoryTotal `json:"last30DaysExpenseCategory"`
}

type Engine struct {
	store store.Aggregator
	now   func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now as the reference for the default windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(agg store.Aggregator, opts ...Option) *Engine {
	e := &Engine{store: agg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// windows holds the date range applied to each grouped read.
type windows struct {
	totals           core.DateRange
	expenseTrend     core.DateRange
	incomeByCategory core.DateRange
}

// windowsFor applies the defaulting rule: with no bound supplied totals are
// all-time and the breakdowns trail now by 30 (expenses) and 60 (income)
// days; with any bound supplied that range governs every grouped read.
func (e *Engine) windowsFor(r core.DateRange) windows {
	if !r.IsZero() {
		return windows{totals: r, expenseTrend: r, incomeByCategory: r}
	}
	now := e.now()
	return windows{
		expenseTrend:     core.Since(now.Add(-expenseWindow)),
		incomeByCategory: core.Since(now.Add(-incomeWindow)),
	}
}

// ComputeSummary runs every read concurrently and fails as a whole when any
// read fails. The recent feed is never range filtered.
func (e *Engine) ComputeSummary(ctx context.Context, userID string, r core.DateRange) (Summary, error) {
	if userID == "" {
		return Summary{}, core.ErrEmptyOwner
	}
	w := e.windowsFor(r)
	query := func(k core.Kind, rng core.DateRange) store.Query {
		return store.Query{Owner: userID, Kind: k, Range: rng}
	}

	var (
		incomeTotal, expenseTotal core.Money
		recentIncome, recentExp   []core.Transaction
		trend                     []core.DayTotal
		incomeCats, expenseCats   []core.CategoryTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		incomeTotal, err = e.store.SumAmount(gctx, query(core.Income, w.totals))
		return wrap("income total", err)
	})
	g.Go(func() (err error) {
		expenseTotal, err = e.store.SumAmount(gctx, query(core.Expense, w.totals))
		return wrap("expense total", err)
	})
	g.Go(func() (err error) {
		recentIncome, err = e.store.RecentTransactions(gctx, query(core.Income, core.DateRange{}), RecentLimit)
		return wrap("recent income", err)
	})
	g.Go(func() (err error) {
		recentExp, err = e.store.RecentTransactions(gctx, query(core.Expense, core.DateRange{}), RecentLimit)
		return wrap("recent expenses", err)
	})
	g.Go(func() (err error) {
		trend, err = e.store.SumByDay(gctx, query(core.Expense, w.expenseTrend))
		return wrap("expense trend", err)
	})
	g.Go(func() (err error) {
		incomeCats, err = e.store.SumByCategory(gctx, query(core.Income, w.incomeByCategory))
		return wrap("income by category", err)
	})
	g.Go(func() (err error) {
		expenseCats, err = e.store.SumByCategory(gctx, query(core.Expense, w.expenseTrend))
		return wrap("expense by category", err)
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("compute summary: %w", err)
	}

	balance, err := incomeTotal.Sub(expenseTotal)
	if err != nil {
		return Summary{}, fmt.Errorf("compute summary: balance: %w", err)
	}

	return Summary{
		TotalIncome:        incomeTotal,
		TotalExpense:       expenseTotal,
		TotalBalance:       balance,
		RecentTransactions: mergeRecent(recentIncome, recentExp, RecentLimit),
		ExpenseTrend:       nonNil(trend),
		IncomeByCategory:   nonNil(incomeCats),
		ExpenseByCategory:  nonNil(expenseCats),
	}, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

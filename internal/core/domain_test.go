package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"income", Income, true},
		{" Expense ", Expense, true},
		{"INCOME", Income, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestKindCategories(t *testing.T) {
	if !Income.HasCategory("Salary") || Income.HasCategory("Food") {
		t.Fatalf("income vocabulary mismatch: %v", Income.Categories())
	}
	if !Expense.HasCategory("Food") || Expense.HasCategory("Salary") {
		t.Fatalf("expense vocabulary mismatch: %v", Expense.Categories())
	}
	if !Income.HasCategory("Other") || !Expense.HasCategory("Other") {
		t.Fatal("both kinds accept Other")
	}
	if Expense.HasCategory("food") {
		t.Fatal("category match is case sensitive")
	}

	cats := Income.Categories()
	cats[0] = "mutated"
	if Income.Categories()[0] != "Salary" {
		t.Fatal("Categories must return a copy")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyAddOverflow(t *testing.T) {
	sum, err := Money{Cents: 100}.Add(Money{Cents: 250})
	if err != nil || sum.Cents != 350 {
		t.Fatalf("unexpected sum %d err=%v", sum.Cents, err)
	}
	if _, err := (Money{Cents: math.MaxInt64}).Add(Money{Cents: 1}); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	diff, err := Money{Cents: 80}.Sub(Money{Cents: 5200})
	if err != nil || diff.Cents != -5120 {
		t.Fatalf("unexpected diff %d err=%v", diff.Cents, err)
	}
	if _, err := (Money{Cents: math.MinInt64}).Sub(Money{Cents: 1}); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Owner:    "u1",
		Kind:     Expense,
		Title:    "Groceries",
		Amount:   Money{Cents: 5000},
		Category: "Food",
		Date:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"bad kind", func(tx *Transaction) { tx.Kind = "loan" }, ErrInvalidKind},
		{"no owner", func(tx *Transaction) { tx.Owner = " " }, ErrEmptyOwner},
		{"no title", func(tx *Transaction) { tx.Title = "" }, ErrEmptyTitle},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"wrong vocabulary", func(tx *Transaction) { tx.Category = "Salary" }, ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := good
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	zeroDate := good
	zeroDate.Date = time.Time{}
	if err := zeroDate.Validate(); err == nil {
		t.Fatal("expected error for zero date")
	}
}

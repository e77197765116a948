package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

func TestWorkbook(t *testing.T) {
	txs := []core.Transaction{
		{Title: "Salary", Amount: core.Money{Cents: 500000}, Category: "Salary", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{Title: "Side gig", Amount: core.Money{Cents: 2050}, Category: "Freelance", Date: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)},
	}

	b, err := Workbook(core.Income, txs)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != "Incomes" {
		t.Fatalf("sheets = %v", got)
	}

	rows, err := f.GetRows("Incomes")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Title", "Amount", "Category", "Date"},
		{"Salary", "5000", "Salary", "2024-01-03"},
		{"Side gig", "20.5", "Freelance", "2024-01-10"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v", rows)
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("cell[%d][%d] = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestWorkbook_Empty(t *testing.T) {
	b, err := Workbook(core.Expense, nil)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Expenses")
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %v", rows)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(core.Expense); got != "expenses.xlsx" {
		t.Fatalf("Filename = %q", got)
	}
}

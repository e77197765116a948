package google

import (
	"context"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestFindRow(t *testing.T) {
	ids := []string{"ID", "a1", " b2 ", "c3"}

	tests := []struct {
		id   string
		want int
	}{
		{"a1", 1},
		{"b2", 2},
		{"c3", 3},
		{"ID", -1}, // header row is never a match
		{"zz", -1},
	}
	for _, tt := range tests {
		if got := findRow(ids, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestToRow(t *testing.T) {
	tx := core.Transaction{
		ID:       "tx-1",
		Owner:    "u1",
		Kind:     core.Expense,
		Title:    "Groceries",
		Amount:   core.Money{Cents: 4250},
		Category: "Food",
		Date:     time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC),
	}

	row := toRow(tx)
	if len(row) != 6 {
		t.Fatalf("row has %d cells", len(row))
	}
	if row[0] != "tx-1" || row[2] != "Groceries" || row[4] != "Food" {
		t.Errorf("row = %v", row)
	}
	if row[3] != 42.5 {
		t.Errorf("amount cell = %v", row[3])
	}
	if row[5] != "2024-01-05" {
		t.Errorf("date cell = %v", row[5])
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing spreadsheet", Config{}, "missing spreadsheet id"},
		{"missing credentials", Config{SpreadsheetID: "sheet"}, "missing service account credentials"},
		{"unreadable file", Config{SpreadsheetID: "sheet", CredentialsFile: "/nonexistent/sa.json"}, "read service account file"},
		{"not a service account", Config{SpreadsheetID: "sheet", CredentialsJSON: `{"type":"authorized_user"}`}, "parse service account credentials"},
		{"malformed json", Config{SpreadsheetID: "sheet", CredentialsJSON: `{`}, "parse service account credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("New() error = %v, want %q", err, tt.want)
			}
		})
	}
}

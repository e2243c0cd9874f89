package google

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func TestFormatRowAndParseRows(t *testing.T) {
	tx := core.Transaction{
		ID:          "abc",
		Description: "Grocery Store",
		Amount:      decimal.RequireFromString("120.5"),
		Type:        core.Expense,
		Category:    core.Food,
		Date:        time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC),
	}
	row := formatRow(tx)
	if row[1] != "2025-07-04" || row[5] != "120.50" {
		t.Fatalf("unexpected row %v", row)
	}

	values := [][]any{
		header,
		row,
		{},                    // cleared row
		{"", "", "", "", ""},  // blank cells
		{"bad", "2025-13-01", "x", "expense", "Food", "1"},
		{"short", "2025-01-01"},
		{"pets", "2025-01-01", "Dog food", "expense", "Pets", "10"},
		{"neg", "2025-01-01", "Refund", "income", "Other", "-5"},
	}
	txs, skipped := parseRows(values)
	if len(txs) != 1 {
		t.Fatalf("expected 1 parsed row, got %d (%v)", len(txs), txs)
	}
	if skipped != 4 {
		t.Errorf("expected 4 skipped rows, got %d", skipped)
	}
	got := txs[0]
	if got.ID != "abc" || got.Category != core.Food || !got.Amount.Equal(tx.Amount) {
		t.Errorf("unexpected parsed transaction %+v", got)
	}
}

func TestRowForID(t *testing.T) {
	values := [][]any{{"ID"}, {"a"}, {}, {" b "}}
	cases := map[string]int{"a": 2, "b": 4, "c": -1, "": -1}
	for id, want := range cases {
		if got := rowForID(values, id); got != want {
			t.Errorf("rowForID(%q) = %d, want %d", id, got, want)
		}
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2025, "2025 Transactions"},
		{"2024 Transactions", 2025, "2024 Transactions"},
		{"", 2025, "2025 Transactions"},
		{"  Ledger  ", 2026, "2026 Ledger"},
		{"20X4 Ledger", 2025, "2025 20X4 Ledger"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

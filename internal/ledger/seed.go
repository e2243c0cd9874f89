package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type sample struct {
	id, desc, amount string
	typ              core.TransactionType
	cat              core.Category
	daysAgo          int
}

var samples = []sample{
	{"sample-1", "Monthly Salary", "5000.00", core.Income, core.Salary, 1},
	{"sample-2", "Apartment Rent", "1500.00", core.Expense, core.Housing, 2},
	{"sample-3", "Grocery Store", "120.50", core.Expense, core.Food, 3},
	{"sample-4", "Netflix Subscription", "15.99", core.Expense, core.Entertainment, 4},
	{"sample-5", "Freelance Project", "800.00", core.Income, core.Freelance, 5},
	{"sample-6", "Electric Bill", "95.00", core.Expense, core.Utilities, 6},
	{"sample-7", "Gas Station", "60.00", core.Expense, core.Transport, 7},
}

// SampleTransactions returns the demo data dated relative to now, newest
// first.
func SampleTransactions(now time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(samples))
	for _, s := range samples {
		out = append(out, core.Transaction{
			ID:          s.id,
			Description: s.desc,
			Amount:      decimal.RequireFromString(s.amount),
			Type:        s.typ,
			Category:    s.cat,
			Date:        now.AddDate(0, 0, -s.daysAgo),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

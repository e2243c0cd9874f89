package assistant

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestAssistant() *Assistant {
	return New(core.DefaultFormatter(), func() time.Time { return fixedNow })
}

func tx(typ core.TransactionType, amount string, cat core.Category, date time.Time, desc string) core.Transaction {
	return core.Transaction{
		ID:          desc,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    cat,
		Date:        date,
	}
}

func TestBalanceExample(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "5000", core.Salary, fixedNow, "pay"),
		tx(core.Expense, "100", core.Other, fixedNow, "misc"),
	}

	reply := newTestAssistant().Respond("What is my total balance and how much have I made?", txs)

	assert.Equal(t, IntentBalance, reply.Intent)
	assert.Contains(t, reply.Text, "Net Liquidity: $4,900.00")
	assert.Contains(t, reply.Text, "Savings Rate: 98.0%")
	assert.NotContains(t, reply.Text, "Advisory")
}

func TestBalanceEmptyList(t *testing.T) {
	reply := newTestAssistant().Respond("What is my balance?", nil)

	assert.Equal(t, IntentBalance, reply.Intent)
	assert.Contains(t, reply.Text, "Net Liquidity: $0.00")
	assert.Contains(t, reply.Text, "Savings Rate: 0.0%")
	assert.Contains(t, reply.Text, "Advisory")
}

func TestBalanceLowSavingsAdvisory(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "1000", core.Salary, fixedNow, "pay"),
		tx(core.Expense, "900", core.Housing, fixedNow, "rent"),
	}
	reply := newTestAssistant().Respond("show my status", txs)
	assert.Contains(t, reply.Text, "Savings Rate: 10.0%")
	assert.Contains(t, reply.Text, "Advisory")
}

func TestBalanceBeatsComparison(t *testing.T) {
	reply := newTestAssistant().Respond("balance: food vs transport", nil)
	assert.Equal(t, IntentBalance, reply.Intent)
}

func TestComparison(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "40", core.Food, fixedNow, "lunch"),
		tx(core.Expense, "60", core.Food, fixedNow, "dinner"),
		tx(core.Expense, "80", core.Transport, fixedNow, "train"),
	}
	reply := newTestAssistant().Respond("Do I spend more on Transport vs Food?", txs)

	require.Equal(t, IntentComparison, reply.Intent)
	assert.Contains(t, reply.Text, "- Food: $100.00")
	assert.Contains(t, reply.Text, "- Transport: $80.00")
	assert.Contains(t, reply.Text, "Highest spending: Food ($100.00).")
	assert.Less(t, strings.Index(reply.Text, "Food"), strings.Index(reply.Text, "Transport"))
}

func TestComparisonTieKeepsFirstListedCategory(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "50", core.Transport, fixedNow, "bus"),
		tx(core.Expense, "50", core.Food, fixedNow, "lunch"),
	}
	reply := newTestAssistant().Respond("compare transport and food", txs)

	require.Equal(t, IntentComparison, reply.Intent)
	assert.Contains(t, reply.Text, "Highest spending: Food ($50.00).")
}

func TestComparisonNeedsTwoCategories(t *testing.T) {
	reply := newTestAssistant().Respond("compare food", nil)
	assert.Equal(t, IntentFallback, reply.Intent)
}

func TestSpendingWindows(t *testing.T) {
	yesterday := fixedNow.AddDate(0, 0, -1)
	lastMonth := fixedNow.AddDate(0, -1, 0)
	txs := []core.Transaction{
		tx(core.Expense, "10", core.Food, fixedNow, "coffee"),
		tx(core.Expense, "20", core.Transport, yesterday, "taxi"),
		tx(core.Expense, "30", core.Food, lastMonth, "groceries"),
		tx(core.Income, "999", core.Salary, fixedNow, "pay"),
	}
	a := newTestAssistant()

	tests := []struct {
		query string
		scope string
		total string
		count int
	}{
		{"What have I spent today?", "today", "$10.00", 1},
		{"expense yesterday", "yesterday", "$20.00", 1},
		{"cost this month", "this month", "$30.00", 2},
		{"total spent", "all-time", "$60.00", 3},
		{"spent on food", "all-time, Food", "$40.00", 2},
		{"food spent this month", "this month, Food", "$10.00", 1},
		{"spent on salary", "all-time, Salary", "$0.00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			reply := a.Respond(tt.query, txs)
			require.Equal(t, IntentSpending, reply.Intent)
			assert.Contains(t, reply.Text, "Spending Analysis ("+tt.scope+")")
			assert.Contains(t, reply.Text, "Total Spent: "+tt.total)
			assert.Contains(t, reply.Text, fmt.Sprintf("Transactions: %d", tt.count))
		})
	}
}

func TestSpendingTodayBeforeYesterday(t *testing.T) {
	reply := newTestAssistant().Respond("spent today or yesterday", nil)
	assert.Contains(t, reply.Text, "Spending Analysis (today)")
}

func TestSpendingVolumeAdvisory(t *testing.T) {
	txs := []core.Transaction{tx(core.Expense, "1000.01", core.Shopping, fixedNow, "tv")}
	reply := newTestAssistant().Respond("what did I spent", txs)
	assert.Contains(t, reply.Text, "Advisory: spending above $1,000.00")

	txs = []core.Transaction{tx(core.Expense, "1000", core.Shopping, fixedNow, "tv")}
	reply = newTestAssistant().Respond("what did I spent", txs)
	assert.NotContains(t, reply.Text, "Advisory")
}

func TestMarket(t *testing.T) {
	a := newTestAssistant()
	for _, q := range []string{"Where are interest rates heading?", "Should I buy CRYPTO", "mortgage tips", "Investing ideas"} {
		reply := a.Respond(q, nil)
		assert.Equal(t, IntentMarket, reply.Intent, q)
		assert.Contains(t, reply.Text, "Market Intelligence Brief")
	}
}

func TestMarketExcludedBySavingsRate(t *testing.T) {
	// "savings rate" is claimed by the balance intent first; the market
	// predicate on its own must also refuse it.
	reply := newTestAssistant().Respond("savings rate vs inflation", nil)
	assert.Equal(t, IntentBalance, reply.Intent)
	assert.False(t, isMarketQuery(query{text: "my savings rate and the stock market"}))
	assert.True(t, isMarketQuery(query{text: "the stock market"}))
}

func TestFallback(t *testing.T) {
	reply := newTestAssistant().Respond("hello there", nil)
	assert.Equal(t, IntentFallback, reply.Intent)
	assert.Contains(t, reply.Text, "I can help with")
}

func TestEveryReplyEndsWithDisclaimer(t *testing.T) {
	a := newTestAssistant()
	for _, q := range []string{"balance", "food vs transport", "spent", "stock", "???", ""} {
		reply := a.Respond(q, nil)
		assert.True(t, strings.HasSuffix(reply.Text, Disclaimer), q)
	}
}

func TestGenerateResponse(t *testing.T) {
	out := GenerateResponse("What is my balance?", nil)
	assert.Contains(t, out, "Net Liquidity: $0.00")
	assert.True(t, strings.HasSuffix(out, Disclaimer))
}

func TestCustomFormatter(t *testing.T) {
	money, err := core.NewFormatter("en-US", "EUR")
	require.NoError(t, err)
	a := New(money, func() time.Time { return fixedNow })

	reply := a.Respond("balance", []core.Transaction{tx(core.Income, "10", core.Salary, fixedNow, "pay")})
	assert.Contains(t, reply.Text, "Net Liquidity: €10.00")
}

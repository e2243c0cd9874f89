// Package insights derives short advisory messages from a transaction set.
package insights

import (
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	MsgOverspending   = "Warning: you are spending more than you earn. Review your expenses to avoid running into debt."
	MsgLowSavings     = "Your savings rate is low. Try to keep expenses under 80% of your income."
	MsgHealthySavings = "Great job! You are maintaining a healthy savings rate."
	MsgFoodSpending   = "Food spending is above $500. Cooking at home more often could help."
	MsgSubscriptions  = "Subscriptions and entertainment add up to more than $200. Review recurring services you no longer use."
)

var (
	lowSavingsRatio    = decimal.RequireFromString("0.8")
	foodThreshold      = decimal.NewFromInt(500)
	subscriptionsLimit = decimal.NewFromInt(200)
)

// Generate evaluates each rule independently and returns at most three
// messages, in rule order. An empty input yields an empty slice.
func Generate(txs []core.Transaction) []string {
	out := []string{}
	if len(txs) == 0 {
		return out
	}

	fin := core.ComputeFinancials(txs)
	switch {
	case fin.Expense.GreaterThan(fin.Income):
		out = append(out, MsgOverspending)
	case fin.Income.IsPositive() && fin.Expense.GreaterThan(fin.Income.Mul(lowSavingsRatio)):
		out = append(out, MsgLowSavings)
	case fin.Income.IsPositive():
		out = append(out, MsgHealthySavings)
	}

	if core.CategoryExpense(txs, core.Food).GreaterThan(foodThreshold) {
		out = append(out, MsgFoodSpending)
	}

	recurring := core.ExpenseTotal(txs, isSubscription)
	if recurring.GreaterThan(subscriptionsLimit) {
		out = append(out, MsgSubscriptions)
	}

	return out
}

func isSubscription(t core.Transaction) bool {
	return t.Category == core.Entertainment ||
		strings.Contains(strings.ToLower(t.Description), "subscription")
}

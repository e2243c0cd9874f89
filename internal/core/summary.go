package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Financials is derived from a transaction set on every read.
type Financials struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"` // 1-12
	Financials Financials       `json:"financials"`
	ByCategory []CategoryAmount `json:"by_category"`
}

// ComputeFinancials sums income and expense; balance is always income-expense.
func ComputeFinancials(txs []Transaction) Financials {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return Financials{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// ExpenseTotal sums the expenses accepted by keep. A nil keep accepts all.
func ExpenseTotal(txs []Transaction, keep func(Transaction) bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		if keep != nil && !keep(t) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// CategoryExpense sums the expenses recorded under one category.
func CategoryExpense(txs []Transaction, c Category) decimal.Decimal {
	return ExpenseTotal(txs, func(t Transaction) bool { return t.Category == c })
}

// Overview summarises the transactions dated in the given month.
func Overview(txs []Transaction, year, month int) MonthOverview {
	var inMonth []Transaction
	for _, t := range txs {
		if t.Date.Year() == year && int(t.Date.Month()) == month {
			inMonth = append(inMonth, t)
		}
	}

	ov := MonthOverview{
		Year:       year,
		Month:      month,
		Financials: ComputeFinancials(inMonth),
		ByCategory: []CategoryAmount{},
	}
	for _, c := range Categories {
		amt := CategoryExpense(inMonth, c)
		if amt.IsZero() {
			continue
		}
		ov.ByCategory = append(ov.ByCategory, CategoryAmount{Category: c, Amount: amt})
	}
	sort.SliceStable(ov.ByCategory, func(i, j int) bool {
		return ov.ByCategory[i].Amount.GreaterThan(ov.ByCategory[j].Amount)
	})
	return ov
}

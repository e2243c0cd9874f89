package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Housing       Category = "Housing"
	Utilities     Category = "Utilities"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Health        Category = "Health"
	Education     Category = "Education"
	Salary        Category = "Salary"
	Freelance     Category = "Freelance"
	Investment    Category = "Investment"
	Other         Category = "Other"
)

type (
	TransactionType string

	Category string

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    Category        `json:"category"`
		Date        time.Time       `json:"date"`
	}
)

// Categories lists every category in declaration order.
var Categories = []Category{
	Food, Transport, Housing, Utilities, Entertainment, Shopping, Health,
	Education, Salary, Freelance, Investment, Other,
}

// ExpenseCategories is the subset the assistant compares against.
var ExpenseCategories = []Category{
	Food, Transport, Housing, Utilities, Entertainment, Shopping, Health,
	Education, Other,
}

// IncomeCategories lists the categories offered for income entries.
var IncomeCategories = []Category{Salary, Freelance, Investment, Other}

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrEmptyDescription = errors.New("empty description")
	ErrLongDescription  = errors.New("description too long (max 200 characters)")
	ErrInvalidType      = errors.New("type must be income or expense")
	ErrInvalidCategory  = errors.New("unknown category")
	ErrInvalidDate      = errors.New("date cannot be zero")
)

// ValidationErrors maps a field name to the reason it was rejected.
type ValidationErrors map[string]error

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, field := range []string{"description", "amount", "type", "category", "date"} {
		if err, ok := v[field]; ok {
			parts = append(parts, field+": "+err.Error())
		}
	}
	return "invalid transaction: " + strings.Join(parts, "; ")
}

// Fields returns the errors as plain strings, suitable for JSON responses.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for k, err := range v {
		out[k] = err.Error()
	}
	return out
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// ParseTransactionType matches a type name case-insensitively.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, true
	case Expense:
		return Expense, true
	}
	return "", false
}

// Validate reports every invalid field at once. The returned error, when not
// nil, is always a ValidationErrors.
func (t Transaction) Validate() error {
	errs := ValidationErrors{}
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		errs["description"] = ErrEmptyDescription
	} else if len(desc) > 200 {
		errs["description"] = ErrLongDescription
	}
	if !t.Amount.IsPositive() {
		errs["amount"] = ErrInvalidAmount
	}
	if !t.Type.Valid() {
		errs["type"] = ErrInvalidType
	}
	if !t.Category.Valid() {
		errs["category"] = ErrInvalidCategory
	}
	if t.Date.IsZero() {
		errs["date"] = ErrInvalidDate
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (t Transaction) IsIncome() bool  { return t.Type == Income }
func (t Transaction) IsExpense() bool { return t.Type == Expense }

// Package assistant answers free-text questions about a transaction set.
//
// Queries are classified by an ordered table of intents; the first intent
// whose predicate matches produces the reply. There is no inference: every
// reply is a template filled from the transactions.
package assistant

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type Intent string

const (
	IntentBalance    Intent = "balance"
	IntentComparison Intent = "comparison"
	IntentSpending   Intent = "spending"
	IntentMarket     Intent = "market"
	IntentFallback   Intent = "fallback"
)

// Disclaimer is appended to every reply.
const Disclaimer = "Disclaimer: this assistant summarises your recorded transactions and does not provide financial advice."

var (
	balanceKeywords    = []string{"balance", "status", "savings rate", "net worth"}
	comparisonKeywords = []string{"vs", "compare", "more than"}
	spendingKeywords   = []string{"spent", "expense", "cost"}

	marketPattern = regexp.MustCompile(`(?i)(interest rate|mortgage|stock|market|price|inflation|crypto|invest)`)

	lowSavingsRate   = decimal.NewFromInt(15)
	highVolumeAmount = decimal.NewFromInt(1000)
	hundred          = decimal.NewFromInt(100)
)

// Reply is a classified answer.
type Reply struct {
	Intent Intent `json:"intent"`
	Text   string `json:"response"`
}

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Assistant holds the formatter and clock shared by every intent.
type Assistant struct {
	money   *core.Formatter
	now     Clock
	intents []intent
}

type intent struct {
	name    Intent
	matches func(q query) bool
	respond func(a *Assistant, q query, txs []core.Transaction) string
}

// query is the lowercased text plus the date window derived from it.
type query struct {
	text   string
	window window
}

type window struct {
	label    string
	contains func(time.Time) bool
}

// New returns an Assistant. A nil formatter or clock falls back to the
// defaults.
func New(money *core.Formatter, now Clock) *Assistant {
	if money == nil {
		money = core.DefaultFormatter()
	}
	if now == nil {
		now = time.Now
	}
	a := &Assistant{money: money, now: now}
	a.intents = []intent{
		{name: IntentBalance, matches: isBalanceQuery, respond: (*Assistant).balance},
		{name: IntentComparison, matches: isComparisonQuery, respond: (*Assistant).comparison},
		{name: IntentSpending, matches: isSpendingQuery, respond: (*Assistant).spending},
		{name: IntentMarket, matches: isMarketQuery, respond: (*Assistant).market},
	}
	return a
}

var defaultAssistant = New(nil, nil)

// GenerateResponse answers query using the wall clock and the default
// currency formatter.
func GenerateResponse(q string, txs []core.Transaction) string {
	return defaultAssistant.Respond(q, txs).Text
}

// Respond classifies q and renders the matching template. It never fails;
// an empty transaction list produces zero totals.
func (a *Assistant) Respond(q string, txs []core.Transaction) Reply {
	parsed := a.parse(q)
	for _, in := range a.intents {
		if in.matches(parsed) {
			return Reply{Intent: in.name, Text: withDisclaimer(in.respond(a, parsed, txs))}
		}
	}
	return Reply{Intent: IntentFallback, Text: withDisclaimer(fallbackText)}
}

func (a *Assistant) parse(raw string) query {
	text := strings.ToLower(raw)
	return query{text: text, window: a.windowFor(text)}
}

// windowFor picks the date window a spending query is restricted to.
// Keywords are checked in a fixed order: today, yesterday, month.
func (a *Assistant) windowFor(text string) window {
	now := a.now()
	loc := now.Location()
	sameDay := func(x, y time.Time) bool {
		return x.Year() == y.Year() && x.YearDay() == y.YearDay()
	}

	switch {
	case strings.Contains(text, "today"):
		return window{label: "today", contains: func(d time.Time) bool {
			return sameDay(d.In(loc), now)
		}}
	case strings.Contains(text, "yesterday"):
		prev := now.AddDate(0, 0, -1)
		return window{label: "yesterday", contains: func(d time.Time) bool {
			return sameDay(d.In(loc), prev)
		}}
	case strings.Contains(text, "month"):
		return window{label: "this month", contains: func(d time.Time) bool {
			d = d.In(loc)
			return d.Year() == now.Year() && d.Month() == now.Month()
		}}
	}
	return window{label: "all-time", contains: func(time.Time) bool { return true }}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// mentioned returns the categories from list named in text, in list order.
func mentioned(text string, list []core.Category) []core.Category {
	var out []core.Category
	for _, c := range list {
		if strings.Contains(text, strings.ToLower(string(c))) {
			out = append(out, c)
		}
	}
	return out
}

func isBalanceQuery(q query) bool {
	return containsAny(q.text, balanceKeywords)
}

func isComparisonQuery(q query) bool {
	return len(mentioned(q.text, core.ExpenseCategories)) >= 2 &&
		containsAny(q.text, comparisonKeywords)
}

func isSpendingQuery(q query) bool {
	return containsAny(q.text, spendingKeywords)
}

func isMarketQuery(q query) bool {
	if strings.Contains(q.text, "savings rate") {
		return false
	}
	return marketPattern.MatchString(q.text)
}

// savingsRate is balance / income * 100, or zero without income.
func savingsRate(f core.Financials) decimal.Decimal {
	if !f.Income.IsPositive() {
		return decimal.Zero
	}
	return f.Balance.Div(f.Income).Mul(hundred)
}

func (a *Assistant) balance(_ query, txs []core.Transaction) string {
	f := core.ComputeFinancials(txs)
	rate := savingsRate(f)

	var b strings.Builder
	b.WriteString("Financial Status Report\n")
	fmt.Fprintf(&b, "- Net Liquidity: %s\n", a.money.Format(f.Balance))
	fmt.Fprintf(&b, "- Total Income: %s\n", a.money.Format(f.Income))
	fmt.Fprintf(&b, "- Total Expenses: %s\n", a.money.Format(f.Expense))
	fmt.Fprintf(&b, "- Savings Rate: %s%%", rate.StringFixed(1))
	if rate.LessThan(lowSavingsRate) {
		b.WriteString("\n\nAdvisory: your savings rate is below the recommended 15%. Review discretionary spending to build a safety margin.")
	}
	return b.String()
}

func (a *Assistant) comparison(q query, txs []core.Transaction) string {
	cats := mentioned(q.text, core.ExpenseCategories)

	var b strings.Builder
	b.WriteString("Category Comparison\n")
	winner, best := cats[0], decimal.Zero
	for i, c := range cats {
		total := core.CategoryExpense(txs, c)
		fmt.Fprintf(&b, "- %s: %s\n", c, a.money.Format(total))
		if i == 0 || total.GreaterThan(best) {
			winner, best = c, total
		}
	}
	fmt.Fprintf(&b, "\nHighest spending: %s (%s).", winner, a.money.Format(best))
	return b.String()
}

func (a *Assistant) spending(q query, txs []core.Transaction) string {
	var cat core.Category
	if cats := mentioned(q.text, core.Categories); len(cats) > 0 {
		cat = cats[0]
	}

	total, count := decimal.Zero, 0
	for _, t := range txs {
		if !t.IsExpense() || !q.window.contains(t.Date) {
			continue
		}
		if cat != "" && t.Category != cat {
			continue
		}
		total = total.Add(t.Amount)
		count++
	}

	scope := q.window.label
	if cat != "" {
		scope += ", " + string(cat)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spending Analysis (%s)\n", scope)
	fmt.Fprintf(&b, "- Total Spent: %s\n", a.money.Format(total))
	fmt.Fprintf(&b, "- Transactions: %d", count)
	if total.GreaterThan(highVolumeAmount) {
		fmt.Fprintf(&b, "\n\nAdvisory: spending above %s in this period is high. Check for one-off purchases you can defer.", a.money.Format(highVolumeAmount))
	}
	return b.String()
}

const marketText = `Market Intelligence Brief
- Interest rates: policy decisions are published at https://www.federalreserve.gov/monetarypolicy.htm
- Inflation: consumer price data is available at https://www.bls.gov/cpi/
- Equities and crypto: follow quotes at https://finance.yahoo.com/
These are static references, not live market data.`

func (a *Assistant) market(query, []core.Transaction) string {
	return marketText
}

const fallbackText = `I can help with:
- Your balance, net worth and savings rate ("What is my balance?")
- Comparing categories ("Food vs Transport")
- Spending totals by period or category ("How much have I spent on Food this month?")
- General market references ("What about interest rates?")`

func withDisclaimer(s string) string {
	return s + "\n\n" + Disclaimer
}

package google

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

func formatRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.Format(dateLayout),
		tx.Description,
		string(tx.Type),
		string(tx.Category),
		tx.Amount.StringFixed(2),
	}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// rowForID returns the 1-based sheet row whose first column equals id, or
// -1. Values are expected to start at row 1.
func rowForID(values [][]any, id string) int {
	if id == "" {
		return -1
	}
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return -1
}

// parseRows converts A:F values into transactions. The header, blank and
// cleared rows are ignored silently; malformed rows are counted.
func parseRows(values [][]any) (txs []core.Transaction, skipped int) {
	txs = []core.Transaction{}
	for i, raw := range values {
		cols := toStrings(raw)
		if len(cols) == 0 || strings.Join(cols, "") == "" {
			continue
		}
		if i == 0 && strings.EqualFold(cols[0], "ID") {
			continue
		}
		if len(cols) < 6 {
			skipped++
			continue
		}
		date, err := time.Parse(dateLayout, cols[1])
		if err != nil {
			skipped++
			continue
		}
		typ, ok := core.ParseTransactionType(cols[3])
		if !ok {
			skipped++
			continue
		}
		cat, ok := core.ParseCategory(cols[4])
		if !ok {
			skipped++
			continue
		}
		amount, err := core.ParseAmount(cols[5])
		if err != nil {
			skipped++
			continue
		}
		txs = append(txs, core.Transaction{
			ID:          cols[0],
			Date:        date,
			Description: cols[2],
			Type:        typ,
			Category:    cat,
			Amount:      amount,
		})
	}
	return txs, skipped
}

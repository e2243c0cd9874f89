// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of request bodies and query parameters into
// domain values. Bodies may be JSON or form-encoded.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// maxBodyBytes bounds every request body read by the API.
const maxBodyBytes = 1 << 20

var errInvalidMonth = errors.New("month must be between 1 and 12")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using
// now for missing values. Unparseable or out-of-range values are errors.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return MonthParams{}, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}
	if params.Month < 1 || params.Month > 12 {
		return MonthParams{}, errInvalidMonth
	}
	return params, nil
}

// RequestBodyParser reads a JSON or form body once and exposes its fields
// as sanitised strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes from r.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when the content type says so or the body
// looks like an object, and as form data otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a field value from the parsed body, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// dateLayouts are tried in order when parsing a transaction date.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, core.ErrInvalidDate
}

// ParseTransaction builds a transaction from the body fields description,
// amount, type, category and an optional date defaulting to now. Every
// invalid field is reported.
func ParseTransaction(p *RequestBodyParser, now time.Time) (core.Transaction, core.ValidationErrors) {
	errs := core.ValidationErrors{}
	tx := core.Transaction{
		Description: p.Get("description"),
		Date:        now,
	}

	if amount, err := core.ParseAmount(p.Get("amount")); err != nil {
		errs["amount"] = err
	} else {
		tx.Amount = amount
	}

	if typ, ok := core.ParseTransactionType(p.Get("type")); ok {
		tx.Type = typ
	} else {
		errs["type"] = core.ErrInvalidType
	}

	if cat, ok := core.ParseCategory(p.Get("category")); ok {
		tx.Category = cat
	} else {
		errs["category"] = core.ErrInvalidCategory
	}

	if v := p.Get("date"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			errs["date"] = err
		} else {
			tx.Date = d
		}
	}

	if err := tx.Validate(); err != nil {
		var verrs core.ValidationErrors
		if errors.As(err, &verrs) {
			for field, e := range verrs {
				if _, seen := errs[field]; !seen {
					errs[field] = e
				}
			}
		}
	}

	if len(errs) > 0 {
		return core.Transaction{}, errs
	}
	return tx, nil
}

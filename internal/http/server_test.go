package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/assistant"
	"fintrack/internal/core"
	"fintrack/internal/kv/memory"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func newTestServer(t *testing.T, seed bool) *Server {
	t.Helper()
	store := ledger.New(memory.New(),
		ledger.WithSampleData(seed),
		ledger.WithClock(func() time.Time { return testNow }),
		ledger.WithLogger(quietLogger()))
	svc := services.NewTransactionService(store,
		services.WithAssistant(assistant.New(nil, func() time.Time { return testNow })),
		services.WithLogger(quietLogger()))

	srv := NewServer(ServerConfig{Addr: ":0", RateLimitPerMinute: 100, OverviewCacheSize: 10}, svc, quietLogger())
	srv.now = func() time.Time { return testNow }
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, false)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s missing request id", path)
		}
	}
}

func TestSeededTransactionsAndFinancials(t *testing.T) {
	srv := newTestServer(t, true)

	rr := do(t, srv, http.MethodGet, "/api/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	list := decode[transactionList](t, rr)
	if list.Count != 7 || len(list.Transactions) != 7 {
		t.Fatalf("expected 7 sample transactions, got %d", list.Count)
	}

	rr = do(t, srv, http.MethodGet, "/api/financials", "")
	f := decode[financialsResponse](t, rr)
	if f.Formatted.Income != "$5,800.00" {
		t.Errorf("income = %q", f.Formatted.Income)
	}
	if !f.Balance.Equal(f.Income.Sub(f.Expense)) {
		t.Errorf("balance %s != income %s - expense %s", f.Balance, f.Income, f.Expense)
	}
}

func TestCreateListDeleteClear(t *testing.T) {
	srv := newTestServer(t, false)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Groceries","amount":"42.10","type":"expense","category":"Food","date":"2025-06-14"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[core.Transaction](t, rr)
	if created.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if rr.Header().Get("Location") != "/api/transactions/"+created.ID {
		t.Errorf("Location = %q", rr.Header().Get("Location"))
	}

	// Form bodies are accepted too.
	req := httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader("description=Pay&amount=1000&type=income&category=Salary"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("form create status=%d body=%s", rr.Code, rr.Body.String())
	}

	list := decode[transactionList](t, do(t, srv, http.MethodGet, "/api/transactions", ""))
	if list.Count != 2 || list.Transactions[0].Description != "Pay" {
		t.Fatalf("expected newest first, got %+v", list.Transactions)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/transactions", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("clear status=%d", rr.Code)
	}
	list = decode[transactionList](t, do(t, srv, http.MethodGet, "/api/transactions", ""))
	if list.Count != 0 || list.Transactions == nil {
		t.Fatalf("expected an empty list after clear, got %+v", list)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t, false)

	rr := do(t, srv, http.MethodPost, "/api/transactions", `{"description":"","amount":"abc","type":"expense","category":"Food"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	body := decode[ErrorBody](t, rr)
	if _, ok := body.Fields["amount"]; !ok {
		t.Errorf("missing amount error: %v", body.Fields)
	}
	if _, ok := body.Fields["description"]; !ok {
		t.Errorf("missing description error: %v", body.Fields)
	}

	if rr := do(t, srv, http.MethodPost, "/api/transactions", `{"description":`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/transactions", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestOverviewCacheInvalidation(t *testing.T) {
	srv := newTestServer(t, false)

	ov := decode[core.MonthOverview](t, do(t, srv, http.MethodGet, "/api/overview?year=2025&month=6", ""))
	if !ov.Financials.Expense.IsZero() || ov.ByCategory == nil {
		t.Fatalf("expected empty overview, got %+v", ov)
	}
	if srv.overviewCache.Size() != 1 {
		t.Fatalf("expected overview to be cached")
	}

	do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Bus","amount":"2.50","type":"expense","category":"Transport","date":"2025-06-10"}`)
	if srv.overviewCache.Size() != 0 {
		t.Fatalf("create must invalidate the overview cache")
	}

	ov = decode[core.MonthOverview](t, do(t, srv, http.MethodGet, "/api/overview?year=2025&month=6", ""))
	if len(ov.ByCategory) != 1 || ov.ByCategory[0].Category != core.Transport {
		t.Fatalf("unexpected overview %+v", ov)
	}

	if rr := do(t, srv, http.MethodGet, "/api/overview?month=13", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid month, got %d", rr.Code)
	}
}

func TestInsightsCategoriesAndAssistant(t *testing.T) {
	srv := newTestServer(t, true)

	ins := decode[map[string][]string](t, do(t, srv, http.MethodGet, "/api/insights", ""))
	if len(ins["insights"]) == 0 {
		t.Fatalf("expected insights for sample data, got %v", ins)
	}

	cats := decode[categoriesResponse](t, do(t, srv, http.MethodGet, "/api/categories", ""))
	if len(cats.Expense) != len(core.ExpenseCategories) || len(cats.Income) != len(core.IncomeCategories) {
		t.Fatalf("unexpected categories %+v", cats)
	}

	rr := do(t, srv, http.MethodPost, "/api/assistant", `{"query":"What is my balance?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("assistant status=%d", rr.Code)
	}
	reply := decode[assistant.Reply](t, rr)
	if reply.Intent != assistant.IntentBalance || !strings.Contains(reply.Text, "Net Liquidity") {
		t.Fatalf("unexpected reply %+v", reply)
	}

	if rr := do(t, srv, http.MethodPost, "/api/assistant", `{"query":"`+strings.Repeat("x", maxQueryLength+1)+`"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for long query, got %d", rr.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	store := ledger.New(memory.New(), ledger.WithSampleData(false), ledger.WithLogger(quietLogger()))
	svc := services.NewTransactionService(store, services.WithLogger(quietLogger()))
	srv := NewServer(ServerConfig{RateLimitPerMinute: 1, OverviewCacheSize: 1}, svc, quietLogger())

	if rr := do(t, srv, http.MethodDelete, "/api/transactions", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("first write status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions", ""); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/transactions", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", rr.Code)
	}
}

type brokenService struct{ TransactionService }

var errBackend = errors.New("backend down")

func (brokenService) List(context.Context) ([]core.Transaction, error) { return nil, errBackend }
func (brokenService) Ping(context.Context) error { return errBackend }

func TestBackendFailures(t *testing.T) {
	srv := NewServer(ServerConfig{OverviewCacheSize: 1}, brokenService{}, quietLogger())

	if rr := do(t, srv, http.MethodGet, "/api/transactions", ""); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	rr := do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not_ready") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, false)
	do(t, srv, http.MethodGet, "/api/overview", "")
	do(t, srv, http.MethodGet, "/api/overview", "")

	rr := do(t, srv, http.MethodGet, "/metrics", "")
	for _, want := range []string{"cache_hits_total 1", "cache_misses_total 1", "http_requests_total"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("metrics missing %q:\n%s", want, rr.Body.String())
		}
	}
}

func TestBackgroundStopsOnCancel(t *testing.T) {
	srv := newTestServer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Background(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Background returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Background did not stop")
	}
}

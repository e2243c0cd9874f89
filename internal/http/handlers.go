package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.appMetrics.uptime().Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports ready only when the store backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if err := s.svc.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
	} else {
		checks["store"] = "ok"
	}

	checks["cache"] = map[string]any{"overview_entries": s.overviewCache.Size()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics exposes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	m := s.appMetrics
	rl := s.rateLimiter.GetMetrics()
	tr := s.traceMiddleware.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", tr.TotalRequests)
	metric("transactions_created_total", "counter", "Transactions created", atomic.LoadInt64(&m.transactionsCreated))
	metric("transactions_deleted_total", "counter", "Transactions deleted", atomic.LoadInt64(&m.transactionsDeleted))
	metric("assistant_queries_total", "counter", "Assistant queries answered", atomic.LoadInt64(&m.assistantQueries))
	metric("cache_hits_total", "counter", "Overview cache hits", atomic.LoadInt64(&m.cacheHits))
	metric("cache_misses_total", "counter", "Overview cache misses", atomic.LoadInt64(&m.cacheMisses))
	metric("cache_entries", "gauge", "Current overview cache entries", s.overviewCache.Size())
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rl.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rl.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests rejected as probes", s.detector.SuspiciousRequests())
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(m.uptime().Seconds()))
}

// writeServiceError maps domain errors to status codes and logs the rest.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var verrs core.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		ValidationError(verrs).Write(w)
	case errors.Is(err, ledger.ErrNotFound):
		NotFoundError("transaction not found").Write(w)
	case errors.Is(err, ledger.ErrDuplicateID):
		ConflictError("transaction id already exists").Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldOperation, operation,
			log.FieldPath, r.URL.Path)
		InternalServerError("internal error").Write(w)
	}
}

package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/assistant"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// TransactionService is everything the API needs from the domain layer.
type TransactionService interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Financials(ctx context.Context) (core.Financials, error)
	Insights(ctx context.Context) ([]string, error)
	Overview(ctx context.Context, year, month int) (core.MonthOverview, error)
	Ask(ctx context.Context, query string) (assistant.Reply, error)
	Ping(ctx context.Context) error
}

type ServerConfig struct {
	Addr               string
	RateLimitPerMinute int
	OverviewCacheSize  int
	OverviewCacheTTL   time.Duration
	// Money renders the formatted amounts in financial responses.
	Money *core.Formatter
}

type Server struct {
	http.Server

	svc    TransactionService
	logger *log.Logger
	money  *core.Formatter
	now    func() time.Time

	rateLimiter     *ratelimit.Limiter
	detector        *security.Detector
	traceMiddleware *trace.Middleware

	overviewCache *cache.LRUCache[core.MonthOverview]
	cacheManager  *cache.Manager

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Background maintenance runs only while Background is active.
func NewServer(cfg ServerConfig, svc TransactionService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if cfg.Money == nil {
		cfg.Money = core.DefaultFormatter()
	}
	if cfg.OverviewCacheTTL <= 0 {
		cfg.OverviewCacheTTL = 5 * time.Minute
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		svc:           svc,
		logger:        logger,
		money:         cfg.Money,
		now:           time.Now,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:      security.NewDetector(logger),
		overviewCache: cache.NewLRUCache[core.MonthOverview](cfg.OverviewCacheSize, cfg.OverviewCacheTTL),
		cacheManager:  cache.NewManager(logger),
		appMetrics:    newAppMetrics(),
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.cacheManager.Register(s.overviewCache)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions", s.handleClearTransactions)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/financials", s.handleFinancials)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/assistant", s.handleAssistant)

	s.Handler = s.middleware(mux)
	return s
}

// middleware wraps the mux from the outermost layer inwards: headers,
// tracing, request logger, probe detection, then rate limiting of writes.
func (s *Server) middleware(h http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}

	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, onLimit,
		http.MethodPost, http.MethodDelete)(h)
	h = s.detector.Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(s.logger)(h)
	h = s.traceMiddleware.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return h
}

// Background runs the rate limiter and cache cleanup loops until ctx is
// cancelled.
func (s *Server) Background(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.rateLimiter.Run(ctx) })
	g.Go(func() error { return s.cacheManager.Run(ctx, time.Minute) })
	return g.Wait()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateOverviews drops every cached month: a mutation can touch any
// month and clear touches all of them.
func (s *Server) invalidateOverviews() {
	s.overviewCache.Purge()
}

func (s *Server) getOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	key := overviewCacheKey(year, month)
	if data, found := s.overviewCache.Get(key); found {
		s.appMetrics.cacheHit()
		log.FromContext(ctx).DebugContext(ctx, "Overview cache hit", log.FieldYear, year, log.FieldMonth, month)
		return data, nil
	}
	s.appMetrics.cacheMiss()

	data, err := s.svc.Overview(ctx, year, month)
	if err != nil {
		return core.MonthOverview{}, err
	}
	s.overviewCache.Set(key, data)
	return data, nil
}

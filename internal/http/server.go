// Package http exposes the wallet ledger as a JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wallet/internal/cache"
	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/middleware/ratelimit"
	"wallet/internal/middleware/security"
	"wallet/internal/middleware/trace"
)

// Wallet is the ledger surface the API drives.
type Wallet interface {
	AddIncome(ctx context.Context, amount string) (core.Money, error)
	AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, core.Money, error)
	EditExpense(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, core.Money, error)
	DeleteExpense(ctx context.Context, id string) bool

	Summary(topN int) (core.Summary, uint64)
	ByCategory() []core.CategoryAmount
	TopExpenses(n int) []core.Expense
	RecentTransactions() []core.Expense
	Snapshot() core.Snapshot
	Version() uint64
}

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Options tunes the server. Zero values pick defaults.
type Options struct {
	RateLimitPerMinute int
	SummaryCacheTTL    time.Duration
	SummaryCacheSize   int
	Logger             *applog.Logger
	Checks             map[string]ReadinessCheck
}

type Server struct {
	http.Server
	wallet    Wallet
	summaries *cache.LRU[core.Summary]
	limiter   *ratelimit.Limiter
	logger    *applog.Logger
	checks    map[string]ReadinessCheck
	started   time.Time

	stopBackground context.CancelFunc
	shutdownOnce   sync.Once
}

// NewServer wires routes and middleware around w.
func NewServer(addr string, w Wallet, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = 30 * time.Second
	}
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 64
	}

	s := &Server{
		wallet:    w,
		summaries: cache.NewLRU[core.Summary](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		logger:    opts.Logger.WithComponent(applog.ComponentHTTP),
		checks:    opts.Checks,
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/wallet", s.handleWallet)
	mux.HandleFunc("POST /api/income", s.handleAddIncome)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleEditExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/views/by-category", s.handleByCategory)
	mux.HandleFunc("GET /api/views/top", s.handleTop)

	ips, err := security.NewIPResolver()
	if err != nil {
		panic(fmt.Sprintf("default trusted proxies: %v", err))
	}
	limited := s.limiter.Middleware(ips.ClientIP, s.writeRateLimited)(mux)
	traced := trace.NewMiddleware(opts.Logger, ips.ClientIP).Middleware(security.Headers(limited))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           traced,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel
	go s.limiter.RunCleanup(ctx, 5*time.Minute)
	go cache.NewJanitor(opts.Logger, s.summaries).Run(ctx, time.Minute)

	return s
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopBackground()
		err = s.Server.Shutdown(ctx)

		stats := s.summaries.Stats()
		s.logger.WithComponent(applog.ComponentCache).InfoContext(ctx, "Summary cache stats",
			"hits", stats.Hits,
			"misses", stats.Misses,
			"size", stats.Size)
		s.summaries.Purge()

		m := s.limiter.Metrics()
		s.logger.WithComponent(applog.ComponentRateLimit).InfoContext(ctx, "Rate limiter stats",
			"rejected", m.Rejected,
			"clients", m.ClientCount)
	})
	return err
}

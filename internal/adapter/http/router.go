package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gocommission/internal/adapter/http/handler"
	"github.com/iho/gocommission/internal/adapter/http/middleware"
	"github.com/iho/gocommission/internal/infrastructure/metrics"
	"github.com/iho/gocommission/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	CommissionHandler *handler.CommissionHandler
	EntryHandler      *handler.EntryHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))

	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/sale-items/{id}", func(r chi.Router) {
			r.Post("/commission", cfg.CommissionHandler.Process)
			r.Get("/receipt", cfg.EntryHandler.GetReceipt)
			r.Get("/entries", cfg.EntryHandler.ListBySaleItem)
		})

		r.Post("/commissions/batch", cfg.CommissionHandler.ProcessBatch)

		r.Route("/beneficiaries/{id}", func(r chi.Router) {
			r.Get("/entries", cfg.EntryHandler.ListByBeneficiary)
			r.Get("/balance", cfg.EntryHandler.GetBalance)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/billsplit/internal/adapter/http/handler"
	"github.com/iho/billsplit/internal/adapter/http/middleware"
	"github.com/iho/billsplit/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ImportHandler      *handler.ImportHandler
	LedgerHandler      *handler.LedgerHandler
	TransactionHandler *handler.TransactionHandler
	PaymentHandler     *handler.PaymentHandler
	WithdrawalHandler  *handler.WithdrawalHandler
	InvoiceHandler     *handler.InvoiceHandler
	MaintenanceHandler *handler.MaintenanceHandler
	HealthHandler      *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// RateLimiter guards the import route. Left nil, a default per-IP
	// limiter is used.
	RateLimiter *middleware.RateLimiter

	Logger zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Imports are the expensive write path: rate-limited per IP and
		// replayable via idempotency keys so a re-sent invoice cannot
		// double-book.
		r.Group(func(r chi.Router) {
			limiter := cfg.RateLimiter
			if limiter == nil {
				limiter = middleware.NewRateLimiter(5, 10)
			}
			r.Use(limiter.Limit)

			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}

			r.Post("/imports", cfg.ImportHandler.Import)
		})

		r.Get("/ledger/{month}", cfg.LedgerHandler.Summary)

		r.Route("/months/{month}", func(r chi.Router) {
			r.Get("/transactions", cfg.LedgerHandler.ListTransactions)
			r.Delete("/transactions", cfg.LedgerHandler.DeleteMonth)
			r.Get("/installments", cfg.LedgerHandler.OpenInstallments)
			r.Post("/close", cfg.LedgerHandler.Close)
			r.Get("/closings", cfg.LedgerHandler.ListClosings)
			r.Post("/classify-pending", cfg.TransactionHandler.ClassifyPending)
			r.Get("/payments", cfg.PaymentHandler.ListByMonth)
			r.Get("/withdrawals", cfg.WithdrawalHandler.ListByMonth)
		})

		r.Route("/transactions/{id}", func(r chi.Router) {
			r.Patch("/classify", cfg.TransactionHandler.Classify)
			r.Delete("/", cfg.TransactionHandler.Delete)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Create)
			r.Delete("/{id}", cfg.PaymentHandler.Delete)
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", cfg.WithdrawalHandler.Create)
			r.Delete("/{id}", cfg.WithdrawalHandler.Delete)
		})

		r.Get("/rules", cfg.TransactionHandler.ListRules)
		r.Get("/invoices", cfg.InvoiceHandler.List)
		r.Put("/invoices/{month}", cfg.InvoiceHandler.Upsert)
		r.Post("/maintenance", cfg.MaintenanceHandler.Run)
	})

	return r
}

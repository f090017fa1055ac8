package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/deskline/billing/internal/adapter/http/handler"
	"github.com/deskline/billing/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler  *handler.LedgerHandler
	AlertHandler   *handler.AlertHandler
	DunningHandler *handler.DunningHandler
	HealthHandler  *handler.HealthHandler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Ledger
		r.Post("/ledger/entries", cfg.LedgerHandler.Record)

		// Tenant-scoped reads and reconciliation
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Get("/summary", cfg.LedgerHandler.Summary)
			r.Get("/alerts", cfg.AlertHandler.ListOpen)
			r.Post("/alerts/{alertID}/resolve", cfg.AlertHandler.Resolve)
			r.Post("/invoices/{invoiceID}/payment-failed", cfg.AlertHandler.PaymentFailed)
			r.Get("/invoices/{invoiceID}/dunning", cfg.DunningHandler.ListByInvoice)
		})

		// Dunning dispatch surface for the notifier
		r.Route("/dunning", func(r chi.Router) {
			r.Get("/pending", cfg.DunningHandler.ListPending)
			r.Post("/{eventID}/sent", cfg.DunningHandler.MarkSent)
			r.Post("/{eventID}/failed", cfg.DunningHandler.MarkFailed)
		})
	})

	return r
}

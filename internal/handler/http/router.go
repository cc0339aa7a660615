// Package http wires the storefront API onto a chi router.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatemesh/storefront/internal/cart"
	"github.com/gatemesh/storefront/internal/catalog"
	"github.com/gatemesh/storefront/internal/checkout"
	"github.com/gatemesh/storefront/internal/telemetry"
	"github.com/gatemesh/storefront/pkg/health"
	"github.com/gatemesh/storefront/pkg/middleware"
)

// RouterConfig bundles the dependencies the router needs.
type RouterConfig struct {
	CartStore       *cart.Store
	Catalog         catalog.Catalog
	CheckoutService *checkout.Service
	Telemetry       *telemetry.Buffer
	Health          *health.Handler
	WebhookSecret   string
	RateLimit       middleware.RateLimitConfig
	Logger          *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(CORS)

	// Health check endpoints
	r.Get("/health/live", cfg.Health.Live)
	r.Get("/health/ready", cfg.Health.Ready)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cfg.CartStore, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.CheckoutService, cfg.Logger)
	webhookHandler := NewWebhookHandler(cfg.CheckoutService, cfg.WebhookSecret, cfg.Logger)
	telemetryHandler := NewTelemetryHandler(cfg.Telemetry, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit))

		r.Route("/cart", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/open", cartHandler.OpenCart)
			r.Post("/close", cartHandler.CloseCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionIDFromHeader)

			r.Post("/", checkoutHandler.StartCheckout)
		})

		// Webhooks are authenticated by signature, not session.
		r.Post("/webhooks/payment", webhookHandler.HandlePaymentEvent)

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{productId}", catalogHandler.GetProduct)
		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/subscriptions/tiers", catalogHandler.ListSubscriptionTiers)
		r.With(ContentTypeJSON).Post("/subscriptions/checkout", checkoutHandler.StartSubscription)

		r.Route("/telemetry", func(r chi.Router) {
			r.Get("/{nodeId}/{metric}", telemetryHandler.GetReadings)
			r.Post("/{nodeId}/{metric}", telemetryHandler.RecordReading)
		})
	})

	return r
}

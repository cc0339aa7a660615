package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatemesh/storefront/internal/catalog"
)

// CatalogHandler handles HTTP requests for product and pricing endpoints.
type CatalogHandler struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(cat catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: cat,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products with optional category and
// featured filters.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if category := r.URL.Query().Get("category"); category != "" {
		products, err := h.catalog.ListByCategory(ctx, category)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Data: products})
		return
	}

	if r.URL.Query().Get("featured") == "true" {
		products, err := h.catalog.ListFeatured(ctx)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Data: products})
		return
	}

	products, err := h.catalog.List(ctx)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: products})
}

// GetProduct handles GET /api/v1/products/{productId}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	product, err := h.catalog.FindByID(r.Context(), productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: categories})
}

// ListSubscriptionTiers handles GET /api/v1/subscriptions/tiers. Tiers are
// fixed pricing data, independent of the catalog source.
func (h *CatalogHandler) ListSubscriptionTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Data: catalog.SubscriptionTiers()})
}

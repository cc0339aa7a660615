package catalog

import (
	"context"

	"github.com/gatemesh/storefront/internal/domain"
)

// Catalog is the read-only product reference data used by the cart and
// checkout. It is the source of truth for price-relevant display data; the
// cart never caches prices from it.
type Catalog interface {
	// FindByID returns the product with the given id, or a not-found error.
	FindByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns all products.
	List(ctx context.Context) ([]domain.Product, error)

	// ListFeatured returns the products flagged for the storefront landing page.
	ListFeatured(ctx context.Context) ([]domain.Product, error)

	// ListByCategory returns the products in the given category.
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)

	// Categories returns the product groupings with per-category counts.
	Categories(ctx context.Context) ([]domain.Category, error)
}

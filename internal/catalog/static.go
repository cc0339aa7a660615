package catalog

import (
	"context"

	apperrors "github.com/gatemesh/storefront/pkg/errors"

	"github.com/gatemesh/storefront/internal/domain"
)

// Static is an in-memory Catalog backed by the seeded product set. It is the
// default catalog source and the fallback when no database is configured.
type Static struct {
	products   []domain.Product
	byID       map[string]int
	categories []domain.Category
	tiers      []domain.SubscriptionTier
}

// NewStatic builds a Static catalog from the given products. Category counts
// are derived from the product set.
func NewStatic(products []domain.Product) *Static {
	byID := make(map[string]int, len(products))
	counts := make(map[string]int)
	for i, p := range products {
		byID[p.ID] = i
		counts[p.Category]++
	}

	categories := seedCategories()
	for i := range categories {
		categories[i].Count = counts[categories[i].ID]
	}

	return &Static{
		products:   products,
		byID:       byID,
		categories: categories,
		tiers:      SubscriptionTiers(),
	}
}

// NewSeeded returns a Static catalog over the full GateMesh product line.
func NewSeeded() *Static {
	return NewStatic(SeedProducts())
}

func (s *Static) FindByID(_ context.Context, id string) (*domain.Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	p := s.products[i]
	return &p, nil
}

func (s *Static) List(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *Static) ListFeatured(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Static) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Static) Categories(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// Tiers returns the subscription pricing tiers.
func (s *Static) Tiers(_ context.Context) ([]domain.SubscriptionTier, error) {
	out := make([]domain.SubscriptionTier, len(s.tiers))
	copy(out, s.tiers)
	return out, nil
}

package cart

import (
	"context"

	"github.com/gatemesh/storefront/internal/domain"
)

// Repository persists carts across restarts. The in-memory store is
// authoritative; the repository is a write-through mirror consulted only when
// a session is not yet loaded.
type Repository interface {
	// Get retrieves a cart by session ID. Returns a not-found error when no
	// cart is persisted for the session.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a persisted cart. Deleting an absent cart is a no-op.
	Delete(ctx context.Context, sessionID string) error
}

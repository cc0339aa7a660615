// Package cart holds the session-keyed cart state machine.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gatemesh/storefront/internal/catalog"
	"github.com/gatemesh/storefront/internal/domain"
	"github.com/gatemesh/storefront/internal/event"
	apperrors "github.com/gatemesh/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single cart line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct products allowed in a cart.
	MaxLinesPerCart = 50
)

// Clear reasons recorded on cart.cleared events.
const (
	ClearReasonShopper = "shopper"
	ClearReasonOrder   = "order-completed"
)

// ResolvedLine is a cart line joined with its catalog product. Unavailable is
// set when the product no longer resolves; such lines contribute zero to the
// total and are surfaced instead of silently dropped.
type ResolvedLine struct {
	Product     domain.Product `json:"product"`
	ProductID   string         `json:"product_id"`
	Quantity    int            `json:"quantity"`
	LineTotal   int64          `json:"line_total"`
	Unavailable bool           `json:"unavailable,omitempty"`
}

// Summary is a cart snapshot with catalog data and totals resolved at read
// time. Totals are never cached on the cart itself.
type Summary struct {
	Cart        *domain.Cart   `json:"cart"`
	Lines       []ResolvedLine `json:"lines"`
	TotalItems  int            `json:"total_items"`
	TotalAmount int64          `json:"total_amount"`
}

// Store is the authoritative in-memory cart state, keyed by session ID. A
// repository, when configured, mirrors every mutation so carts survive
// restarts; sessions are restored from the mirror lazily on first access.
// Mirror failures are logged and never fail the cart operation.
type Store struct {
	mu      sync.Mutex
	carts   map[string]*domain.Cart
	repo    Repository
	catalog catalog.Catalog
	events  *event.Producer
	logger  *slog.Logger
}

// NewStore creates a cart store. repo may be nil, in which case carts live
// only in memory.
func NewStore(repo Repository, cat catalog.Catalog, events *event.Producer, logger *slog.Logger) *Store {
	return &Store{
		carts:   make(map[string]*domain.Cart),
		repo:    repo,
		catalog: cat,
		events:  events,
		logger:  logger,
	}
}

// Get returns a snapshot of the session's cart. A session with no cart gets
// an empty one.
func (s *Store) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx, sessionID)
	return cart.Clone(), nil
}

// Summarize returns the session's cart with catalog data and totals resolved.
func (s *Store) Summarize(ctx context.Context, sessionID string) (*Summary, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Cart:       cart,
		Lines:      make([]ResolvedLine, 0, len(cart.Lines)),
		TotalItems: cart.TotalItems(),
	}

	for _, line := range cart.Lines {
		resolved := ResolvedLine{ProductID: line.ProductID, Quantity: line.Quantity}
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		switch {
		case err == nil:
			resolved.Product = *product
			resolved.LineTotal = product.Price * int64(line.Quantity)
			summary.TotalAmount += resolved.LineTotal
		case errors.Is(err, apperrors.ErrNotFound):
			resolved.Unavailable = true
		default:
			return nil, fmt.Errorf("resolve cart line %s: %w", line.ProductID, err)
		}
		summary.Lines = append(summary.Lines, resolved)
	}

	return summary, nil
}

// AddItem adds quantity of a product to the session's cart, merging into an
// existing line for the same product. The product must exist in the catalog.
func (s *Store) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	if _, err := s.catalog.FindByID(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx, sessionID)

	if i := cart.FindLine(productID); i >= 0 {
		if cart.Lines[i].Quantity+quantity > MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
	} else if len(cart.Lines) >= MaxLinesPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d distinct products", MaxLinesPerCart))
	}

	cart.AddLine(productID, quantity)
	s.commit(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart.Clone(), nil
}

// UpdateQuantity replaces the quantity of an existing line. A quantity of
// zero or less removes the line. Updating a product that is not in the cart
// is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx, sessionID)
	if cart.FindLine(productID) < 0 {
		// Nothing changed; no stamp, no mirror write, no event.
		return cart.Clone(), nil
	}
	cart.SetQuantity(productID, quantity)
	s.commit(ctx, cart)

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart.Clone(), nil
}

// RemoveItem removes the line for a product. Removing an absent product is a
// no-op.
func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx, sessionID)
	if cart.FindLine(productID) < 0 {
		return cart.Clone(), nil
	}
	cart.RemoveLine(productID)
	s.commit(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
	)

	return cart.Clone(), nil
}

// Clear removes all lines from the session's cart. reason is recorded on the
// cart.cleared event.
func (s *Store) Clear(ctx context.Context, sessionID, reason string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx, sessionID)
	cart.ClearLines()
	cart.UpdatedAt = time.Now().UTC()

	if s.repo != nil {
		if err := s.repo.Delete(ctx, sessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete mirrored cart",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.events != nil {
		if err := s.events.PublishCartCleared(ctx, sessionID, reason); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
		slog.String("reason", reason),
	)

	return nil
}

// SetOpen flips the cart drawer open flag.
func (s *Store) SetOpen(ctx context.Context, sessionID string, open bool) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx, sessionID)
	cart.IsOpen = open
	s.commit(ctx, cart)

	return cart.Clone(), nil
}

// load returns the authoritative cart for a session, restoring it from the
// mirror on first access or creating an empty one. Callers hold s.mu.
func (s *Store) load(ctx context.Context, sessionID string) *domain.Cart {
	if cart, ok := s.carts[sessionID]; ok {
		return cart
	}

	if s.repo != nil {
		cart, err := s.repo.Get(ctx, sessionID)
		if err == nil {
			s.carts[sessionID] = cart
			return cart
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to restore mirrored cart",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	cart := domain.NewCart(sessionID)
	s.carts[sessionID] = cart
	return cart
}

// commit stamps the cart, mirrors it, and publishes cart.updated. Mirror and
// publish failures are logged, never returned. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, cart *domain.Cart) {
	cart.UpdatedAt = time.Now().UTC()

	if s.repo != nil {
		if err := s.repo.Save(ctx, cart); err != nil {
			s.logger.ErrorContext(ctx, "failed to mirror cart",
				slog.String("session_id", cart.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.events != nil {
		if err := s.events.PublishCartUpdated(ctx, cart); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
				slog.String("session_id", cart.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}

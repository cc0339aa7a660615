// Package checkout orchestrates the handoff from a session cart to the
// payment provider's hosted checkout, and confirms completed orders.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gatemesh/storefront/internal/cart"
	"github.com/gatemesh/storefront/internal/catalog"
	"github.com/gatemesh/storefront/internal/domain"
	"github.com/gatemesh/storefront/internal/event"
	apperrors "github.com/gatemesh/storefront/pkg/errors"
)

// Metadata keys stamped on checkout sessions.
const (
	MetadataOrderType     = "order_type"
	MetadataTotalItems    = "total_items"
	MetadataPlanID        = "plan_id"
	MetadataBillingPeriod = "billing_period"

	// Order types distinguishing one-time hardware purchases from
	// recurring-plan sign-ups.
	OrderTypeHardware     = "hardware"
	OrderTypeSubscription = "subscription"
)

// Service orchestrates checkout: it snapshots the cart, re-resolves every
// line against the catalog, and hands the result to the payment gateway. At
// most one checkout per session may be in flight.
type Service struct {
	carts   *cart.Store
	catalog catalog.Catalog
	gateway Gateway
	events  *event.Producer
	logger  *slog.Logger
	baseURL string
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService creates a checkout service. baseURL is the public storefront
// origin used to build success and cancel redirect URLs. timeout bounds the
// gateway call; zero means no additional bound beyond the request context.
func NewService(
	carts *cart.Store,
	cat catalog.Catalog,
	gateway Gateway,
	events *event.Producer,
	logger *slog.Logger,
	baseURL string,
	timeout time.Duration,
) *Service {
	return &Service{
		carts:    carts,
		catalog:  cat,
		gateway:  gateway,
		events:   events,
		logger:   logger,
		baseURL:  baseURL,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// StartCheckout creates a hosted checkout session for the session's cart.
// The cart must be non-empty and every line must still resolve in the
// catalog; both are checked before any network call. The cart is not cleared
// here; that happens only when the provider confirms completion.
func (s *Service) StartCheckout(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	if !s.acquire(sessionID) {
		return nil, apperrors.Conflict("checkout already in progress for this session")
	}
	defer s.release(sessionID)

	snapshot, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	if snapshot.IsEmpty() {
		return nil, apperrors.EmptyCart()
	}

	req, err := s.buildRequest(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	session, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			s.logger.ErrorContext(ctx, "payment gateway rejected checkout",
				slog.String("session_id", sessionID),
				slog.String("category", gwErr.Category),
				slog.String("code", gwErr.Code),
				slog.String("error", gwErr.Message),
			)
		}
		return nil, apperrors.CheckoutFailed(err)
	}

	if s.events != nil {
		data := event.CheckoutInitiatedData{
			SessionID:         sessionID,
			CheckoutSessionID: session.ID,
			TotalAmount:       req.TotalAmount(),
			TotalItems:        req.TotalItems(),
			Currency:          req.Currency,
		}
		if err := s.events.PublishCheckoutInitiated(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish checkout.initiated event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", sessionID),
		slog.String("checkout_session_id", session.ID),
		slog.Int64("total_amount", req.TotalAmount()),
		slog.Int("total_items", req.TotalItems()),
	)

	return session, nil
}

// SubscriptionCheckout is the outcome of a subscription sign-up. Paid tiers
// carry a provider session; the free tier resolves locally and sends the
// shopper straight to the dashboard.
type SubscriptionCheckout struct {
	SessionID string `json:"session_id,omitempty"`
	URL       string `json:"url"`
}

// StartSubscription creates a subscription-mode checkout session for a
// pricing tier. The free tier requires no payment, so it is short-circuited
// before any gateway call.
func (s *Service) StartSubscription(ctx context.Context, tierID, billingPeriod string) (*SubscriptionCheckout, error) {
	if tierID == "" {
		return nil, apperrors.InvalidInput("tier id is required")
	}

	var interval string
	switch billingPeriod {
	case domain.BillingPeriodMonthly:
		interval = "month"
	case domain.BillingPeriodYearly:
		interval = "year"
	default:
		return nil, apperrors.InvalidInput("billing period must be monthly or yearly")
	}

	tier, ok := catalog.FindTier(tierID)
	if !ok {
		return nil, apperrors.NotFound("subscription tier", tierID)
	}

	if tier.Price == 0 {
		s.logger.InfoContext(ctx, "free tier selected, no payment required",
			slog.String("tier_id", tierID),
		)
		return &SubscriptionCheckout{URL: s.baseURL + "/dashboard"}, nil
	}

	amount := tier.Price
	if billingPeriod == domain.BillingPeriodYearly {
		amount = tier.AnnualPrice
	}

	req := &domain.SubscriptionRequest{
		TierID:        tier.ID,
		TierName:      tier.Name,
		BillingPeriod: billingPeriod,
		UnitAmount:    amount,
		Interval:      interval,
		Currency:      "USD",
		SuccessURL:    s.baseURL + "/dashboard?setup=true",
		CancelURL:     s.baseURL + "/pricing",
		Metadata: map[string]string{
			MetadataOrderType:     OrderTypeSubscription,
			MetadataPlanID:        tier.ID,
			MetadataBillingPeriod: billingPeriod,
		},
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	session, err := s.gateway.CreateSubscriptionSession(ctx, req)
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			s.logger.ErrorContext(ctx, "payment gateway rejected subscription sign-up",
				slog.String("tier_id", tierID),
				slog.String("category", gwErr.Category),
				slog.String("code", gwErr.Code),
				slog.String("error", gwErr.Message),
			)
		}
		return nil, apperrors.CheckoutFailed(err)
	}

	s.logger.InfoContext(ctx, "subscription checkout session created",
		slog.String("tier_id", tierID),
		slog.String("billing_period", billingPeriod),
		slog.String("checkout_session_id", session.ID),
	)

	return &SubscriptionCheckout{SessionID: session.ID, URL: session.URL}, nil
}

// CompletedOrder is a provider-confirmed purchase, extracted from a verified
// webhook event.
type CompletedOrder struct {
	CheckoutSessionID string
	CartSessionID     string
	AmountTotal       int64
	Currency          string
}

// ConfirmCompleted records a provider-confirmed order: the originating cart
// is cleared and an order.completed event is published. Confirming an order
// whose cart is already empty is a no-op on the cart, so webhook retries are
// safe.
func (s *Service) ConfirmCompleted(ctx context.Context, order CompletedOrder) error {
	if order.CheckoutSessionID == "" {
		return apperrors.InvalidInput("checkout session id is required")
	}

	if order.CartSessionID == "" {
		s.logger.WarnContext(ctx, "completed order carries no cart session, skipping cart clear",
			slog.String("checkout_session_id", order.CheckoutSessionID),
		)
	} else if err := s.carts.Clear(ctx, order.CartSessionID, cart.ClearReasonOrder); err != nil {
		return fmt.Errorf("clear cart for completed order: %w", err)
	}

	if s.events != nil {
		data := event.OrderCompletedData{
			SessionID:         order.CartSessionID,
			CheckoutSessionID: order.CheckoutSessionID,
			AmountTotal:       order.AmountTotal,
			Currency:          order.Currency,
		}
		if err := s.events.PublishOrderCompleted(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.completed event",
				slog.String("checkout_session_id", order.CheckoutSessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order completed",
		slog.String("checkout_session_id", order.CheckoutSessionID),
		slog.String("session_id", order.CartSessionID),
		slog.Int64("amount_total", order.AmountTotal),
	)

	return nil
}

// buildRequest re-resolves every cart line against the catalog. A line whose
// product no longer exists fails the whole checkout before the gateway is
// called.
func (s *Service) buildRequest(ctx context.Context, snapshot *domain.Cart) (*domain.CheckoutRequest, error) {
	lines := make([]domain.CheckoutLine, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound("product", line.ProductID)
			}
			return nil, fmt.Errorf("resolve checkout line %s: %w", line.ProductID, err)
		}
		lines = append(lines, domain.CheckoutLine{
			ProductID:   product.ID,
			Name:        product.Name,
			Description: product.Description,
			Images:      product.Images,
			Category:    product.Category,
			UnitAmount:  product.Price,
			Quantity:    line.Quantity,
		})
	}

	req := &domain.CheckoutRequest{
		CartSessionID: snapshot.SessionID,
		Lines:         lines,
		Currency:      snapshot.Currency,
		SuccessURL:    s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.baseURL + "/cart",
		Metadata: map[string]string{
			MetadataOrderType: OrderTypeHardware,
		},
	}
	req.Metadata[MetadataTotalItems] = strconv.Itoa(req.TotalItems())

	return req, nil
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

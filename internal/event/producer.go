package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gatemesh/storefront/internal/domain"
	pkgkafka "github.com/gatemesh/storefront/pkg/kafka"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated       = "storefront.cart.updated"
	TopicCartCleared       = "storefront.cart.cleared"
	TopicCheckoutInitiated = "storefront.checkout.initiated"
	TopicOrderCompleted    = "storefront.order.completed"
)

// Aggregate types carried in event envelopes.
const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Currency  string            `json:"currency"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// CheckoutInitiatedData is the payload for a checkout.initiated event.
type CheckoutInitiatedData struct {
	SessionID         string `json:"session_id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	TotalAmount       int64  `json:"total_amount"`
	TotalItems        int    `json:"total_items"`
	Currency          string `json:"currency"`
}

// OrderCompletedData is the payload for an order.completed event.
type OrderCompletedData struct {
	SessionID         string `json:"session_id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		SessionID: cart.SessionID,
		Lines:     cart.Lines,
		ItemCount: cart.TotalItems(),
		Currency:  cart.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.SessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", cart.SessionID),
		slog.Int("item_count", data.ItemCount),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event. reason distinguishes a
// shopper-initiated clear from an order-completion clear.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID, reason string) error {
	data := CartClearedData{SessionID: sessionID, Reason: reason}

	event, err := pkgkafka.NewEvent(TopicCartCleared, sessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
		slog.String("reason", reason),
	)

	return nil
}

// PublishCheckoutInitiated publishes a checkout.initiated event.
func (p *Producer) PublishCheckoutInitiated(ctx context.Context, data CheckoutInitiatedData) error {
	event, err := pkgkafka.NewEvent(TopicCheckoutInitiated, data.SessionID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create checkout.initiated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutInitiated, event); err != nil {
		return fmt.Errorf("publish checkout.initiated event: %w", err)
	}

	return nil
}

// PublishOrderCompleted publishes an order.completed event.
func (p *Producer) PublishOrderCompleted(ctx context.Context, data OrderCompletedData) error {
	event, err := pkgkafka.NewEvent(TopicOrderCompleted, data.CheckoutSessionID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCompleted, event); err != nil {
		return fmt.Errorf("publish order.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.completed event",
		slog.String("checkout_session_id", data.CheckoutSessionID),
	)

	return nil
}

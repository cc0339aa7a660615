package checkout

import (
	"context"
	"fmt"

	"github.com/gatemesh/storefront/internal/domain"
)

// Gateway error categories. Validation errors are caused by the request we
// built, provider errors by the payment provider rejecting or failing it, and
// network errors by transport failures before a response arrived.
const (
	ErrCategoryValidation = "validation"
	ErrCategoryProvider   = "provider"
	ErrCategoryNetwork    = "network"
)

// GatewayError is a categorized failure from the payment gateway.
type GatewayError struct {
	Category string
	Code     string
	Message  string
	Status   int
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment gateway %s error (%s): %s", e.Category, e.Code, e.Message)
	}
	return fmt.Sprintf("payment gateway %s error: %s", e.Category, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Gateway creates hosted checkout sessions with the payment provider, in
// one-time payment mode for hardware orders and subscription mode for
// recurring plans.
type Gateway interface {
	CreateSession(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutSession, error)
	CreateSubscriptionSession(ctx context.Context, req *domain.SubscriptionRequest) (*domain.CheckoutSession, error)
}

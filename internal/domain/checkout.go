package domain

import "time"

// CheckoutLine is a fully resolved line item in a checkout request. Name,
// description, images, and unit amount come fresh from the catalog at the
// moment checkout is invoked, never from the cart line.
type CheckoutLine struct {
	ProductID   string   `json:"product_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category"`
	UnitAmount  int64    `json:"unit_amount"`
	Quantity    int      `json:"quantity"`
}

// CheckoutRequest is the immutable snapshot handed to the payment gateway.
type CheckoutRequest struct {
	CartSessionID string            `json:"cart_session_id"`
	Lines         []CheckoutLine    `json:"lines"`
	Currency      string            `json:"currency"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TotalAmount returns the request total in minor currency units.
func (r *CheckoutRequest) TotalAmount() int64 {
	var total int64
	for _, line := range r.Lines {
		total += line.UnitAmount * int64(line.Quantity)
	}
	return total
}

// TotalItems returns the sum of line quantities.
func (r *CheckoutRequest) TotalItems() int {
	var total int
	for _, line := range r.Lines {
		total += line.Quantity
	}
	return total
}

// Billing periods accepted for subscription sign-ups.
const (
	BillingPeriodMonthly = "monthly"
	BillingPeriodYearly  = "yearly"
)

// SubscriptionRequest describes a recurring-plan checkout handed to the
// payment gateway. UnitAmount is the full charge per Interval, so a yearly
// sign-up carries the annual price with a "year" interval.
type SubscriptionRequest struct {
	TierID        string            `json:"tier_id"`
	TierName      string            `json:"tier_name"`
	BillingPeriod string            `json:"billing_period"`
	UnitAmount    int64             `json:"unit_amount"`
	Interval      string            `json:"interval"`
	Currency      string            `json:"currency"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession is the provider-issued session for an initiated but
// not-yet-confirmed purchase. The shopper is redirected to URL to pay.
type CheckoutSession struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

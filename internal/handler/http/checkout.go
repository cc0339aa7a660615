package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gatemesh/storefront/internal/checkout"
	"github.com/gatemesh/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout initiation.
type CheckoutHandler struct {
	service *checkout.Service
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *checkout.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// StartCheckout handles POST /api/v1/checkout. On success the response
// carries the provider-hosted payment URL the shopper is redirected to.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	session, err := h.service.StartCheckout(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: session})
}

// SubscriptionCheckoutRequest is the JSON request body for a monitoring-plan
// sign-up.
type SubscriptionCheckoutRequest struct {
	TierID        string `json:"tier_id" validate:"required"`
	BillingPeriod string `json:"billing_period" validate:"required,oneof=monthly yearly"`
}

// StartSubscription handles POST /api/v1/subscriptions/checkout. Paid tiers
// get a provider-hosted payment URL; the free tier redirects straight to the
// dashboard.
func (h *CheckoutHandler) StartSubscription(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.service.StartSubscription(r.Context(), req.TierID, req.BillingPeriod)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: result})
}

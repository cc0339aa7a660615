package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gatemesh/storefront/internal/checkout"
	"github.com/gatemesh/storefront/internal/checkout/stripe"
)

// maxWebhookBody bounds how much of a webhook payload is read.
const maxWebhookBody = 1 << 20

// WebhookHandler handles payment provider webhook deliveries.
type WebhookHandler struct {
	service *checkout.Service
	secret  string
	logger  *slog.Logger
}

// NewWebhookHandler creates a new webhook HTTP handler.
func NewWebhookHandler(svc *checkout.Service, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: svc,
		secret:  secret,
		logger:  logger,
	}
}

// HandlePaymentEvent handles POST /api/v1/webhooks/payment. The payload
// signature is verified before anything is acted on; unrecognized event types
// are acknowledged and ignored so the provider does not retry them.
func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "failed to read webhook payload"},
		})
		return
	}

	event, err := stripe.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected webhook delivery",
			slog.String("error", err.Error()),
		)
		writeError(w, r, h.logger, err)
		return
	}

	switch event.Type {
	case stripe.EventCheckoutSessionCompleted:
		order := checkout.CompletedOrder{
			CheckoutSessionID: event.Data.Object.ID,
			CartSessionID:     event.CartSessionID(),
			AmountTotal:       event.Data.Object.AmountTotal,
			Currency:          event.Data.Object.Currency,
		}
		if err := h.service.ConfirmCompleted(r.Context(), order); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	default:
		h.logger.DebugContext(r.Context(), "ignoring webhook event",
			slog.String("event_id", event.ID),
			slog.String("event_type", event.Type),
		)
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]bool{"received": true}})
}

package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/gatemesh/storefront/pkg/errors"
)

// Webhook event types we act on.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
)

// DefaultWebhookTolerance bounds how old a signed webhook timestamp may be.
const DefaultWebhookTolerance = 5 * time.Minute

// WebhookEvent is the subset of a Stripe event we consume.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID          string            `json:"id"`
			AmountTotal int64             `json:"amount_total"`
			Currency    string            `json:"currency"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// CartSessionID returns the cart session recorded in the checkout metadata.
func (e *WebhookEvent) CartSessionID() string {
	return e.Data.Object.Metadata["cart_session_id"]
}

// ConstructEvent verifies the Stripe-Signature header against the payload and
// parses the event. The header carries a unix timestamp and one or more v1
// HMAC-SHA256 signatures over "<timestamp>.<payload>".
func ConstructEvent(payload []byte, sigHeader, secret string) (*WebhookEvent, error) {
	return constructEventAt(payload, sigHeader, secret, DefaultWebhookTolerance, time.Now())
}

func constructEventAt(payload []byte, sigHeader, secret string, tolerance time.Duration, now time.Time) (*WebhookEvent, error) {
	if sigHeader == "" {
		return nil, apperrors.Unauthorized("missing webhook signature")
	}

	timestamp, signatures, err := parseSigHeader(sigHeader)
	if err != nil {
		return nil, apperrors.Unauthorized("malformed webhook signature")
	}

	if now.Sub(time.Unix(timestamp, 0)) > tolerance {
		return nil, apperrors.Unauthorized("webhook timestamp outside tolerance")
	}

	expected := computeSignature(timestamp, payload, secret)
	verified := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, apperrors.Unauthorized("webhook signature mismatch")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperrors.InvalidInput("malformed webhook payload")
	}

	return &event, nil
}

// parseSigHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]" into its parts.
func parseSigHeader(header string) (int64, []string, error) {
	var (
		timestamp  int64
		signatures []string
		haveTS     bool
	)

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("parse signature timestamp: %w", err)
			}
			timestamp = ts
			haveTS = true
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if !haveTS || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("signature header missing timestamp or v1 signature")
	}

	return timestamp, signatures, nil
}

func computeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

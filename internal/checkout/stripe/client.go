// Package stripe integrates with the Stripe hosted checkout API over plain
// HTTP. Requests are form-encoded per the Stripe wire format.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gatemesh/storefront/internal/checkout"
	"github.com/gatemesh/storefront/internal/domain"
)

// DefaultBaseURL is the Stripe API endpoint.
const DefaultBaseURL = "https://api.stripe.com"

// Countries eligible for free shipping at checkout.
var shippingCountries = []string{"US", "CA"}

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client creates Stripe checkout sessions.
type Client struct {
	httpClient HTTPDoer
	secretKey  string
	baseURL    string
}

// NewClient creates a Stripe client. baseURL may be empty, in which case the
// public Stripe endpoint is used.
func NewClient(httpClient HTTPDoer, secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		secretKey:  secretKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// sessionResponse is the subset of the Stripe checkout session object we use.
type sessionResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Created int64  `json:"created"`
}

// apiError is the Stripe error envelope.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession creates a hosted checkout session in payment mode.
func (c *Client) CreateSession(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("allow_promotion_codes", "true")

	currency := strings.ToLower(req.Currency)
	for i, line := range req.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
		if line.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", line.Description)
		}
		for j, img := range line.Images {
			form.Set(fmt.Sprintf("%s[price_data][product_data][images][%d]", prefix, j), img)
		}
		form.Set(prefix+"[quantity]", strconv.Itoa(line.Quantity))
	}

	for key, value := range req.Metadata {
		form.Set("metadata["+key+"]", value)
	}
	form.Set("metadata[cart_session_id]", req.CartSessionID)

	for i, country := range shippingCountries {
		form.Set(fmt.Sprintf("shipping_address_collection[allowed_countries][%d]", i), country)
	}

	// Single free-shipping option, 3-5 business days.
	const rate = "shipping_options[0][shipping_rate_data]"
	form.Set(rate+"[type]", "fixed_amount")
	form.Set(rate+"[fixed_amount][amount]", "0")
	form.Set(rate+"[fixed_amount][currency]", currency)
	form.Set(rate+"[display_name]", "Free shipping")
	form.Set(rate+"[delivery_estimate][minimum][unit]", "business_day")
	form.Set(rate+"[delivery_estimate][minimum][value]", "3")
	form.Set(rate+"[delivery_estimate][maximum][unit]", "business_day")
	form.Set(rate+"[delivery_estimate][maximum][value]", "5")

	return c.postSession(ctx, form)
}

// CreateSubscriptionSession creates a hosted checkout session in subscription
// mode for a recurring monitoring plan.
func (c *Client) CreateSubscriptionSession(ctx context.Context, req *domain.SubscriptionRequest) (*domain.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("allow_promotion_codes", "true")

	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.UnitAmount, 10))
	form.Set("line_items[0][price_data][recurring][interval]", req.Interval)
	form.Set("line_items[0][price_data][product_data][name]", req.TierName+" Plan")
	form.Set("line_items[0][quantity]", "1")

	for key, value := range req.Metadata {
		form.Set("metadata["+key+"]", value)
	}

	return c.postSession(ctx, form)
}

// postSession submits a session creation form and decodes the result.
func (c *Client) postSession(ctx context.Context, form url.Values) (*domain.CheckoutSession, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create checkout session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		return nil, &checkout.GatewayError{
			Category: checkout.ErrCategoryNetwork,
			Message:  "stripe unreachable",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &checkout.GatewayError{
			Category: checkout.ErrCategoryNetwork,
			Message:  "read stripe response",
			Err:      err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, &checkout.GatewayError{
			Category: checkout.ErrCategoryProvider,
			Status:   resp.StatusCode,
			Message:  "malformed stripe response",
			Err:      err,
		}
	}

	return &domain.CheckoutSession{
		ID:        session.ID,
		URL:       session.URL,
		CreatedAt: time.Unix(session.Created, 0).UTC(),
	}, nil
}

// parseAPIError maps a Stripe error body to a categorized gateway error.
// 4xx responses mean we built a bad request; 5xx mean Stripe failed.
func parseAPIError(status int, body []byte) error {
	gwErr := &checkout.GatewayError{
		Category: checkout.ErrCategoryProvider,
		Status:   status,
		Message:  fmt.Sprintf("stripe returned status %d", status),
	}
	if status >= 400 && status < 500 {
		gwErr.Category = checkout.ErrCategoryValidation
	}

	var parsed apiError
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		gwErr.Code = parsed.Error.Code
		gwErr.Message = parsed.Error.Message
		// Card declines are the provider's verdict, not a request defect.
		if parsed.Error.Type == "card_error" {
			gwErr.Category = checkout.ErrCategoryProvider
		}
	}

	return gwErr
}

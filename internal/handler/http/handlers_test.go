package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatemesh/storefront/internal/cart"
	cartredis "github.com/gatemesh/storefront/internal/cart/redis"
	"github.com/gatemesh/storefront/internal/catalog"
	"github.com/gatemesh/storefront/internal/checkout"
	"github.com/gatemesh/storefront/internal/domain"
	"github.com/gatemesh/storefront/internal/telemetry"
	"github.com/gatemesh/storefront/pkg/health"
	"github.com/gatemesh/storefront/pkg/middleware"
)

const testWebhookSecret = "whsec_test"

type stubGateway struct {
	calls int
	err   error
}

func (g *stubGateway) CreateSession(_ context.Context, _ *domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &domain.CheckoutSession{
		ID:        "cs_test_123",
		URL:       "https://checkout.stripe.com/c/pay/cs_test_123",
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (g *stubGateway) CreateSubscriptionSession(_ context.Context, _ *domain.SubscriptionRequest) (*domain.CheckoutSession, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &domain.CheckoutSession{
		ID:        "cs_test_sub_456",
		URL:       "https://checkout.stripe.com/c/pay/cs_test_sub_456",
		CreatedAt: time.Now().UTC(),
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupRouter(t *testing.T, gateway checkout.Gateway) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := cartredis.NewCartRepository(client, 24*time.Hour)

	logger := testLogger()
	cat := catalog.NewSeeded()
	store := cart.NewStore(repo, cat, nil, logger)
	svc := checkout.NewService(store, cat, gateway, nil, logger, "https://shop.gatemesh.com", 10*time.Second)

	rateCfg := middleware.DefaultRateLimitConfig()
	rateCfg.RequestsPerSecond = 1000
	rateCfg.Burst = 1000

	return NewRouter(RouterConfig{
		CartStore:       store,
		Catalog:         cat,
		CheckoutService: svc,
		Telemetry:       telemetry.NewBuffer(10),
		Health:          health.NewHandler(),
		WebhookSecret:   testWebhookSecret,
		RateLimit:       rateCfg,
		Logger:          logger,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

// --- Cart endpoints ---

func TestCartEndpoints_RequireSessionHeader(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "X-Session-ID")
}

func TestGetCart_Empty(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary cart.Summary
	decodeData(t, rec, &summary)
	assert.Zero(t, summary.TotalItems)
	assert.Empty(t, summary.Lines)
}

func TestAddItem_ThenGetCart(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "water-level-sensor", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary cart.Summary
	decodeData(t, rec, &summary)
	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, int64(35800), summary.TotalAmount)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Water Level Sensor", summary.Lines[0].Product.Name)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "discontinued-widget", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_ValidationError(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "water-level-sensor", Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "mesh-router", Quantity: 2})

	rec := doJSON(t, router, http.MethodPut, "/api/v1/cart/items/mesh-router", "sess-1",
		UpdateQuantityRequest{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Cart
	decodeData(t, rec, &updated)
	assert.True(t, updated.IsEmpty())
}

func TestRemoveItem_Idempotent(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "mesh-router", Quantity: 1})

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/mesh-router", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/mesh-router", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestClearCart(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "mesh-router", Quantity: 3})

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/cart", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-1", nil)
	var summary cart.Summary
	decodeData(t, rec, &summary)
	assert.Zero(t, summary.TotalItems)
}

func TestOpenAndCloseCart(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/open", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Cart
	decodeData(t, rec, &updated)
	assert.True(t, updated.IsOpen)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/close", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &updated)
	assert.False(t, updated.IsOpen)
}

func TestCart_UnsupportedMediaType(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte("product_id=x")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Session-ID", "sess-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// --- Checkout endpoint ---

func TestStartCheckout_EmptyCart(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "sess-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_CART")
}

func TestStartCheckout_Success(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "water-level-sensor", Quantity: 2})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "sess-1", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var session domain.CheckoutSession
	decodeData(t, rec, &session)
	assert.Equal(t, "cs_test_123", session.ID)
	assert.NotEmpty(t, session.URL)
}

func TestStartCheckout_GatewayDown(t *testing.T) {
	router := setupRouter(t, &stubGateway{
		err: &checkout.GatewayError{Category: checkout.ErrCategoryNetwork, Message: "unreachable"},
	})

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "mesh-router", Quantity: 1})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "sess-1", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "CHECKOUT_FAILED")
}

// --- Subscription checkout endpoint ---

func TestSubscriptionCheckout_PaidTier(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/subscriptions/checkout", "",
		SubscriptionCheckoutRequest{TierID: "professional", BillingPeriod: "monthly"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result checkout.SubscriptionCheckout
	decodeData(t, rec, &result)
	assert.Equal(t, "cs_test_sub_456", result.SessionID)
	assert.NotEmpty(t, result.URL)
}

func TestSubscriptionCheckout_FreeTier(t *testing.T) {
	gateway := &stubGateway{}
	router := setupRouter(t, gateway)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/subscriptions/checkout", "",
		SubscriptionCheckoutRequest{TierID: "community", BillingPeriod: "monthly"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result checkout.SubscriptionCheckout
	decodeData(t, rec, &result)
	assert.Empty(t, result.SessionID)
	assert.Equal(t, "https://shop.gatemesh.com/dashboard", result.URL)
	assert.Zero(t, gateway.calls)
}

func TestSubscriptionCheckout_InvalidBillingPeriod(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/subscriptions/checkout", "",
		SubscriptionCheckoutRequest{TierID: "professional", BillingPeriod: "weekly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestSubscriptionCheckout_UnknownTier(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/subscriptions/checkout", "",
		SubscriptionCheckoutRequest{TierID: "platinum", BillingPeriod: "yearly"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Webhook endpoint ---

func signWebhook(payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func completedEvent(sessionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_123", "amount_total": 35800, "currency": "usd",
			"metadata": {"cart_session_id": %q}}}
	}`, sessionID))
}

func TestWebhook_CompletedClearsCart(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "water-level-sensor", Quantity: 2})

	payload := completedEvent("sess-1")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signWebhook(payload, time.Now()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "received")

	cartRec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-1", nil)
	var summary cart.Summary
	decodeData(t, cartRec, &summary)
	assert.Zero(t, summary.TotalItems)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	payload := completedEvent("sess-1")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_IgnoresOtherEvents(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "sess-1",
		AddItemRequest{ProductID: "mesh-router", Quantity: 1})

	payload := []byte(`{"id": "evt_2", "type": "payment_intent.created", "data": {"object": {"id": "pi_1"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signWebhook(payload, time.Now()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cartRec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "sess-1", nil)
	var summary cart.Summary
	decodeData(t, cartRec, &summary)
	assert.Equal(t, 1, summary.TotalItems, "unrelated events must not touch the cart")
}

// --- Catalog endpoints ---

func TestListProducts(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []domain.Product
	decodeData(t, rec, &products)
	assert.Len(t, products, 6)
}

func TestListProducts_ByCategory(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products?category=irrigation", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []domain.Product
	decodeData(t, rec, &products)
	assert.Len(t, products, 3)
}

func TestListProducts_Featured(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products?featured=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []domain.Product
	decodeData(t, rec, &products)
	assert.Len(t, products, 4)
}

func TestGetProduct(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/livestock-tracker", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var product domain.Product
	decodeData(t, rec, &product)
	assert.Equal(t, int64(24900), product.Price)
}

func TestGetProduct_NotFound(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/discontinued-widget", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCategories(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []domain.Category
	decodeData(t, rec, &categories)
	assert.Len(t, categories, 6)
}

func TestListSubscriptionTiers(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/subscriptions/tiers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tiers []domain.SubscriptionTier
	decodeData(t, rec, &tiers)
	require.Len(t, tiers, 3)
	assert.Equal(t, "community", tiers[0].ID)
}

// --- Telemetry endpoints ---

func TestTelemetry_RecordAndRead(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/telemetry/node-1/water-level", "",
		RecordReadingRequest{Value: 3.7})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/telemetry/node-1/water-level", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var readings []domain.Reading
	decodeData(t, rec, &readings)
	require.Len(t, readings, 1)
	assert.Equal(t, 3.7, readings[0].Value)
}

// --- Health ---

func TestHealthLive(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rec := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

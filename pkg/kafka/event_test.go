package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartClearedData struct {
	SessionID string `json:"session_id"`
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("storefront.cart.cleared", "sess-1", "cart", "storefront", cartClearedData{SessionID: "sess-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "storefront.cart.cleared", ev.EventType)
	assert.Equal(t, "sess-1", ev.AggregateID)
	assert.Equal(t, "cart", ev.AggregateType)
	assert.Equal(t, 1, ev.Version)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestEvent_DataRoundTrip(t *testing.T) {
	ev, err := NewEvent("storefront.cart.cleared", "sess-2", "cart", "storefront", cartClearedData{SessionID: "sess-2"})
	require.NoError(t, err)

	var got cartClearedData
	require.NoError(t, ev.UnmarshalData(&got))
	assert.Equal(t, "sess-2", got.SessionID)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	ev, err := NewEvent("storefront.checkout.initiated", "sess-3", "checkout", "storefront", nil)
	require.NoError(t, err)

	ev.WithCorrelationID("corr-7")
	assert.Equal(t, "corr-7", ev.CorrelationID)
}

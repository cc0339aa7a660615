package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutRequest_TotalAmount(t *testing.T) {
	req := &CheckoutRequest{
		Lines: []CheckoutLine{
			{ProductID: "water-level-sensor", UnitAmount: 17900, Quantity: 2},
			{ProductID: "livestock-tracker", UnitAmount: 24900, Quantity: 1},
		},
		Currency: "usd",
	}

	assert.Equal(t, int64(60700), req.TotalAmount())
	assert.Equal(t, 3, req.TotalItems())
}

func TestCheckoutRequest_EmptyTotals(t *testing.T) {
	req := &CheckoutRequest{Currency: "usd"}

	assert.Zero(t, req.TotalAmount())
	assert.Zero(t, req.TotalItems())
}

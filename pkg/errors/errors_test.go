package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NotFound("product", "mesh-router")
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Contains(t, err.Error(), "mesh-router")
}

func TestAppError_Unwrap(t *testing.T) {
	err := InvalidInput("quantity must be positive")
	assert.ErrorIs(t, err, ErrInvalidInput)

	wrapped := fmt.Errorf("add item: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}

func TestCheckoutFailed_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := CheckoutFailed(cause)

	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Status)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("cart", "abc"), http.StatusNotFound},
		{"sentinel not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound},
		{"sentinel invalid input", fmt.Errorf("parse: %w", ErrInvalidInput), http.StatusBadRequest},
		{"empty cart", EmptyCart(), http.StatusUnprocessableEntity},
		{"checkout failed", fmt.Errorf("x: %w", ErrCheckoutFailed), http.StatusBadGateway},
		{"conflict", Conflict("busy"), http.StatusConflict},
		{"unauthorized", Unauthorized("bad signature"), http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

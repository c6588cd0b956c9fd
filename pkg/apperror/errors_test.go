package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	plain := New("ORD_001", "Order not found", http.StatusNotFound)
	assert.Equal(t, "[ORD_001] Order not found", plain.Error())

	wrapped := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, errors.New("connection refused"))
	assert.Equal(t, "[SYS_001] Internal database error: connection refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	wrapped := Wrap("SYS_002", "Payment provider request failed", http.StatusBadGateway, inner)

	assert.ErrorIs(t, wrapped, inner)
	assert.Nil(t, errors.Unwrap(New("ORD_002", "empty", http.StatusBadRequest)))
}

func TestErrorConstructors(t *testing.T) {
	wrapped := errors.New("underlying")

	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"StripeNotConfigured", ErrStripeNotConfigured(), "CFG_001", http.StatusServiceUnavailable},
		{"MissingSignature", ErrMissingSignature(), "SIG_001", http.StatusBadRequest},
		{"InvalidSignature", ErrInvalidSignature(wrapped), "SIG_002", http.StatusBadRequest},
		{"NotFound", ErrNotFound("Order"), "ORD_001", http.StatusNotFound},
		{"EmptyCart", ErrEmptyCart(), "ORD_002", http.StatusBadRequest},
		{"InvalidQuantity", ErrInvalidQuantity(), "ORD_003", http.StatusBadRequest},
		{"InvalidEmail", ErrInvalidEmail(), "ORD_004", http.StatusBadRequest},
		{"InvalidRedirectURL", ErrInvalidRedirectURL("bad url"), "ORD_005", http.StatusBadRequest},
		{"TooManyLineItems", ErrTooManyLineItems(50), "ORD_006", http.StatusBadRequest},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"DatabaseError", ErrDatabaseError(wrapped), "SYS_001", http.StatusInternalServerError},
		{"ProviderError", ErrProviderError(wrapped), "SYS_002", http.StatusBadGateway},
		{"InternalError", InternalError(wrapped), "SYS_001", http.StatusInternalServerError},
		{"Validation", Validation("bad field"), "ORD_000", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrNotFound_EntityInMessage(t *testing.T) {
	err := ErrNotFound("Checkout session")
	assert.Equal(t, "Checkout session not found", err.Message)
}

func TestErrTooManyLineItems_LimitInMessage(t *testing.T) {
	err := ErrTooManyLineItems(50)
	assert.Contains(t, err.Message, "50")
}

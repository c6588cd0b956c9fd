package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Configuration (CFG) ----

// ErrStripeNotConfigured signals that the payment integration is disabled.
// Nothing is processed or logged in this state.
func ErrStripeNotConfigured() *AppError {
	return New("CFG_001", "Payment integration is not configured", http.StatusServiceUnavailable)
}

// ---- Signature / authenticity (SIG) ----

func ErrMissingSignature() *AppError {
	return New("SIG_001", "Missing Stripe-Signature header", http.StatusBadRequest)
}

func ErrInvalidSignature(err error) *AppError {
	return Wrap("SIG_002", "Webhook signature verification failed", http.StatusBadRequest, err)
}

// ---- Checkout & orders (ORD) ----

func ErrNotFound(entity string) *AppError {
	return New("ORD_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrEmptyCart() *AppError {
	return New("ORD_002", "Checkout requires at least one line item", http.StatusBadRequest)
}

func ErrInvalidQuantity() *AppError {
	return New("ORD_003", "Line item quantity must be positive", http.StatusBadRequest)
}

func ErrInvalidEmail() *AppError {
	return New("ORD_004", "Invalid customer email address", http.StatusBadRequest)
}

func ErrInvalidRedirectURL(message string) *AppError {
	return New("ORD_005", message, http.StatusBadRequest)
}

func ErrTooManyLineItems(max int) *AppError {
	return New("ORD_006", fmt.Sprintf("Checkout supports at most %d line items", max), http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// ErrProviderError wraps a failed call to the payment provider API.
func ErrProviderError(err error) *AppError {
	return Wrap("SYS_002", "Payment provider request failed", http.StatusBadGateway, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request-validation error.
func Validation(message string) *AppError {
	return New("ORD_000", message, http.StatusBadRequest)
}

package ports

import (
	"context"
	"time"

	"recordlabel-commerce/internal/core/domain"

	stripe "github.com/stripe/stripe-go/v82"
)

// PaymentProvider wraps the hosted payment provider API. Implemented
// by the stripe adapter; mocked in service tests.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	// ListLineItems fetches the authoritative line items for a session
	// with product data expanded. The webhook payload alone does not
	// carry full line-item detail, so this round trip is required.
	ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
}

// CheckoutLineItem is one entry of a checkout request.
type CheckoutLineItem struct {
	ProductID string
	PriceID   string
	Quantity  int64
}

// CheckoutSessionInput holds validated input for session creation.
type CheckoutSessionInput struct {
	Items         []CheckoutLineItem
	CustomerEmail string // optional
	SuccessURL    string // must contain the session-id template token
	CancelURL     string
}

// CheckoutService creates hosted checkout sessions and resolves
// success-page summaries.
type CheckoutService interface {
	CreateSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSessionResult, error)
	GetSessionSummary(ctx context.Context, sessionID string) (*SessionSummary, error)
}

// CheckoutSessionResult is returned to the storefront for redirect.
type CheckoutSessionResult struct {
	SessionID string `json:"id"`
	URL       string `json:"url"`
}

// SessionSummary is the success-page order summary.
type SessionSummary struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// WebhookService verifies, records and dispatches provider events.
type WebhookService interface {
	// HandleEvent verifies the signature over the exact raw body
	// bytes, persists the event row, dispatches by event type and
	// marks the outcome. Unknown event types and replayed deliveries
	// return nil so the provider is acknowledged without a retry.
	HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error
}

// OrderService owns order materialization and payment-status updates.
type OrderService interface {
	// MaterializeOrder converts a completed checkout session into
	// durable order/order-item rows, decrements inventory and clears
	// the customer's cart. Redelivery of the same session is a no-op.
	MaterializeOrder(ctx context.Context, session *stripe.CheckoutSession) error
	HandlePaymentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error
	HandlePaymentFailed(ctx context.Context, intent *stripe.PaymentIntent) error
	// GetBySessionID returns the materialized order and its items for
	// a checkout session. A not-found error means the completion
	// webhook has not landed yet.
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, []domain.OrderItem, error)
}

// CustomerService mirrors provider-side customer records locally.
type CustomerService interface {
	SyncCreated(ctx context.Context, customer *stripe.Customer) error
	SyncUpdated(ctx context.Context, customer *stripe.Customer) error
}

// ProcessedEventCache is the Redis fast path for replay detection. An
// event id is cached only after its handler succeeded, so failed
// deliveries stay invisible here and the provider's retry reaches the
// handler again. The unique constraint on stripe_event_id stays
// authoritative.
type ProcessedEventCache interface {
	// IsProcessed reports whether the event id was already handled
	// successfully within the cache window.
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed records the event id after successful processing.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error
}

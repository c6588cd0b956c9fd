package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the Stripe event kinds this service understands.
// Dispatch happens over this closed set; anything else is acknowledged
// as EventTypeUnhandled so Stripe does not retry it.
type EventType string

const (
	EventCheckoutSessionCompleted EventType = "checkout.session.completed"
	EventPaymentIntentSucceeded   EventType = "payment_intent.succeeded"
	EventPaymentIntentFailed      EventType = "payment_intent.payment_failed"
	EventCustomerCreated          EventType = "customer.created"
	EventCustomerUpdated          EventType = "customer.updated"
	EventTypeUnhandled            EventType = ""
)

// ParseEventType maps a raw Stripe event-type string onto the closed
// set, returning EventTypeUnhandled for anything unknown.
func ParseEventType(raw string) EventType {
	switch t := EventType(raw); t {
	case EventCheckoutSessionCompleted,
		EventPaymentIntentSucceeded,
		EventPaymentIntentFailed,
		EventCustomerCreated,
		EventCustomerUpdated:
		return t
	default:
		return EventTypeUnhandled
	}
}

// ProcessingStatus represents the lifecycle state of a received event.
type ProcessingStatus string

const (
	ProcessingStatusPending ProcessingStatus = "pending"
	ProcessingStatusSuccess ProcessingStatus = "success"
	ProcessingStatusFailed  ProcessingStatus = "failed"
)

// WebhookEvent is the durable record of one delivery from the payment
// provider. Exactly one row exists per external event id; the row is
// written on receipt and mutated once to mark the outcome.
type WebhookEvent struct {
	ID               uuid.UUID        `json:"id"`
	StripeEventID    string           `json:"stripe_event_id"`
	EventType        string           `json:"event_type"`
	Payload          []byte           `json:"-"` // raw envelope bytes
	Processed        bool             `json:"processed"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	ErrorMessage     *string          `json:"error_message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty"`
}

// Succeeded reports whether the event's handler already completed.
// A failed row is not terminal: the provider redelivers and the
// handler runs again.
func (e *WebhookEvent) Succeeded() bool {
	return e.ProcessingStatus == ProcessingStatusSuccess
}

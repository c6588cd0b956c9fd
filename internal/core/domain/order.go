package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the overall lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents whether the order has been paid.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// FulfillmentStatus tracks shipment of goods, independent of payment.
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartial     FulfillmentStatus = "partial"
	FulfillmentStatusFulfilled   FulfillmentStatus = "fulfilled"
)

// Order is materialized from a completed checkout session. Monetary
// amounts are copied verbatim from the provider's computed totals and
// stored in minor units; they are never recomputed locally.
type Order struct {
	ID                      uuid.UUID         `json:"id"`
	StripeCheckoutSessionID string            `json:"stripe_checkout_session_id"`
	StripePaymentIntentID   *string           `json:"stripe_payment_intent_id,omitempty"`
	CustomerEmail           string            `json:"customer_email"`
	Status                  OrderStatus       `json:"status"`
	PaymentStatus           PaymentStatus     `json:"payment_status"`
	FulfillmentStatus       FulfillmentStatus `json:"fulfillment_status"`
	SubtotalAmount          int64             `json:"subtotal_amount"`
	TaxAmount               int64             `json:"tax_amount"`
	ShippingAmount          int64             `json:"shipping_amount"`
	DiscountAmount          int64             `json:"discount_amount"`
	TotalAmount             int64             `json:"total_amount"`
	Currency                string            `json:"currency"`
	BillingAddress          []byte            `json:"-"` // JSON snapshot
	ShippingAddress         []byte            `json:"-"` // JSON snapshot
	PaymentMethodTypes      []string          `json:"payment_method_types,omitempty"`
	TaxDetails              []byte            `json:"-"` // raw provider blob
	Metadata                []byte            `json:"-"` // raw provider blob
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`
}

// IsPaid returns true once payment has settled.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// OrderItem is one purchased line item. The product reference may be
// nil when the provider's product id has no local catalog mapping; the
// denormalized name/format/images snapshot keeps the item meaningful.
type OrderItem struct {
	ID                uuid.UUID         `json:"id"`
	OrderID           uuid.UUID         `json:"order_id"`
	ProductID         *uuid.UUID        `json:"product_id,omitempty"`
	Quantity          int64             `json:"quantity"`
	UnitAmount        int64             `json:"unit_amount"`
	TotalAmount       int64             `json:"total_amount"`
	TaxAmount         int64             `json:"tax_amount"`
	DiscountAmount    int64             `json:"discount_amount"`
	ProductName       string            `json:"product_name"`
	ProductFormat     *string           `json:"product_format,omitempty"`
	ProductImages     []string          `json:"product_images,omitempty"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	CreatedAt         time.Time         `json:"created_at"`
}

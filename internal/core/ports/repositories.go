package ports

import (
	"context"

	"recordlabel-commerce/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WebhookEventRepository defines persistence for the webhook event log.
// One row per external event id, enforced by a unique constraint.
type WebhookEventRepository interface {
	// Insert writes the event row with processed=false. It returns
	// created=false (and no error) when a row for the same Stripe
	// event id already exists, which is the replay-dedup signal.
	Insert(ctx context.Context, event *domain.WebhookEvent) (created bool, err error)
	GetByStripeEventID(ctx context.Context, stripeEventID string) (*domain.WebhookEvent, error)
	MarkProcessed(ctx context.Context, stripeEventID string) error
	MarkFailed(ctx context.Context, stripeEventID string, errMsg string) error
}

// OrderRepository defines persistence operations for orders and their items.
// Methods accepting pgx.Tx run inside the order-materialization transaction.
type OrderRepository interface {
	// Create conditionally inserts the order keyed on its checkout
	// session id. It returns created=false when an order for that
	// session already exists, so event redelivery becomes a no-op.
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) (created bool, err error)
	CreateItem(ctx context.Context, tx pgx.Tx, item *domain.OrderItem) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	// UpdatePaymentStatus transitions payment_status and status by
	// payment-intent id. Returns updated=false when no order matches.
	UpdatePaymentStatus(ctx context.Context, paymentIntentID string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) (updated bool, err error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
}

// ProductRepository defines catalog lookups and the inventory mutation.
type ProductRepository interface {
	GetByStripeProductID(ctx context.Context, stripeProductID string) (*domain.Product, error)
	// DecrementInventory atomically subtracts quantity, floored at
	// zero, and only touches rows with inventory_tracking enabled.
	DecrementInventory(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int64) error
}

// CustomerRepository defines persistence for provider-synced customers.
type CustomerRepository interface {
	GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*domain.Customer, error)
	// Upsert inserts or refreshes a customer keyed on the Stripe
	// customer id (the provider-side create path).
	Upsert(ctx context.Context, customer *domain.Customer) error
	// UpdateContact patches email/name/phone only, leaving locale,
	// currency and status untouched. Returns updated=false when no
	// row matches the Stripe customer id.
	UpdateContact(ctx context.Context, stripeCustomerID string, email, firstName, lastName string, phone *string) (updated bool, err error)
}

// CartRepository defines the post-checkout cart cleanup.
type CartRepository interface {
	// DeleteByCustomerID removes all cart rows for a customer and
	// returns the number of rows deleted.
	DeleteByCustomerID(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

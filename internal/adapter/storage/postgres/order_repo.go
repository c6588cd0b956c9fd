package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recordlabel-commerce/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create conditionally inserts an order within a database transaction.
// The unique constraint on stripe_checkout_session_id plus ON CONFLICT
// DO NOTHING turns a redelivered checkout.session.completed event into
// a no-op instead of a duplicate order.
func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) (bool, error) {
	query := `INSERT INTO orders (id, stripe_checkout_session_id, stripe_payment_intent_id, customer_email,
		status, payment_status, fulfillment_status,
		subtotal_amount, tax_amount, shipping_amount, discount_amount, total_amount, currency,
		billing_address, shipping_address, payment_method_types, tax_details, metadata,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (stripe_checkout_session_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		o.ID, o.StripeCheckoutSessionID, o.StripePaymentIntentID, o.CustomerEmail,
		o.Status, o.PaymentStatus, o.FulfillmentStatus,
		o.SubtotalAmount, o.TaxAmount, o.ShippingAmount, o.DiscountAmount, o.TotalAmount, o.Currency,
		o.BillingAddress, o.ShippingAddress, o.PaymentMethodTypes, o.TaxDetails, o.Metadata,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateItem inserts one order item within a database transaction.
func (r *OrderRepo) CreateItem(ctx context.Context, tx pgx.Tx, it *domain.OrderItem) error {
	query := `INSERT INTO order_items (id, order_id, product_id, quantity,
		unit_amount, total_amount, tax_amount, discount_amount,
		product_name, product_format, product_images, fulfillment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		it.ID, it.OrderID, it.ProductID, it.Quantity,
		it.UnitAmount, it.TotalAmount, it.TaxAmount, it.DiscountAmount,
		it.ProductName, it.ProductFormat, it.ProductImages, it.FulfillmentStatus, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetBySessionID fetches an order by its checkout session id.
func (r *OrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := orderSelect + ` WHERE stripe_checkout_session_id = $1`
	return r.scanOrder(r.pool.QueryRow(ctx, query, sessionID))
}

// GetByPaymentIntentID fetches an order by its payment-intent id.
func (r *OrderRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	query := orderSelect + ` WHERE stripe_payment_intent_id = $1`
	return r.scanOrder(r.pool.QueryRow(ctx, query, paymentIntentID))
}

// UpdatePaymentStatus transitions payment_status and status keyed by
// payment-intent id. A missing order is not an error: the order may
// not be materialized yet when payment events arrive out of order.
func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, paymentIntentID string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE orders SET payment_status = $1, status = $2, updated_at = $3
		WHERE stripe_payment_intent_id = $4`

	tag, err := r.pool.Exec(ctx, query, paymentStatus, status, now, paymentIntentID)
	if err != nil {
		return false, fmt.Errorf("update order payment status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListItems fetches all items of an order.
func (r *OrderRepo) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity,
		unit_amount, total_amount, tax_amount, discount_amount,
		product_name, product_format, product_images, fulfillment_status, created_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		it := domain.OrderItem{}
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.UnitAmount, &it.TotalAmount, &it.TaxAmount, &it.DiscountAmount,
			&it.ProductName, &it.ProductFormat, &it.ProductImages, &it.FulfillmentStatus, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}
	return items, nil
}

const orderSelect = `SELECT id, stripe_checkout_session_id, stripe_payment_intent_id, customer_email,
	status, payment_status, fulfillment_status,
	subtotal_amount, tax_amount, shipping_amount, discount_amount, total_amount, currency,
	billing_address, shipping_address, payment_method_types, tax_details, metadata,
	created_at, updated_at
	FROM orders`

// scanOrder is a helper to scan a single row into an Order.
func (r *OrderRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.StripeCheckoutSessionID, &o.StripePaymentIntentID, &o.CustomerEmail,
		&o.Status, &o.PaymentStatus, &o.FulfillmentStatus,
		&o.SubtotalAmount, &o.TaxAmount, &o.ShippingAmount, &o.DiscountAmount, &o.TotalAmount, &o.Currency,
		&o.BillingAddress, &o.ShippingAddress, &o.PaymentMethodTypes, &o.TaxDetails, &o.Metadata,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

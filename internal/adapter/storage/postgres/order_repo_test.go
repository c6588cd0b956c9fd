package postgres

import (
	"context"
	"testing"
	"time"

	"recordlabel-commerce/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder() *domain.Order {
	pi := "pi_123"
	return &domain.Order{
		ID:                      uuid.New(),
		StripeCheckoutSessionID: "cs_" + uuid.New().String()[:8],
		StripePaymentIntentID:   &pi,
		CustomerEmail:           "fan@example.com",
		Status:                  domain.OrderStatusPending,
		PaymentStatus:           domain.PaymentStatusPaid,
		FulfillmentStatus:       domain.FulfillmentStatusUnfulfilled,
		SubtotalAmount:          2000,
		TotalAmount:             2000,
		Currency:                "eur",
		PaymentMethodTypes:      []string{"card"},
		CreatedAt:               time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:               time.Now().UTC().Truncate(time.Microsecond),
	}
}

func orderColumns() []string {
	return []string{
		"id", "stripe_checkout_session_id", "stripe_payment_intent_id", "customer_email",
		"status", "payment_status", "fulfillment_status",
		"subtotal_amount", "tax_amount", "shipping_amount", "discount_amount", "total_amount", "currency",
		"billing_address", "shipping_address", "payment_method_types", "tax_details", "metadata",
		"created_at", "updated_at",
	}
}

func orderRow(o *domain.Order) *pgxmock.Rows {
	return pgxmock.NewRows(orderColumns()).AddRow(
		o.ID, o.StripeCheckoutSessionID, o.StripePaymentIntentID, o.CustomerEmail,
		o.Status, o.PaymentStatus, o.FulfillmentStatus,
		o.SubtotalAmount, o.TaxAmount, o.ShippingAmount, o.DiscountAmount, o.TotalAmount, o.Currency,
		o.BillingAddress, o.ShippingAddress, o.PaymentMethodTypes, o.TaxDetails, o.Metadata,
		o.CreatedAt, o.UpdatedAt,
	)
}

func TestOrderRepo_Create_New(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, o.StripeCheckoutSessionID, o.StripePaymentIntentID, o.CustomerEmail,
			o.Status, o.PaymentStatus, o.FulfillmentStatus,
			o.SubtotalAmount, o.TaxAmount, o.ShippingAmount, o.DiscountAmount, o.TotalAmount, o.Currency,
			o.BillingAddress, o.ShippingAddress, o.PaymentMethodTypes, o.TaxDetails, o.Metadata,
			o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	created, err := repo.Create(ctx, tx, o)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Create_DuplicateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()
	ctx := context.Background()

	mock.ExpectBegin()
	// ON CONFLICT (stripe_checkout_session_id) DO NOTHING: 0 rows
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, o.StripeCheckoutSessionID, o.StripePaymentIntentID, o.CustomerEmail,
			o.Status, o.PaymentStatus, o.FulfillmentStatus,
			o.SubtotalAmount, o.TaxAmount, o.ShippingAmount, o.DiscountAmount, o.TotalAmount, o.Currency,
			o.BillingAddress, o.ShippingAddress, o.PaymentMethodTypes, o.TaxDetails, o.Metadata,
			o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	created, err := repo.Create(ctx, tx, o)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestOrderRepo_CreateItem(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	ctx := context.Background()
	productID := uuid.New()
	it := &domain.OrderItem{
		ID:                uuid.New(),
		OrderID:           uuid.New(),
		ProductID:         &productID,
		Quantity:          3,
		UnitAmount:        2000,
		TotalAmount:       6000,
		ProductName:       "Midnight Pressing LP",
		FulfillmentStatus: domain.FulfillmentStatusUnfulfilled,
		CreatedAt:         time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(it.ID, it.OrderID, it.ProductID, it.Quantity,
			it.UnitAmount, it.TotalAmount, it.TaxAmount, it.DiscountAmount,
			it.ProductName, it.ProductFormat, it.ProductImages, it.FulfillmentStatus, it.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	err = repo.CreateItem(ctx, tx, it)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetBySessionID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE stripe_checkout_session_id").
		WithArgs(o.StripeCheckoutSessionID).
		WillReturnRows(orderRow(o))

	result, err := repo.GetBySessionID(context.Background(), o.StripeCheckoutSessionID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.ID, result.ID)
	assert.Equal(t, int64(2000), result.TotalAmount)
	assert.Equal(t, domain.PaymentStatusPaid, result.PaymentStatus)
}

func TestOrderRepo_GetBySessionID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM orders WHERE stripe_checkout_session_id").
		WithArgs("cs_missing").
		WillReturnRows(pgxmock.NewRows(orderColumns()))

	result, err := repo.GetBySessionID(context.Background(), "cs_missing")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestOrderRepo_UpdatePaymentStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs(domain.PaymentStatusPaid, domain.OrderStatusProcessing, pgxmock.AnyArg(), "pi_123").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := repo.UpdatePaymentStatus(context.Background(), "pi_123", domain.PaymentStatusPaid, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestOrderRepo_UpdatePaymentStatus_NoMatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs(domain.PaymentStatusFailed, domain.OrderStatusCancelled, pgxmock.AnyArg(), "pi_unknown").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := repo.UpdatePaymentStatus(context.Background(), "pi_unknown", domain.PaymentStatusFailed, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestOrderRepo_ListItems(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	orderID := uuid.New()
	productID := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "order_id", "product_id", "quantity",
		"unit_amount", "total_amount", "tax_amount", "discount_amount",
		"product_name", "product_format", "product_images", "fulfillment_status", "created_at",
	}).AddRow(
		uuid.New(), orderID, &productID, int64(2),
		int64(2000), int64(4000), int64(0), int64(0),
		"Midnight Pressing LP", (*string)(nil), []string{}, domain.FulfillmentStatusUnfulfilled, now,
	)

	mock.ExpectQuery("SELECT .+ FROM order_items WHERE order_id").
		WithArgs(orderID).
		WillReturnRows(rows)

	items, err := repo.ListItems(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, "Midnight Pressing LP", items[0].ProductName)
}

package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"recordlabel-commerce/internal/core/domain"
	"recordlabel-commerce/internal/core/ports/mocks"
	"recordlabel-commerce/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/mock/gomock"
)

type orderTestDeps struct {
	svc          *OrderServiceImpl
	orderRepo    *mocks.MockOrderRepository
	productRepo  *mocks.MockProductRepository
	customerRepo *mocks.MockCustomerRepository
	cartRepo     *mocks.MockCartRepository
	provider     *mocks.MockPaymentProvider
	transactor   *mocks.MockDBTransactor
	ctrl         *gomock.Controller
}

func setupOrderService(t *testing.T) *orderTestDeps {
	ctrl := gomock.NewController(t)
	d := &orderTestDeps{
		orderRepo:    mocks.NewMockOrderRepository(ctrl),
		productRepo:  mocks.NewMockProductRepository(ctrl),
		customerRepo: mocks.NewMockCustomerRepository(ctrl),
		cartRepo:     mocks.NewMockCartRepository(ctrl),
		provider:     mocks.NewMockPaymentProvider(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewOrderService(
		d.orderRepo, d.productRepo, d.customerRepo, d.cartRepo,
		d.provider, d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func paidSession(id string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:             id,
		AmountSubtotal: 2000,
		AmountTotal:    2000,
		Currency:       stripe.CurrencyEUR,
		PaymentStatus:  stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent:  &stripe.PaymentIntent{ID: "pi_123"},
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "fan@example.com",
		},
	}
}

func vinylLineItem(quantity int64, stripeProductID string) *stripe.LineItem {
	return &stripe.LineItem{
		Quantity:    quantity,
		AmountTotal: 2000,
		Description: "Midnight Pressing LP",
		Price: &stripe.Price{
			UnitAmount: 2000,
			Product:    &stripe.Product{ID: stripeProductID, Name: "Midnight Pressing LP"},
		},
	}
}

// ==================== MaterializeOrder Tests ====================

func TestOrderService_MaterializeOrder_Success(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	session := paidSession("cs_test_1")
	productID := uuid.New()

	d.provider.EXPECT().ListLineItems(ctx, "cs_test_1").Return([]*stripe.LineItem{vinylLineItem(3, "prod_vinyl")}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)

	var captured *domain.Order
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, o *domain.Order) (bool, error) {
			captured = o
			return true, nil
		})
	d.productRepo.EXPECT().GetByStripeProductID(ctx, "prod_vinyl").Return(&domain.Product{
		ID:                productID,
		Title:             "Midnight Pressing LP",
		InventoryTracking: true,
		InventoryQuantity: 5,
	}, nil)
	d.orderRepo.EXPECT().CreateItem(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, it *domain.OrderItem) error {
			assert.Equal(t, int64(3), it.Quantity)
			assert.Equal(t, int64(2000), it.UnitAmount)
			require.NotNil(t, it.ProductID)
			assert.Equal(t, productID, *it.ProductID)
			assert.Equal(t, domain.FulfillmentStatusUnfulfilled, it.FulfillmentStatus)
			return nil
		})
	d.productRepo.EXPECT().DecrementInventory(ctx, tx, productID, int64(3)).Return(nil)

	err := d.svc.MaterializeOrder(ctx, session)
	require.NoError(t, err)

	// Amounts come from the provider's totals, never recomputed
	require.NotNil(t, captured)
	assert.Equal(t, "cs_test_1", captured.StripeCheckoutSessionID)
	assert.Equal(t, int64(2000), captured.TotalAmount)
	assert.Equal(t, "eur", captured.Currency)
	assert.Equal(t, domain.PaymentStatusPaid, captured.PaymentStatus)
	assert.Equal(t, domain.FulfillmentStatusUnfulfilled, captured.FulfillmentStatus)
	assert.Equal(t, "fan@example.com", captured.CustomerEmail)
	require.NotNil(t, captured.StripePaymentIntentID)
	assert.Equal(t, "pi_123", *captured.StripePaymentIntentID)
}

func TestOrderService_MaterializeOrder_Redelivery(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	session := paidSession("cs_test_dup")

	d.provider.EXPECT().ListLineItems(ctx, "cs_test_dup").Return([]*stripe.LineItem{vinylLineItem(1, "prod_vinyl")}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Order already exists for this session: no items, no decrements
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(false, nil)

	err := d.svc.MaterializeOrder(ctx, session)
	require.NoError(t, err)
}

func TestOrderService_MaterializeOrder_UntrackedInventory(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	session := paidSession("cs_test_2")
	productID := uuid.New()

	d.provider.EXPECT().ListLineItems(ctx, "cs_test_2").Return([]*stripe.LineItem{vinylLineItem(2, "prod_digital")}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(true, nil)
	// Digital release: no inventory tracking, so no decrement call
	d.productRepo.EXPECT().GetByStripeProductID(ctx, "prod_digital").Return(&domain.Product{
		ID:                productID,
		Title:             "Midnight Pressing (Digital)",
		InventoryTracking: false,
	}, nil)
	d.orderRepo.EXPECT().CreateItem(ctx, tx, gomock.Any()).Return(nil)

	err := d.svc.MaterializeOrder(ctx, session)
	require.NoError(t, err)
}

func TestOrderService_MaterializeOrder_UnknownProduct(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	session := paidSession("cs_test_3")

	d.provider.EXPECT().ListLineItems(ctx, "cs_test_3").Return([]*stripe.LineItem{vinylLineItem(1, "prod_unmapped")}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(true, nil)
	d.productRepo.EXPECT().GetByStripeProductID(ctx, "prod_unmapped").Return(nil, nil)
	d.orderRepo.EXPECT().CreateItem(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, it *domain.OrderItem) error {
			// Item survives with a provider snapshot and no catalog reference
			assert.Nil(t, it.ProductID)
			assert.Equal(t, "Midnight Pressing LP", it.ProductName)
			return nil
		})

	err := d.svc.MaterializeOrder(ctx, session)
	require.NoError(t, err)
}

func TestOrderService_MaterializeOrder_ClearsCart(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	session := paidSession("cs_test_4")
	session.Customer = &stripe.Customer{ID: "cus_123"}
	customerID := uuid.New()
	productID := uuid.New()

	d.provider.EXPECT().ListLineItems(ctx, "cs_test_4").Return([]*stripe.LineItem{vinylLineItem(1, "prod_vinyl")}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(true, nil)
	d.productRepo.EXPECT().GetByStripeProductID(ctx, "prod_vinyl").Return(&domain.Product{
		ID:                productID,
		InventoryTracking: true,
	}, nil)
	d.orderRepo.EXPECT().CreateItem(ctx, tx, gomock.Any()).Return(nil)
	d.productRepo.EXPECT().DecrementInventory(ctx, tx, productID, int64(1)).Return(nil)
	d.customerRepo.EXPECT().GetByStripeCustomerID(ctx, "cus_123").Return(&domain.Customer{ID: customerID}, nil)
	d.cartRepo.EXPECT().DeleteByCustomerID(ctx, tx, customerID).Return(int64(2), nil)

	err := d.svc.MaterializeOrder(ctx, session)
	require.NoError(t, err)
}

func TestOrderService_MaterializeOrder_UnknownCustomerSkipsCart(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	session := paidSession("cs_test_5")
	session.Customer = &stripe.Customer{ID: "cus_ghost"}

	d.provider.EXPECT().ListLineItems(ctx, "cs_test_5").Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(true, nil)
	d.customerRepo.EXPECT().GetByStripeCustomerID(ctx, "cus_ghost").Return(nil, nil)

	err := d.svc.MaterializeOrder(ctx, session)
	require.NoError(t, err)
}

func TestOrderService_MaterializeOrder_ProviderError(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.provider.EXPECT().ListLineItems(ctx, "cs_test_6").Return(nil, errors.New("api unreachable"))

	err := d.svc.MaterializeOrder(ctx, paidSession("cs_test_6"))
	require.Error(t, err)

	// Surfaces as a 500 so the provider retries the delivery
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestOrderService_MaterializeOrder_ItemFailureAbortsAll(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	session := paidSession("cs_test_7")

	d.provider.EXPECT().ListLineItems(ctx, "cs_test_7").Return([]*stripe.LineItem{
		vinylLineItem(1, "prod_a"),
		vinylLineItem(1, "prod_b"),
	}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(true, nil)
	d.productRepo.EXPECT().GetByStripeProductID(ctx, "prod_a").Return(nil, nil)
	d.orderRepo.EXPECT().CreateItem(ctx, tx, gomock.Any()).Return(errors.New("insert failed"))
	// No second item attempt: the transaction rolls back as a whole

	err := d.svc.MaterializeOrder(ctx, session)
	require.Error(t, err)
}

// ==================== Payment Status Tests ====================

func TestOrderService_HandlePaymentSucceeded(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.orderRepo.EXPECT().
		UpdatePaymentStatus(ctx, "pi_123", domain.PaymentStatusPaid, domain.OrderStatusProcessing).
		Return(true, nil)

	err := d.svc.HandlePaymentSucceeded(ctx, &stripe.PaymentIntent{ID: "pi_123"})
	require.NoError(t, err)
}

func TestOrderService_HandlePaymentFailed(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.orderRepo.EXPECT().
		UpdatePaymentStatus(ctx, "pi_123", domain.PaymentStatusFailed, domain.OrderStatusCancelled).
		Return(true, nil)

	err := d.svc.HandlePaymentFailed(ctx, &stripe.PaymentIntent{ID: "pi_123"})
	require.NoError(t, err)
}

func TestOrderService_HandlePaymentSucceeded_NoOrderYet(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.orderRepo.EXPECT().
		UpdatePaymentStatus(ctx, "pi_unknown", domain.PaymentStatusPaid, domain.OrderStatusProcessing).
		Return(false, nil)

	// Out-of-order delivery: intent event before the session event
	err := d.svc.HandlePaymentSucceeded(ctx, &stripe.PaymentIntent{ID: "pi_unknown"})
	require.NoError(t, err)
}

// ==================== Lookup Tests ====================

func TestOrderService_GetBySessionID(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	stored := &domain.Order{
		ID:                      uuid.New(),
		StripeCheckoutSessionID: "cs_lookup",
		TotalAmount:             2000,
		Currency:                "eur",
	}
	d.orderRepo.EXPECT().GetBySessionID(ctx, "cs_lookup").Return(stored, nil)
	d.orderRepo.EXPECT().ListItems(ctx, stored.ID).Return([]domain.OrderItem{
		{ID: uuid.New(), OrderID: stored.ID, ProductName: "Blue Train LP", Quantity: 1},
	}, nil)

	order, items, err := d.svc.GetBySessionID(ctx, "cs_lookup")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, order.ID)
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Train LP", items[0].ProductName)
}

func TestOrderService_GetBySessionID_NotMaterialized(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.orderRepo.EXPECT().GetBySessionID(ctx, "cs_missing").Return(nil, nil)

	_, _, err := d.svc.GetBySessionID(ctx, "cs_missing")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_001", appErr.Code)
}

// ==================== orderFromSession Tests ====================

func TestOrderFromSession_AmountsVerbatim(t *testing.T) {
	session := paidSession("cs_test_amounts")
	session.TotalDetails = &stripe.CheckoutSessionTotalDetails{
		AmountTax:      200,
		AmountShipping: 500,
		AmountDiscount: 100,
	}

	order := orderFromSession(session)

	assert.Equal(t, int64(2000), order.SubtotalAmount)
	assert.Equal(t, int64(2000), order.TotalAmount)
	assert.Equal(t, int64(200), order.TaxAmount)
	assert.Equal(t, int64(500), order.ShippingAmount)
	assert.Equal(t, int64(100), order.DiscountAmount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestOrderFromSession_UnpaidSession(t *testing.T) {
	session := paidSession("cs_test_unpaid")
	session.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid

	order := orderFromSession(session)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
}

func TestOrderFromSession_ShippingFromMetadata(t *testing.T) {
	session := paidSession("cs_test_meta")
	session.Metadata = map[string]string{
		"shipping_address": `{"line1":"Plattenweg 1","city":"Berlin"}`,
	}

	order := orderFromSession(session)
	assert.JSONEq(t, `{"line1":"Plattenweg 1","city":"Berlin"}`, string(order.ShippingAddress))
}

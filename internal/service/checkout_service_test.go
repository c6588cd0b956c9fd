package service

import (
	"context"
	"errors"
	"testing"

	"recordlabel-commerce/config"
	"recordlabel-commerce/internal/core/ports"
	"recordlabel-commerce/internal/core/ports/mocks"
	"recordlabel-commerce/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/mock/gomock"
)

type checkoutTestDeps struct {
	svc      *CheckoutServiceImpl
	provider *mocks.MockPaymentProvider
	ctrl     *gomock.Controller
}

func setupCheckoutService(t *testing.T) *checkoutTestDeps {
	ctrl := gomock.NewController(t)
	d := &checkoutTestDeps{
		provider: mocks.NewMockPaymentProvider(ctrl),
		ctrl:     ctrl,
	}
	stripeCfg := config.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		Currency:      "eur",
	}
	checkoutCfg := config.CheckoutConfig{
		SuccessURLToken: "{CHECKOUT_SESSION_ID}",
		MaxLineItems:    50,
	}
	d.svc = NewCheckoutService(d.provider, stripeCfg, checkoutCfg, zerolog.Nop())
	return d
}

func validInput() ports.CheckoutSessionInput {
	return ports.CheckoutSessionInput{
		Items: []ports.CheckoutLineItem{
			{ProductID: "prod_1", PriceID: "price_1", Quantity: 2},
		},
		CustomerEmail: "fan@example.com",
		SuccessURL:    "https://shop.example.com/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://shop.example.com/cart",
	}
}

// ==================== CreateSession Tests ====================

func TestCheckoutService_CreateSession_Success(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	in := validInput()

	d.provider.EXPECT().CreateCheckoutSession(ctx, in).Return(&stripe.CheckoutSession{
		ID:  "cs_test_1",
		URL: "https://checkout.stripe.com/c/pay/cs_test_1",
	}, nil)

	result, err := d.svc.CreateSession(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", result.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", result.URL)
}

func TestCheckoutService_CreateSession_EmptyCart(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	in := validInput()
	in.Items = nil

	_, err := d.svc.CreateSession(context.Background(), in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_002", appErr.Code)
}

func TestCheckoutService_CreateSession_InvalidQuantity(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	in := validInput()
	in.Items[0].Quantity = 0

	_, err := d.svc.CreateSession(context.Background(), in)
	require.Error(t, err)
}

func TestCheckoutService_CreateSession_TooManyLineItems(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	in := validInput()
	in.Items = make([]ports.CheckoutLineItem, 51)
	for i := range in.Items {
		in.Items[i] = ports.CheckoutLineItem{PriceID: "price_1", Quantity: 1}
	}

	_, err := d.svc.CreateSession(context.Background(), in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_006", appErr.Code)
}

func TestCheckoutService_CreateSession_InvalidEmail(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	in := validInput()
	in.CustomerEmail = "not-an-address"

	_, err := d.svc.CreateSession(context.Background(), in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_004", appErr.Code)
}

func TestCheckoutService_CreateSession_MissingSessionToken(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	in := validInput()
	in.SuccessURL = "https://shop.example.com/success"

	_, err := d.svc.CreateSession(context.Background(), in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_005", appErr.Code)
}

func TestCheckoutService_CreateSession_NotConfigured(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()
	d.svc.stripeCfg = config.StripeConfig{}

	_, err := d.svc.CreateSession(context.Background(), validInput())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CFG_001", appErr.Code)
	assert.Equal(t, 503, appErr.HTTPStatus)
}

func TestCheckoutService_CreateSession_ProviderError(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	in := validInput()
	d.provider.EXPECT().CreateCheckoutSession(ctx, in).Return(nil, errors.New("stripe 500"))

	_, err := d.svc.CreateSession(ctx, in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_002", appErr.Code)
}

// ==================== GetSessionSummary Tests ====================

func TestCheckoutService_GetSessionSummary_Success(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.provider.EXPECT().GetCheckoutSession(ctx, "cs_test_1").Return(&stripe.CheckoutSession{
		ID:            "cs_test_1",
		Status:        stripe.CheckoutSessionStatusComplete,
		AmountTotal:   2000,
		Currency:      stripe.CurrencyEUR,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "fan@example.com",
		},
	}, nil)

	summary, err := d.svc.GetSessionSummary(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", summary.ID)
	assert.Equal(t, "complete", summary.Status)
	assert.Equal(t, int64(2000), summary.AmountTotal)
	assert.Equal(t, "paid", summary.PaymentStatus)
	assert.Equal(t, "fan@example.com", summary.CustomerEmail)
}

func TestCheckoutService_GetSessionSummary_EmptyID(t *testing.T) {
	d := setupCheckoutService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.GetSessionSummary(context.Background(), "")
	require.Error(t, err)
}

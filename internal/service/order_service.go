package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recordlabel-commerce/internal/core/domain"
	"recordlabel-commerce/internal/core/ports"
	"recordlabel-commerce/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v82"
)

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	orderRepo    ports.OrderRepository
	productRepo  ports.ProductRepository
	customerRepo ports.CustomerRepository
	cartRepo     ports.CartRepository
	provider     ports.PaymentProvider
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(
	orderRepo ports.OrderRepository,
	productRepo ports.ProductRepository,
	customerRepo ports.CustomerRepository,
	cartRepo ports.CartRepository,
	provider ports.PaymentProvider,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		cartRepo:     cartRepo,
		provider:     provider,
		transactor:   transactor,
		log:          log,
	}
}

// MaterializeOrder converts a completed checkout session into durable
// order rows. Line items come from a fresh provider API call, not the
// webhook payload, which carries no line-item detail. The order, its
// items, the inventory decrements and the cart cleanup all commit in
// one database transaction; a redelivered session short-circuits on
// the conditional insert and leaves no side effects.
func (s *OrderServiceImpl) MaterializeOrder(ctx context.Context, session *stripe.CheckoutSession) error {
	// Mapped to SYS_001 rather than the checkout path's 502: any
	// handler failure surfaces as a plain 500 to the provider.
	lineItems, err := s.provider.ListLineItems(ctx, session.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("fetch line items: %w", err))
	}

	order := orderFromSession(session)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	created, err := s.orderRepo.Create(ctx, dbTx, order)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("create order: %w", err))
	}
	if !created {
		s.log.Info().
			Str("session_id", session.ID).
			Msg("order already materialized for session, skipping redelivery")
		return nil
	}

	for _, li := range lineItems {
		item, product, err := s.buildOrderItem(ctx, order.ID, li)
		if err != nil {
			return err
		}
		if err := s.orderRepo.CreateItem(ctx, dbTx, item); err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("create order item: %w", err))
		}
		if product != nil && product.InventoryTracking {
			if err := s.productRepo.DecrementInventory(ctx, dbTx, product.ID, item.Quantity); err != nil {
				return apperror.ErrDatabaseError(fmt.Errorf("decrement inventory: %w", err))
			}
		}
	}

	if err := s.clearCart(ctx, dbTx, session); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("session_id", session.ID).
		Int("items", len(lineItems)).
		Int64("total", order.TotalAmount).
		Str("currency", order.Currency).
		Msg("order materialized")

	return nil
}

// buildOrderItem maps a provider line item onto an OrderItem, resolving
// the local catalog product by its Stripe product id. A missing catalog
// mapping is not an error: the item keeps a nil product reference and a
// denormalized snapshot from the provider's data.
func (s *OrderServiceImpl) buildOrderItem(ctx context.Context, orderID uuid.UUID, li *stripe.LineItem) (*domain.OrderItem, *domain.Product, error) {
	now := time.Now().UTC()
	item := &domain.OrderItem{
		ID:                uuid.New(),
		OrderID:           orderID,
		Quantity:          li.Quantity,
		TotalAmount:       li.AmountTotal,
		TaxAmount:         li.AmountTax,
		DiscountAmount:    li.AmountDiscount,
		ProductName:       li.Description,
		FulfillmentStatus: domain.FulfillmentStatusUnfulfilled,
		CreatedAt:         now,
	}

	var stripeProduct *stripe.Product
	if li.Price != nil {
		item.UnitAmount = li.Price.UnitAmount
		stripeProduct = li.Price.Product
	}
	if stripeProduct == nil {
		return item, nil, nil
	}

	product, err := s.productRepo.GetByStripeProductID(ctx, stripeProduct.ID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("resolve product %s: %w", stripeProduct.ID, err))
	}

	if product != nil {
		item.ProductID = &product.ID
		item.ProductName = product.Title
		item.ProductFormat = product.Format
		item.ProductImages = product.Images
		return item, product, nil
	}

	// Snapshot straight from the provider's product data.
	item.ProductName = stripeProduct.Name
	item.ProductImages = stripeProduct.Images
	if format, ok := stripeProduct.Metadata["format"]; ok {
		item.ProductFormat = &format
	}
	s.log.Warn().
		Str("stripe_product_id", stripeProduct.ID).
		Str("product_name", stripeProduct.Name).
		Msg("no catalog mapping for provider product, order item kept without product reference")
	return item, nil, nil
}

// clearCart deletes the stored cart of the session's customer.
// A customer lookup miss is not an error; many checkouts are guest
// purchases with no provider customer attached.
func (s *OrderServiceImpl) clearCart(ctx context.Context, dbTx pgx.Tx, session *stripe.CheckoutSession) error {
	if session.Customer == nil || session.Customer.ID == "" {
		return nil
	}

	customer, err := s.customerRepo.GetByStripeCustomerID(ctx, session.Customer.ID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("lookup customer for cart clear: %w", err))
	}
	if customer == nil {
		s.log.Debug().
			Str("stripe_customer_id", session.Customer.ID).
			Msg("no local customer for session, skipping cart clear")
		return nil
	}

	deleted, err := s.cartRepo.DeleteByCustomerID(ctx, dbTx, customer.ID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("clear cart: %w", err))
	}
	if deleted > 0 {
		s.log.Debug().
			Str("customer_id", customer.ID.String()).
			Int64("items", deleted).
			Msg("cart cleared after checkout")
	}
	return nil
}

// HandlePaymentSucceeded transitions the order found by payment-intent
// id to paid/processing. No matching order is a no-op: the order may
// not be materialized yet when events arrive out of order.
func (s *OrderServiceImpl) HandlePaymentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	return s.updatePaymentStatus(ctx, intent.ID, domain.PaymentStatusPaid, domain.OrderStatusProcessing)
}

// HandlePaymentFailed transitions the order found by payment-intent id
// to failed/cancelled, with the same no-op semantics.
func (s *OrderServiceImpl) HandlePaymentFailed(ctx context.Context, intent *stripe.PaymentIntent) error {
	return s.updatePaymentStatus(ctx, intent.ID, domain.PaymentStatusFailed, domain.OrderStatusCancelled)
}

// GetBySessionID returns the materialized order with its items. The
// success page uses this to show line-level detail once the
// completion webhook has landed.
func (s *OrderServiceImpl) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, []domain.OrderItem, error) {
	order, err := s.orderRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("lookup order for session: %w", err))
	}
	if order == nil {
		return nil, nil, apperror.ErrNotFound("Order")
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("list order items: %w", err))
	}
	return order, items, nil
}

func (s *OrderServiceImpl) updatePaymentStatus(ctx context.Context, paymentIntentID string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error {
	updated, err := s.orderRepo.UpdatePaymentStatus(ctx, paymentIntentID, paymentStatus, status)
	if err != nil {
		return apperror.ErrDatabaseError(err)
	}
	if !updated {
		s.log.Info().
			Str("payment_intent_id", paymentIntentID).
			Str("payment_status", string(paymentStatus)).
			Msg("no order for payment intent yet, ignoring payment event")
		return nil
	}

	s.log.Info().
		Str("payment_intent_id", paymentIntentID).
		Str("payment_status", string(paymentStatus)).
		Str("status", string(status)).
		Msg("order payment status updated")
	return nil
}

// orderFromSession builds the Order row from session fields. Amounts
// are taken verbatim from the provider's computed totals; recomputing
// them locally would drift from the tax/discount logic that lives on
// the provider side.
func orderFromSession(session *stripe.CheckoutSession) *domain.Order {
	now := time.Now().UTC()
	order := &domain.Order{
		ID:                      uuid.New(),
		StripeCheckoutSessionID: session.ID,
		Status:                  domain.OrderStatusPending,
		PaymentStatus:           domain.PaymentStatusPending,
		FulfillmentStatus:       domain.FulfillmentStatusUnfulfilled,
		SubtotalAmount:          session.AmountSubtotal,
		TotalAmount:             session.AmountTotal,
		Currency:                string(session.Currency),
		PaymentMethodTypes:      session.PaymentMethodTypes,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		order.PaymentStatus = domain.PaymentStatusPaid
	}
	if session.PaymentIntent != nil {
		order.StripePaymentIntentID = &session.PaymentIntent.ID
	}

	order.CustomerEmail = session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		order.CustomerEmail = session.CustomerDetails.Email
	}

	if td := session.TotalDetails; td != nil {
		order.TaxAmount = td.AmountTax
		order.ShippingAmount = td.AmountShipping
		order.DiscountAmount = td.AmountDiscount
		if raw, err := json.Marshal(td); err == nil {
			order.TaxDetails = raw
		}
	}

	if session.CustomerDetails != nil && session.CustomerDetails.Address != nil {
		if raw, err := json.Marshal(session.CustomerDetails.Address); err == nil {
			order.BillingAddress = raw
		}
	}
	// The storefront stashes the shipping address in session metadata.
	if shipping, ok := session.Metadata["shipping_address"]; ok && shipping != "" {
		order.ShippingAddress = []byte(shipping)
	}
	if len(session.Metadata) > 0 {
		if raw, err := json.Marshal(session.Metadata); err == nil {
			order.Metadata = raw
		}
	}

	return order
}

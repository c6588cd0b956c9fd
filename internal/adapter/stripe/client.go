// Package stripe adapts the hosted payment provider API to
// ports.PaymentProvider using the official Go SDK.
package stripe

import (
	"context"
	"fmt"
	"strings"

	"recordlabel-commerce/internal/core/ports"

	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Client implements ports.PaymentProvider.
type Client struct {
	api *client.API
}

// NewClient creates a Stripe API client bound to the given secret key.
func NewClient(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

// CreateCheckoutSession asks Stripe to create a hosted checkout
// session and returns it. Amount, tax and discount math all happen on
// the provider side; this service never computes totals.
func (c *Client) CreateCheckoutSession(ctx context.Context, in ports.CheckoutSessionInput) (*stripego.CheckoutSession, error) {
	params := &stripego.CheckoutSessionParams{
		Mode:       stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL: stripego.String(in.SuccessURL),
		CancelURL:  stripego.String(in.CancelURL),
	}
	params.Context = ctx

	if in.CustomerEmail != "" {
		params.CustomerEmail = stripego.String(in.CustomerEmail)
	}

	productIDs := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			Price:    stripego.String(item.PriceID),
			Quantity: stripego.Int64(item.Quantity),
		})
		productIDs = append(productIDs, item.ProductID)
	}
	// Kept on the session for debugging; order materialization matches
	// catalog products by their stripe_product_id, not this list.
	params.AddMetadata("product_ids", strings.Join(productIDs, ","))

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sess, nil
}

// GetCheckoutSession fetches a session with its payment intent expanded.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*stripego.CheckoutSession, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %s: %w", sessionID, err)
	}
	return sess, nil
}

// ListLineItems fetches all line items of a session with product data
// expanded, paging through the iterator.
func (c *Client) ListLineItems(ctx context.Context, sessionID string) ([]*stripego.LineItem, error) {
	params := &stripego.CheckoutSessionListLineItemsParams{
		Session: stripego.String(sessionID),
	}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var items []*stripego.LineItem
	iter := c.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list line items for %s: %w", sessionID, err)
	}
	return items, nil
}

package dto

import (
	"recordlabel-commerce/internal/core/domain"
	"recordlabel-commerce/internal/core/ports"
)

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	PriceID   string `json:"price_id" binding:"required,safe_id"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateCheckoutSessionRequest is the request body for session creation.
type CreateCheckoutSessionRequest struct {
	Items         []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	CustomerEmail string         `json:"customer_email" binding:"omitempty,email"`
	SuccessURL    string         `json:"success_url" binding:"required,safe_url"`
	CancelURL     string         `json:"cancel_url" binding:"required,safe_url"`
}

// CreateCheckoutSessionResponse carries the hosted session redirect.
type CreateCheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionDetailResponse is the success-page payload: the provider-side
// session summary, plus the locally materialized order once the
// completion webhook has landed.
type SessionDetailResponse struct {
	*ports.SessionSummary
	Order      *domain.Order      `json:"order,omitempty"`
	OrderItems []domain.OrderItem `json:"order_items,omitempty"`
}

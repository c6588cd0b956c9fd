package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry (release, boxset, sheet music). Only the
// inventory fields are mutated by this service; everything else is
// owned by the admin panel.
type Product struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Format            *string   `json:"format,omitempty"` // cd, vinyl, digital
	StripeProductID   *string   `json:"stripe_product_id,omitempty"`
	InventoryTracking bool      `json:"inventory_tracking"`
	InventoryQuantity int64     `json:"inventory_quantity"`
	Images            []string  `json:"images,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CartItem is one row of a customer's stored cart. Rows are deleted in
// bulk when that customer's checkout completes.
type CartItem struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int64     `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"recordlabel-commerce/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepo implements ports.ProductRepository. The catalog itself
// is owned by the admin panel; this service only resolves products by
// their Stripe id and adjusts inventory after a sale.
type ProductRepo struct {
	pool Pool
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(pool Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// GetByStripeProductID fetches a product by its Stripe catalog mapping.
// Returns nil, nil when no mapping exists; a missing mapping must not
// block order creation.
func (r *ProductRepo) GetByStripeProductID(ctx context.Context, stripeProductID string) (*domain.Product, error) {
	query := `SELECT id, title, format, stripe_product_id, inventory_tracking, inventory_quantity, images, created_at, updated_at
		FROM products WHERE stripe_product_id = $1`

	p := &domain.Product{}
	err := r.pool.QueryRow(ctx, query, stripeProductID).Scan(
		&p.ID, &p.Title, &p.Format, &p.StripeProductID,
		&p.InventoryTracking, &p.InventoryQuantity, &p.Images,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by stripe id: %w", err)
	}
	return p, nil
}

// DecrementInventory subtracts the purchased quantity in a single
// statement, floored at zero. Running the subtraction inside the
// UPDATE (rather than read-then-write) closes the race where two
// concurrent orders for the last unit both observe sufficient stock.
func (r *ProductRepo) DecrementInventory(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int64) error {
	query := `UPDATE products
		SET inventory_quantity = GREATEST(inventory_quantity - $1, 0), updated_at = NOW()
		WHERE id = $2 AND inventory_tracking`

	_, err := tx.Exec(ctx, query, quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}
	return nil
}

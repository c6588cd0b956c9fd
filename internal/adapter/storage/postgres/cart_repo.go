package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CartRepo implements ports.CartRepository. Cart contents are written
// by the storefront; this service only clears them after checkout.
type CartRepo struct {
	pool Pool
}

// NewCartRepo creates a new CartRepo.
func NewCartRepo(pool Pool) *CartRepo {
	return &CartRepo{pool: pool}
}

// DeleteByCustomerID removes all cart rows for a customer within the
// order-materialization transaction.
func (r *CartRepo) DeleteByCustomerID(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, fmt.Errorf("delete cart items: %w", err)
	}
	return tag.RowsAffected(), nil
}

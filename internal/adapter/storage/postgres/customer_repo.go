package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recordlabel-commerce/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

// GetByStripeCustomerID fetches a customer by the provider's id.
func (r *CustomerRepo) GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*domain.Customer, error) {
	query := `SELECT id, stripe_customer_id, email, first_name, last_name, phone, locale, currency, status, created_at, updated_at
		FROM customers WHERE stripe_customer_id = $1`

	c := &domain.Customer{}
	err := r.pool.QueryRow(ctx, query, stripeCustomerID).Scan(
		&c.ID, &c.StripeCustomerID, &c.Email, &c.FirstName, &c.LastName,
		&c.Phone, &c.Locale, &c.Currency, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by stripe id: %w", err)
	}
	return c, nil
}

// Upsert inserts or refreshes a customer keyed on stripe_customer_id.
// The conflict branch only patches contact fields so locale/currency
// preferences set locally survive provider-side re-creates.
func (r *CustomerRepo) Upsert(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (id, stripe_customer_id, email, first_name, last_name, phone, locale, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (stripe_customer_id) DO UPDATE
		SET email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.StripeCustomerID, c.Email, c.FirstName, c.LastName,
		c.Phone, c.Locale, c.Currency, c.Status,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

// UpdateContact patches email/name/phone for an existing customer.
// Returns updated=false when the Stripe customer id is unknown, which
// callers treat as a no-op rather than an error.
func (r *CustomerRepo) UpdateContact(ctx context.Context, stripeCustomerID string, email, firstName, lastName string, phone *string) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE customers
		SET email = $1, first_name = $2, last_name = $3, phone = $4, updated_at = $5
		WHERE stripe_customer_id = $6`

	tag, err := r.pool.Exec(ctx, query, email, firstName, lastName, phone, now, stripeCustomerID)
	if err != nil {
		return false, fmt.Errorf("update customer contact: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

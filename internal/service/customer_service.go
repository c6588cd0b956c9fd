package service

import (
	"context"
	"fmt"
	"time"

	"recordlabel-commerce/internal/core/domain"
	"recordlabel-commerce/internal/core/ports"
	"recordlabel-commerce/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v82"
)

// CustomerServiceImpl implements ports.CustomerService: it mirrors
// provider-side customer records into the local customers table.
type CustomerServiceImpl struct {
	customerRepo ports.CustomerRepository
	log          zerolog.Logger
}

// NewCustomerService creates a new CustomerServiceImpl.
func NewCustomerService(customerRepo ports.CustomerRepository, log zerolog.Logger) *CustomerServiceImpl {
	return &CustomerServiceImpl{customerRepo: customerRepo, log: log}
}

// SyncCreated upserts a local customer keyed by the provider's id,
// applying the locale/currency/status defaults for new accounts.
func (s *CustomerServiceImpl) SyncCreated(ctx context.Context, customer *stripe.Customer) error {
	first, last := domain.SplitDisplayName(customer.Name)
	now := time.Now().UTC()

	record := &domain.Customer{
		ID:               uuid.New(),
		StripeCustomerID: customer.ID,
		Email:            customer.Email,
		FirstName:        first,
		LastName:         last,
		Phone:            optionalString(customer.Phone),
		Locale:           domain.DefaultCustomerLocale,
		Currency:         domain.DefaultCustomerCurrency,
		Status:           domain.CustomerStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.customerRepo.Upsert(ctx, record); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("sync created customer: %w", err))
	}

	s.log.Info().
		Str("stripe_customer_id", customer.ID).
		Str("email", customer.Email).
		Msg("customer synced from provider")
	return nil
}

// SyncUpdated patches email/name/phone of an existing local customer,
// leaving locale/currency preferences untouched. An unknown provider
// customer id is a no-op, not an error.
func (s *CustomerServiceImpl) SyncUpdated(ctx context.Context, customer *stripe.Customer) error {
	first, last := domain.SplitDisplayName(customer.Name)

	updated, err := s.customerRepo.UpdateContact(ctx, customer.ID, customer.Email, first, last, optionalString(customer.Phone))
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("sync updated customer: %w", err))
	}
	if !updated {
		s.log.Debug().
			Str("stripe_customer_id", customer.ID).
			Msg("customer update for unknown provider id, ignoring")
		return nil
	}

	s.log.Info().
		Str("stripe_customer_id", customer.ID).
		Msg("customer contact details updated from provider")
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

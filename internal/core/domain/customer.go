package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CustomerStatus represents the state of a customer account.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer defaults applied on the provider-driven create path.
const (
	DefaultCustomerLocale   = "en"
	DefaultCustomerCurrency = "EUR"
)

// Customer is the local mirror of a provider-side customer, keyed by
// the provider's customer id.
type Customer struct {
	ID               uuid.UUID      `json:"id"`
	StripeCustomerID string         `json:"stripe_customer_id"`
	Email            string         `json:"email"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Phone            *string        `json:"phone,omitempty"`
	Locale           string         `json:"locale"`
	Currency         string         `json:"currency"`
	Status           CustomerStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// SplitDisplayName splits a single display-name field into first and
// last name: the first whitespace-delimited token is the first name,
// the remainder (rejoined) is the last name, empty string if absent.
func SplitDisplayName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

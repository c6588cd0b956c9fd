package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"recordlabel-commerce/config"
	"recordlabel-commerce/internal/core/ports"
	"recordlabel-commerce/pkg/apperror"

	"github.com/rs/zerolog"
)

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	provider    ports.PaymentProvider
	stripeCfg   config.StripeConfig
	checkoutCfg config.CheckoutConfig
	log         zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	provider ports.PaymentProvider,
	stripeCfg config.StripeConfig,
	checkoutCfg config.CheckoutConfig,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		provider:    provider,
		stripeCfg:   stripeCfg,
		checkoutCfg: checkoutCfg,
		log:         log,
	}
}

// CreateSession validates the cart shape and asks the provider for a
// hosted checkout session. The success URL must carry the provider's
// session-id template token so the success page can resolve the order.
func (s *CheckoutServiceImpl) CreateSession(ctx context.Context, in ports.CheckoutSessionInput) (*ports.CheckoutSessionResult, error) {
	if !s.stripeCfg.Enabled() {
		return nil, apperror.ErrStripeNotConfigured()
	}
	if len(in.Items) == 0 {
		return nil, apperror.ErrEmptyCart()
	}
	if max := s.checkoutCfg.MaxLineItems; max > 0 && len(in.Items) > max {
		return nil, apperror.ErrTooManyLineItems(max)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, apperror.ErrInvalidQuantity()
		}
		if item.PriceID == "" {
			return nil, apperror.Validation("Line item price_id is required")
		}
	}
	// Mirrors the storefront-side format check; the email is optional.
	if in.CustomerEmail != "" {
		if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
			return nil, apperror.ErrInvalidEmail()
		}
	}
	if !strings.Contains(in.SuccessURL, s.checkoutCfg.SuccessURLToken) {
		return nil, apperror.ErrInvalidRedirectURL(
			fmt.Sprintf("success_url must contain the %s token", s.checkoutCfg.SuccessURLToken))
	}

	session, err := s.provider.CreateCheckoutSession(ctx, in)
	if err != nil {
		return nil, apperror.ErrProviderError(err)
	}

	s.log.Info().
		Str("session_id", session.ID).
		Int("items", len(in.Items)).
		Str("customer_email", in.CustomerEmail).
		Msg("checkout session created")

	return &ports.CheckoutSessionResult{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// GetSessionSummary resolves the success-page order summary. Since
// payment already happened by the time this is called, callers degrade
// to a "details unavailable" state on error rather than failing.
func (s *CheckoutServiceImpl) GetSessionSummary(ctx context.Context, sessionID string) (*ports.SessionSummary, error) {
	if !s.stripeCfg.Enabled() {
		return nil, apperror.ErrStripeNotConfigured()
	}
	if sessionID == "" {
		return nil, apperror.Validation("session_id is required")
	}

	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, apperror.ErrProviderError(err)
	}

	summary := &ports.SessionSummary{
		ID:            session.ID,
		Status:        string(session.Status),
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
		CustomerEmail: session.CustomerEmail,
		PaymentStatus: string(session.PaymentStatus),
		Metadata:      session.Metadata,
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		summary.CustomerEmail = session.CustomerDetails.Email
	}
	return summary, nil
}

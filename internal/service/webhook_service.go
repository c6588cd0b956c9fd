package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recordlabel-commerce/config"
	"recordlabel-commerce/internal/core/domain"
	"recordlabel-commerce/internal/core/ports"
	"recordlabel-commerce/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// seenEventTTL bounds the Redis replay fast path. Stripe retries
// deliveries for up to three days, so the cache covers that window.
const seenEventTTL = 72 * time.Hour

// WebhookServiceImpl implements ports.WebhookService: it verifies the
// provider signature, keeps the event log and dispatches over the
// closed set of known event types.
type WebhookServiceImpl struct {
	cfg         config.StripeConfig
	eventRepo   ports.WebhookEventRepository
	orderSvc    ports.OrderService
	customerSvc ports.CustomerService
	eventCache  ports.ProcessedEventCache // nil disables the fast path
	log         zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl.
func NewWebhookService(
	cfg config.StripeConfig,
	eventRepo ports.WebhookEventRepository,
	orderSvc ports.OrderService,
	customerSvc ports.CustomerService,
	eventCache ports.ProcessedEventCache,
	log zerolog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		cfg:         cfg,
		eventRepo:   eventRepo,
		orderSvc:    orderSvc,
		customerSvc: customerSvc,
		eventCache:  eventCache,
		log:         log,
	}
}

// HandleEvent processes one webhook delivery. The signature is checked
// over the exact raw body bytes: Stripe signs the bytes it sent, so a
// re-serialized JSON object would never verify. Replays of a
// successfully handled event are absorbed without side effects, but a
// redelivery of a failed or interrupted event is dispatched again:
// the handler error surfaces as a 500 precisely so Stripe retries,
// and order-level idempotency (the session-keyed conditional insert)
// keeps the re-run safe. A handler failure marks the event row failed
// with the error message.
func (s *WebhookServiceImpl) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	if !s.cfg.Enabled() {
		return apperror.ErrStripeNotConfigured()
	}
	if signatureHeader == "" {
		return apperror.ErrMissingSignature()
	}

	event, err := webhook.ConstructEvent(payload, signatureHeader, s.cfg.WebhookSecret)
	if err != nil {
		return apperror.ErrInvalidSignature(err)
	}

	// Fast path: the cache holds only events whose handler succeeded.
	// Errors here fall through to the authoritative database check.
	if s.eventCache != nil {
		done, err := s.eventCache.IsProcessed(ctx, event.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("event cache unavailable, relying on database dedup")
		} else if done {
			s.log.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("replayed event detected in cache, acknowledging")
			return nil
		}
	}

	now := time.Now().UTC()
	record := &domain.WebhookEvent{
		ID:               uuid.New(),
		StripeEventID:    event.ID,
		EventType:        string(event.Type),
		Payload:          payload,
		Processed:        false,
		ProcessingStatus: domain.ProcessingStatusPending,
		CreatedAt:        now,
	}
	created, err := s.eventRepo.Insert(ctx, record)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("record webhook event: %w", err))
	}
	if !created {
		existing, err := s.eventRepo.GetByStripeEventID(ctx, event.ID)
		if err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("load webhook event: %w", err))
		}
		if existing == nil {
			return apperror.ErrDatabaseError(fmt.Errorf("webhook event %s vanished after conflicting insert", event.ID))
		}
		if existing.Succeeded() {
			s.log.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("event already processed, acknowledging redelivery")
			return nil
		}
		s.log.Info().
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Str("processing_status", string(existing.ProcessingStatus)).
			Msg("redelivery of unprocessed event, dispatching again")
	}

	if err := s.dispatch(ctx, &event); err != nil {
		if markErr := s.eventRepo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			s.log.Error().Err(markErr).Str("event_id", event.ID).Msg("failed to mark webhook event as failed")
		}
		s.log.Error().Err(err).Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("webhook handler failed")
		return err
	}

	if err := s.eventRepo.MarkProcessed(ctx, event.ID); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("mark webhook event processed: %w", err))
	}
	if s.eventCache != nil {
		if err := s.eventCache.MarkProcessed(ctx, event.ID, seenEventTTL); err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to cache processed event id")
		}
	}

	s.log.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("webhook event processed")
	return nil
}

// dispatch routes the event to its handler. Unknown types are logged
// and acknowledged: a non-2xx would make Stripe retry an event this
// service will never handle.
func (s *WebhookServiceImpl) dispatch(ctx context.Context, event *stripe.Event) error {
	switch domain.ParseEventType(string(event.Type)) {
	case domain.EventCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return apperror.InternalError(fmt.Errorf("parse checkout session: %w", err))
		}
		return s.orderSvc.MaterializeOrder(ctx, &session)

	case domain.EventPaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return apperror.InternalError(fmt.Errorf("parse payment intent: %w", err))
		}
		return s.orderSvc.HandlePaymentSucceeded(ctx, &intent)

	case domain.EventPaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return apperror.InternalError(fmt.Errorf("parse payment intent: %w", err))
		}
		return s.orderSvc.HandlePaymentFailed(ctx, &intent)

	case domain.EventCustomerCreated:
		var customer stripe.Customer
		if err := json.Unmarshal(event.Data.Raw, &customer); err != nil {
			return apperror.InternalError(fmt.Errorf("parse customer: %w", err))
		}
		return s.customerSvc.SyncCreated(ctx, &customer)

	case domain.EventCustomerUpdated:
		var customer stripe.Customer
		if err := json.Unmarshal(event.Data.Raw, &customer); err != nil {
			return apperror.InternalError(fmt.Errorf("parse customer: %w", err))
		}
		return s.customerSvc.SyncUpdated(ctx, &customer)

	default:
		s.log.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("unhandled event type, acknowledging")
		return nil
	}
}

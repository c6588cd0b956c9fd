package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recordlabel-commerce/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WebhookEventRepo implements ports.WebhookEventRepository.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Insert writes the event row with processed=false. The unique
// constraint on stripe_event_id makes redelivered events a no-op:
// ON CONFLICT DO NOTHING reports zero rows affected and Insert
// returns created=false.
func (r *WebhookEventRepo) Insert(ctx context.Context, e *domain.WebhookEvent) (bool, error) {
	query := `INSERT INTO stripe_webhook_events
		(id, stripe_event_id, event_type, payload, processed, processing_status, error_message, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (stripe_event_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		e.ID, e.StripeEventID, e.EventType, e.Payload,
		e.Processed, e.ProcessingStatus, e.ErrorMessage,
		e.CreatedAt, e.ProcessedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByStripeEventID fetches an event row by its external id.
func (r *WebhookEventRepo) GetByStripeEventID(ctx context.Context, stripeEventID string) (*domain.WebhookEvent, error) {
	query := `SELECT id, stripe_event_id, event_type, payload, processed, processing_status, error_message, created_at, processed_at
		FROM stripe_webhook_events WHERE stripe_event_id = $1`

	e := &domain.WebhookEvent{}
	err := r.pool.QueryRow(ctx, query, stripeEventID).Scan(
		&e.ID, &e.StripeEventID, &e.EventType, &e.Payload,
		&e.Processed, &e.ProcessingStatus, &e.ErrorMessage,
		&e.CreatedAt, &e.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	return e, nil
}

// MarkProcessed flips the row to processed=true with status success.
func (r *WebhookEventRepo) MarkProcessed(ctx context.Context, stripeEventID string) error {
	now := time.Now().UTC()
	query := `UPDATE stripe_webhook_events
		SET processed = true, processing_status = $1, processed_at = $2
		WHERE stripe_event_id = $3`

	tag, err := r.pool.Exec(ctx, query, domain.ProcessingStatusSuccess, now, stripeEventID)
	if err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook event not found: %s", stripeEventID)
	}
	return nil
}

// MarkFailed records a handler failure with its error message. The
// processed flag stays false so the row is recognizable as retryable.
func (r *WebhookEventRepo) MarkFailed(ctx context.Context, stripeEventID string, errMsg string) error {
	now := time.Now().UTC()
	query := `UPDATE stripe_webhook_events
		SET processing_status = $1, error_message = $2, processed_at = $3
		WHERE stripe_event_id = $4`

	tag, err := r.pool.Exec(ctx, query, domain.ProcessingStatusFailed, errMsg, now, stripeEventID)
	if err != nil {
		return fmt.Errorf("mark webhook event failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook event not found: %s", stripeEventID)
	}
	return nil
}

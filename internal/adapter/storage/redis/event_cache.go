package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventCache implements ports.ProcessedEventCache using Redis. A key
// exists only for events whose handler completed, so a failed delivery
// never hits the fast path and the provider's retry is dispatched
// again. The unique constraint on stripe_event_id stays authoritative.
type EventCache struct {
	client *goredis.Client
	prefix string
}

// NewEventCache creates a new Redis-backed processed-event cache.
func NewEventCache(client *goredis.Client) *EventCache {
	return &EventCache{
		client: client,
		prefix: "stripe_event:",
	}
}

// IsProcessed reports whether the event id was already handled
// successfully within the cache window.
func (c *EventCache) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis event check: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records a successfully handled event id with the
// given retention.
func (c *EventCache) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+eventID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis event mark: %w", err)
	}
	return nil
}

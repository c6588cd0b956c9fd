package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCache_NewEventNotProcessed(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	done, err := cache.IsProcessed(ctx, "evt_123")
	require.NoError(t, err)
	assert.False(t, done, "an unseen event must not hit the fast path")
}

func TestEventCache_MarkThenCheck(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkProcessed(ctx, "evt_123", time.Hour))

	done, err := cache.IsProcessed(ctx, "evt_123")
	require.NoError(t, err)
	assert.True(t, done, "a processed event id should be flagged as seen")
}

func TestEventCache_DifferentEvents(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkProcessed(ctx, "evt_a", time.Hour))

	done, err := cache.IsProcessed(ctx, "evt_b")
	require.NoError(t, err)
	assert.False(t, done, "distinct event ids must not collide")
}

func TestEventCache_ExpiredEntry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkProcessed(ctx, "evt_ttl", time.Second))

	// Past the retry window the cache entry lapses; the database
	// unique constraint still catches very late redeliveries.
	s.FastForward(2 * time.Second)

	done, err := cache.IsProcessed(ctx, "evt_ttl")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestEventCache_MarkIsIdempotent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkProcessed(ctx, "evt_dup", time.Hour))
	require.NoError(t, cache.MarkProcessed(ctx, "evt_dup", time.Hour))

	done, err := cache.IsProcessed(ctx, "evt_dup")
	require.NoError(t, err)
	assert.True(t, done)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const counterKeyPrefix = "ratelimit:"

// CounterStore implements the fixed-window counter behind the rate limiter,
// backed by Redis. INCR and the NX expiry run in one pipeline, so the window
// TTL is armed exactly once by whichever concurrent request lands first and
// the counter vanishes entirely when the window lapses.
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore creates a CounterStore wrapping the given Redis client.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// Incr atomically bumps the counter for key and returns the new value.
func (c *CounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKeyPrefix+key)
	pipe.ExpireNX(ctx, counterKeyPrefix+key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate counter incr: %w", err)
	}
	return incr.Val(), nil
}

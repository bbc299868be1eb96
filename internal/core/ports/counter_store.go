package ports

import (
	"context"
	"time"
)

// CounterStore backs the fixed-window rate limiter. Incr atomically bumps the
// counter for key and returns the new value; the first increment of a window
// arms a TTL of window, after which the counter vanishes entirely (fixed
// window, not sliding).
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

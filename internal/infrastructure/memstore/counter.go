// Package memstore provides a process-local counter store for the rate
// limiter, used in tests and redis-less deployments. The Redis adapter is the
// production path; this one trades cross-process sharing for zero
// dependencies.
package memstore

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// CounterStore is a mutex-guarded in-memory fixed-window counter. Each Incr
// is a single locked read-modify-write, so two concurrent requests can never
// both observe the same pre-increment count.
type CounterStore struct {
	mu       sync.Mutex
	counters map[string]*window
	now      func() time.Time
}

// NewCounterStore returns a CounterStore using the wall clock.
func NewCounterStore() *CounterStore {
	return NewCounterStoreWithClock(time.Now)
}

// NewCounterStoreWithClock returns a CounterStore reading time from now.
// Intended for tests that need to step across window boundaries.
func NewCounterStoreWithClock(now func() time.Time) *CounterStore {
	return &CounterStore{
		counters: make(map[string]*window),
		now:      now,
	}
}

// Incr bumps the counter for key within the current fixed window and returns
// the new value. The window opens at the first increment and resets only once
// windowDur has fully elapsed from that first increment.
func (c *CounterStore) Incr(_ context.Context, key string, windowDur time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.counters[key]
	if !ok || !now.Before(w.resetAt) {
		c.prune(now)
		c.counters[key] = &window{count: 1, resetAt: now.Add(windowDur)}
		return 1, nil
	}

	w.count++
	return w.count, nil
}

// prune drops lapsed windows so one-off keys do not accumulate for the life
// of the process. Runs only when a window opens, with the lock held.
func (c *CounterStore) prune(now time.Time) {
	for k, w := range c.counters {
		if !now.Before(w.resetAt) {
			delete(c.counters, k)
		}
	}
}

package telemetry

import (
	"context"
	"time"
)

// Cache wraps one domain's probe pipeline with a time-to-live. It holds the
// last-known-good record so slow or failing diagnostic tools never cost more
// than one refresh attempt per TTL window and never erase prior data.
//
// A Cache is owned by a single Aggregator and accessed by one goroutine per
// tick, so it carries no lock.
type Cache[T any] struct {
	clock Clock
	ttl   time.Duration

	value      T
	capturedAt time.Time
	primed     bool
}

// NewCache creates a cache with the given TTL. A zero TTL disables the
// cache window, forcing a refresh attempt every call.
func NewCache[T any](ttl time.Duration, clock Clock) *Cache[T] {
	if clock == nil {
		clock = SystemClock()
	}
	return &Cache[T]{clock: clock, ttl: ttl}
}

// GetOrRefresh returns the domain record, consulting the cache first.
//
// A primed entry younger than the TTL is returned without running refresh.
// Otherwise refresh runs: on success the entry is replaced and its timestamp
// bumped; on failure a primed entry is returned unchanged — stale but valid,
// timestamp untouched so the next call retries — and an unprimed cache is
// seeded with the synthesized fallback record.
func (c *Cache[T]) GetOrRefresh(ctx context.Context, refresh func(context.Context) (T, error), fallback func() T) T {
	now := c.clock.Now()
	if c.primed && now.Sub(c.capturedAt) < c.ttl {
		return c.value
	}

	value, err := refresh(ctx)
	if err == nil {
		c.value = value
		c.capturedAt = now
		c.primed = true
		return c.value
	}

	if c.primed {
		return c.value
	}

	c.value = fallback()
	c.capturedAt = now
	c.primed = true
	return c.value
}

// Peek returns the cached value and whether the cache has ever been filled,
// without triggering a refresh.
func (c *Cache[T]) Peek() (T, bool) {
	return c.value, c.primed
}

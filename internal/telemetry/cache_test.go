package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestCacheServesWithinTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache[int](5*time.Second, clock)

	calls := 0
	refresh := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}
	fallback := func() int { return -1 }

	assert.Equal(t, 42, cache.GetOrRefresh(context.Background(), refresh, fallback))
	clock.Advance(3 * time.Second)
	assert.Equal(t, 42, cache.GetOrRefresh(context.Background(), refresh, fallback))
	assert.Equal(t, 1, calls, "second call within TTL must not re-probe")

	clock.Advance(3 * time.Second)
	cache.GetOrRefresh(context.Background(), refresh, fallback)
	assert.Equal(t, 2, calls, "call after TTL expiry must re-probe")
}

func TestCacheStaleOnFailure(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache[int](5*time.Second, clock)

	cache.GetOrRefresh(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	}, func() int { return -1 })

	clock.Advance(10 * time.Second)
	failing := func(context.Context) (int, error) {
		return 0, errors.New("probe failed")
	}

	got := cache.GetOrRefresh(context.Background(), failing, func() int { return -1 })
	assert.Equal(t, 42, got, "failure must not clear a valid entry")

	// The timestamp was not bumped, so the very next call retries.
	calls := 0
	cache.GetOrRefresh(context.Background(), func(context.Context) (int, error) {
		calls++
		return 7, nil
	}, func() int { return -1 })
	assert.Equal(t, 1, calls)

	got, primed := cache.Peek()
	assert.True(t, primed)
	assert.Equal(t, 7, got)
}

func TestCacheSeedsFallbackWhenUnprimed(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache[int](5*time.Second, clock)

	failing := func(context.Context) (int, error) {
		return 0, errors.New("probe failed")
	}

	got := cache.GetOrRefresh(context.Background(), failing, func() int { return 99 })
	assert.Equal(t, 99, got)

	// The seed behaves like a normal entry: served within TTL without
	// another refresh attempt.
	calls := 0
	clock.Advance(time.Second)
	got = cache.GetOrRefresh(context.Background(), func(context.Context) (int, error) {
		calls++
		return 1, nil
	}, func() int { return -1 })
	assert.Equal(t, 99, got)
	assert.Equal(t, 0, calls)
}

func TestCacheZeroTTLAlwaysRefreshes(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache[int](0, clock)

	calls := 0
	refresh := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	fallback := func() int { return -1 }

	assert.Equal(t, 1, cache.GetOrRefresh(context.Background(), refresh, fallback))
	assert.Equal(t, 2, cache.GetOrRefresh(context.Background(), refresh, fallback))
}

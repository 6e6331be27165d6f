package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sysalert/agent/internal/config"
	"github.com/sysalert/agent/internal/models"
)

type stubAggregator struct {
	calls atomic.Int64
	snap  *models.Snapshot
}

func (s *stubAggregator) Collect(context.Context) *models.Snapshot {
	s.calls.Add(1)
	return s.snap
}

func TestStartRunsImmediatelyThenOnTicks(t *testing.T) {
	agg := &stubAggregator{snap: &models.Snapshot{Timestamp: time.Now()}}
	cfg := config.DefaultConfig()
	cfg.Collection.Interval.Duration = 20 * time.Millisecond

	var delivered atomic.Int64
	sched := New(agg, cfg, nil)
	sched.OnSnapshot(func(*models.Snapshot) { delivered.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	sched.Start(ctx)

	assert.GreaterOrEqual(t, agg.calls.Load(), int64(3), "initial cycle plus ticks")
	assert.Equal(t, agg.calls.Load(), delivered.Load())
}

func TestCancelledCycleIsDiscarded(t *testing.T) {
	agg := &stubAggregator{snap: &models.Snapshot{}}
	cfg := config.DefaultConfig()
	cfg.Collection.Interval.Duration = time.Hour

	var delivered atomic.Int64
	sched := New(agg, cfg, nil)
	sched.OnSnapshot(func(*models.Snapshot) { delivered.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sched.Start(ctx)

	assert.Equal(t, int64(1), agg.calls.Load(), "initial cycle still runs")
	assert.Equal(t, int64(0), delivered.Load(), "cancelled cycle must not deliver")
}

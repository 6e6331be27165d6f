// Package scheduler drives the periodic polling loop. Each tick it asks the
// aggregator for one snapshot, checks it against the configured thresholds,
// and hands it to the registered callback. The scheduler does not persist or
// render anything itself.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sysalert/agent/internal/config"
	"github.com/sysalert/agent/internal/models"
)

// Collector produces one snapshot per polling cycle.
type Collector interface {
	Collect(ctx context.Context) *models.Snapshot
}

// Scheduler manages the periodic collection loop.
type Scheduler struct {
	agg    Collector
	cfg    *config.Config
	logger *zap.Logger

	onSnapshot func(*models.Snapshot)
}

// New creates a Scheduler around the given aggregator.
func New(agg Collector, cfg *config.Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		agg:    agg,
		cfg:    cfg,
		logger: logger,
	}
}

// OnSnapshot sets the callback invoked with each finished snapshot. The
// callback owns downstream handling (persistence, rendering).
func (s *Scheduler) OnSnapshot(fn func(*models.Snapshot)) {
	s.onSnapshot = fn
}

// Start runs the collection loop until the context is cancelled. The first
// cycle runs immediately rather than waiting a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Collection.Interval.Duration)
	defer ticker.Stop()

	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// cycle runs one collection and delivers the snapshot. A cancelled context
// discards the partial cycle instead of delivering an incomplete record.
func (s *Scheduler) cycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	snap := s.agg.Collect(cycleCtx)
	if ctx.Err() != nil {
		return
	}

	s.checkThresholds(snap)
	s.logger.Debug("Collected snapshot", zap.Time("timestamp", snap.Timestamp))

	if s.onSnapshot != nil {
		s.onSnapshot(snap)
	}
}

// checkThresholds logs warning or critical lines for metrics that crossed
// their configured levels.
func (s *Scheduler) checkThresholds(snap *models.Snapshot) {
	t := s.cfg.Thresholds

	logLevel := func(value, warn, crit float64, msg string, fields ...zap.Field) {
		fields = append(fields, zap.Float64("value", value))
		switch {
		case crit > 0 && value >= crit:
			s.logger.Error(msg, fields...)
		case warn > 0 && value >= warn:
			s.logger.Warn(msg, fields...)
		}
	}

	logLevel(snap.CPU.Average, t.CPUWarning, t.CPUCritical, "CPU usage high")
	logLevel(snap.Memory.UsedPercent, t.MemoryWarning, t.MemoryCritical, "Memory usage high")
	for _, reading := range snap.Temperatures {
		logLevel(reading.Celsius, t.TemperatureWarning, t.TemperatureCritical,
			"Temperature high", zap.String("sensor", reading.Label))
	}
}

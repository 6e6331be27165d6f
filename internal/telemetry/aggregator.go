// Package telemetry reconciles partially-overlapping, partially-unreliable
// diagnostic sources into one coherent snapshot per polling cycle. Cheap
// kernel introspection refreshes every tick; expensive external probes sit
// behind per-domain TTL caches with stale-on-failure and synthesized
// fallbacks, so a full collection never fails outright.
package telemetry

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sysalert/agent/internal/collector"
	"github.com/sysalert/agent/internal/config"
	"github.com/sysalert/agent/internal/models"
	"github.com/sysalert/agent/internal/probe"
)

// Aggregator orchestrates one collection cycle. Each instance owns its
// domain caches outright, so independent Aggregators never share state.
// Collect must not be invoked concurrently with itself on one instance.
type Aggregator struct {
	registry *collector.Registry
	runner   probe.Runner
	probes   config.ProbesConfig
	logger   *zap.Logger
	clock    Clock

	battery *Cache[models.BatteryInfo]
	power   *Cache[models.CPUPower]
	thermal *Cache[models.ThermalInfo]
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRunner substitutes the probe runner, mainly for tests.
func WithRunner(r probe.Runner) Option {
	return func(a *Aggregator) { a.runner = r }
}

// WithClock substitutes the cache clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(a *Aggregator) { a.clock = c }
}

// New creates an Aggregator over the given cheap-metric registry and probe
// configuration. Pass nil for no logging.
func New(registry *collector.Registry, probes config.ProbesConfig, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Aggregator{
		registry: registry,
		probes:   probes,
		logger:   logger,
		clock:    SystemClock(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.runner == nil {
		a.runner = probe.NewExecRunner(logger)
	}

	a.battery = NewCache[models.BatteryInfo](probes.BatteryTTL.Duration, a.clock)
	a.power = NewCache[models.CPUPower](probes.PowerTTL.Duration, a.clock)
	a.thermal = NewCache[models.ThermalInfo](probes.ThermalTTL.Duration, a.clock)
	return a
}

// Collect runs one polling cycle and returns the assembled snapshot. It
// never returns an error: every runtime failure degrades inside its domain
// pipeline, so callers always receive a complete, typed record.
func (a *Aggregator) Collect(ctx context.Context) *models.Snapshot {
	snap := &models.Snapshot{}

	a.assembleLocal(snap, a.registry.CollectAll(ctx))

	// The fallback estimator needs the utilization observed this very tick.
	avgUtil := snap.CPU.Average

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Battery = a.battery.GetOrRefresh(gctx, a.refreshBattery, func() models.BatteryInfo {
			return models.BatteryInfo{}
		})
		return nil
	})
	g.Go(func() error {
		snap.CPU.Power = a.power.GetOrRefresh(gctx, a.refreshCPUPower, func() models.CPUPower {
			return fallbackCPUPower(avgUtil)
		})
		return nil
	})
	g.Go(func() error {
		snap.Thermal = a.thermal.GetOrRefresh(gctx, a.refreshThermal, fallbackThermal)
		return nil
	})
	_ = g.Wait()

	snap.Performance = derivePerformance(avgUtil, snap.CPU.Power)
	scoreHealth(&snap.Health)

	snap.Timestamp = a.clock.Now()
	return snap
}

// assembleLocal maps the registry sweep's results into the snapshot.
// Missing entries leave their snapshot fields at defaults.
func (a *Aggregator) assembleLocal(snap *models.Snapshot, results map[string]interface{}) {
	if data, ok := results["cpu"].(collector.CPUResult); ok {
		snap.CPU.CoreUsage = data.Cores
		snap.CPU.Average = data.Average
	}
	if data, ok := results["memory"].(models.MemoryInfo); ok {
		snap.Memory = data
	}
	if data, ok := results["network"].([]models.InterfaceStats); ok {
		snap.Network = data
	}
	if data, ok := results["temperature"].([]models.TemperatureReading); ok {
		snap.Temperatures = data
	}
	if data, ok := results["processes"].([]models.ProcessInfo); ok {
		snap.Processes = data
	}
	if data, ok := results["sysinfo"].(models.SystemInfo); ok {
		snap.System = data
	}
	if data, ok := results["health"].(models.SystemHealth); ok {
		snap.Health = data
	}
}

// runProbe executes one probe and reports whether output was captured.
// Failures are logged and degrade to "source did not run".
func (a *Aggregator) runProbe(ctx context.Context, cmd probe.Command) (string, bool) {
	text, err := a.runner.Run(ctx, cmd)
	if err != nil {
		a.logger.Debug("Probe failed",
			zap.String("source", cmd.Source),
			zap.String("kind", probe.KindOf(err).String()),
			zap.Error(err))
		return "", false
	}
	return text, true
}

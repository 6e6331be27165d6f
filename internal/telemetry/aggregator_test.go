package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysalert/agent/internal/collector"
	"github.com/sysalert/agent/internal/config"
	"github.com/sysalert/agent/internal/models"
	"github.com/sysalert/agent/internal/probe"
)

// stubRunner serves canned transcripts keyed by probe source.
type stubRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	calls   map[string]int
}

func newStubRunner(outputs map[string]string) *stubRunner {
	return &stubRunner{outputs: outputs, calls: make(map[string]int)}
}

func (s *stubRunner) Run(_ context.Context, cmd probe.Command) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[cmd.Source]++
	out, ok := s.outputs[cmd.Source]
	if !ok {
		return "", &probe.Error{Kind: probe.KindLaunchFailure, Source: cmd.Source}
	}
	return out, nil
}

func (s *stubRunner) callCount(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[source]
}

// stubCollector feeds a fixed result into the registry sweep.
type stubCollector struct {
	name string
	data interface{}
}

func (c stubCollector) Name() string                                 { return c.name }
func (c stubCollector) Collect(context.Context) (interface{}, error) { return c.data, nil }
func (c stubCollector) IsAvailable() bool                            { return true }

var testTranscripts = map[string]string{
	"pmset": "Now drawing from 'AC Power'\n" +
		" -InternalBattery-0 (id=20775011)\t98%; charging; 0:13 remaining present: true\n",
	"system_profiler": "          Cycle Count: 342\n          Maximum Capacity: 87%\n          Wattage (W): 96\n",
	"ioreg":           "    \"AppleRawCurrentCapacity\" = 4230\n    \"DesignCapacity\" = 4700\n    \"CycleCount\" = 412\n",
	"powermetrics": "CPU 0 active residency:  40.00%\nCPU 0 frequency: 1200 MHz\n" +
		"CPU 4 active residency:  70.00%\nCPU 4 frequency: 3000 MHz\n" +
		"ANE Power: 10 mW\nCPU Power: 2000 mW\nGPU Power: 500 mW\n" +
		"Combined Power (CPU + GPU + ANE): 2510 mW\n",
	"powermetrics_smc": "**** SMC sensors ****\nFan 0: 1800RPM\n",
	"sysctl":           "3\n",
}

func stubRegistry() *collector.Registry {
	reg := collector.NewRegistry(nil)
	reg.Register(stubCollector{name: "cpu", data: collector.CPUResult{
		Cores:   []float64{30, 50},
		Average: 40,
	}})
	reg.Register(stubCollector{name: "health", data: models.SystemHealth{
		UptimeSeconds: 3600,
		Load1:         0.5, Load5: 0.5, Load15: 0.5,
	}})
	reg.Register(stubCollector{name: "sysinfo", data: models.SystemInfo{Hostname: "testhost"}})
	return reg
}

func newTestAggregator(runner probe.Runner, clock Clock) *Aggregator {
	return New(stubRegistry(), config.DefaultConfig().Probes, nil,
		WithRunner(runner), WithClock(clock))
}

func TestCollectAssemblesFullSnapshot(t *testing.T) {
	runner := newStubRunner(testTranscripts)
	clock := newFakeClock()
	agg := newTestAggregator(runner, clock)

	snap := agg.Collect(context.Background())
	require.NotNil(t, snap)

	assert.Equal(t, clock.Now(), snap.Timestamp)
	assert.Equal(t, "testhost", snap.System.Hostname)
	assert.Equal(t, 40.0, snap.CPU.Average)

	// Battery reconciled across all three sources.
	assert.Equal(t, 98.0, snap.Battery.Percentage)
	assert.True(t, snap.Battery.Charging)
	assert.Equal(t, 87.0, snap.Battery.Health)
	assert.Equal(t, 342, snap.Battery.CycleCount)
	assert.Equal(t, 4230, snap.Battery.CurrentCapacity)
	assert.Equal(t, 96.0, snap.Battery.AdapterWattage)

	// CPU power from powermetrics.
	assert.InDelta(t, 40, snap.CPU.Power.EClusterActive, 0.001)
	assert.InDelta(t, 70, snap.CPU.Power.PClusterActive, 0.001)
	assert.InDelta(t, 2.51, snap.CPU.Power.PackageWatts, 1e-9)

	// Thermal: level 3 scales to pressure 30, below the throttling bar.
	assert.Equal(t, 30, snap.Thermal.Pressure)
	assert.False(t, snap.Thermal.Throttling)
	assert.Equal(t, []int{1800}, snap.Thermal.FanRPM)

	// Derived metrics present.
	assert.Equal(t, models.WorkloadMixed, snap.Performance.Workload)
	assert.Equal(t, 95, snap.Health.QualityScore)
	assert.Equal(t, uint64(3600), snap.Health.UptimeSeconds)
}

func TestCollectHonorsTTL(t *testing.T) {
	runner := newStubRunner(testTranscripts)
	clock := newFakeClock()
	agg := newTestAggregator(runner, clock)

	agg.Collect(context.Background())
	clock.Advance(time.Second)
	agg.Collect(context.Background())

	// Battery TTL is 5s, power TTL 2s: one tick later nothing re-probes.
	assert.Equal(t, 1, runner.callCount("pmset"))
	assert.Equal(t, 1, runner.callCount("powermetrics"))

	clock.Advance(2 * time.Second)
	agg.Collect(context.Background())
	assert.Equal(t, 1, runner.callCount("pmset"), "battery still within TTL")
	assert.Equal(t, 2, runner.callCount("powermetrics"), "power TTL elapsed")
}

func TestCollectDegradesWhenAllProbesFail(t *testing.T) {
	runner := newStubRunner(nil) // every probe fails to launch
	agg := newTestAggregator(runner, newFakeClock())

	snap := agg.Collect(context.Background())
	require.NotNil(t, snap)

	// Battery falls back to the defined default record.
	assert.Equal(t, 0.0, snap.Battery.Percentage)
	assert.False(t, snap.Battery.Charging)
	assert.Nil(t, snap.Battery.TimeRemaining)

	// CPU power falls back to the utilization-based estimate (40% of 15 W).
	assert.InDelta(t, 6.0, snap.CPU.Power.PackageWatts, 1e-9)
	assert.InDelta(t, 24, snap.CPU.Power.EClusterActive, 1e-9)

	// Thermal falls back to the quiet record.
	assert.Equal(t, 0, snap.Thermal.Pressure)
	assert.Equal(t, 5.0, snap.Thermal.HeatDissipation)
}

func TestCollectKeepsStaleDataAcrossFailures(t *testing.T) {
	runner := newStubRunner(testTranscripts)
	clock := newFakeClock()
	agg := newTestAggregator(runner, clock)

	first := agg.Collect(context.Background())
	assert.Equal(t, 98.0, first.Battery.Percentage)

	// All probes start failing after the caches expire.
	runner.mu.Lock()
	runner.outputs = nil
	runner.mu.Unlock()
	clock.Advance(time.Minute)

	second := agg.Collect(context.Background())
	assert.Equal(t, 98.0, second.Battery.Percentage, "stale battery entry survives probe failure")
	assert.InDelta(t, 2.51, second.CPU.Power.PackageWatts, 1e-9, "stale power entry survives probe failure")
	assert.Equal(t, 30, second.Thermal.Pressure)
}

func TestIndependentAggregatorsShareNothing(t *testing.T) {
	clock := newFakeClock()
	a := newTestAggregator(newStubRunner(testTranscripts), clock)
	b := newTestAggregator(newStubRunner(nil), clock)

	snapA := a.Collect(context.Background())
	snapB := b.Collect(context.Background())

	assert.Equal(t, 98.0, snapA.Battery.Percentage)
	assert.Equal(t, 0.0, snapB.Battery.Percentage, "second instance must not see the first's cache")
}

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysalert/agent/internal/models"
)

func TestDerivePerformanceWorkloadLabels(t *testing.T) {
	tests := []struct {
		name     string
		util     float64
		power    models.CPUPower
		workload string
	}{
		{"idle", 4, models.CPUPower{}, models.WorkloadIdle},
		{"graphics", 40, models.CPUPower{GPUWatts: 3, CPUWatts: 1}, models.WorkloadGraphics},
		{"compute", 85, models.CPUPower{CPUWatts: 8, GPUWatts: 1}, models.WorkloadCompute},
		{"mixed", 40, models.CPUPower{CPUWatts: 3, GPUWatts: 1}, models.WorkloadMixed},
	}

	for _, tt := range tests {
		m := derivePerformance(tt.util, tt.power)
		assert.Equal(t, tt.workload, m.Workload, tt.name)
	}
}

func TestDerivePerformanceRatios(t *testing.T) {
	power := models.CPUPower{
		PackageWatts:    5,
		EClusterFreqMHz: 1000,
		PClusterFreqMHz: 3000,
	}
	m := derivePerformance(50, power)

	assert.InDelta(t, 50*1e6/5, m.InstructionsPerWatt, 1e-6)
	assert.InDelta(t, 10, m.PerformancePerWatt, 1e-9)
	assert.InDelta(t, 25, m.FrequencyEfficiency, 1e-9) // 50 / 2000 * 1000
}

func TestDerivePerformanceNoPowerData(t *testing.T) {
	m := derivePerformance(50, models.CPUPower{})

	assert.Zero(t, m.InstructionsPerWatt)
	assert.Zero(t, m.PerformancePerWatt)
	assert.Zero(t, m.FrequencyEfficiency)
	assert.Equal(t, models.WorkloadMixed, m.Workload)
}

func TestScoreHealth(t *testing.T) {
	tests := []struct {
		loads      [3]float64
		score      int
		efficiency float64
	}{
		{[3]float64{0.5, 0.5, 0.5}, 95, 95},
		{[3]float64{1.4, 1.4, 1.4}, 85, 95},
		{[3]float64{1.5, 1.5, 1.5}, 85, 85},
		{[3]float64{2.5, 2.5, 2.5}, 75, 85},
		{[3]float64{4, 4, 4}, 65, 85},
	}

	for _, tt := range tests {
		h := models.SystemHealth{Load1: tt.loads[0], Load5: tt.loads[1], Load15: tt.loads[2]}
		scoreHealth(&h)
		assert.Equal(t, tt.score, h.QualityScore)
		assert.Equal(t, tt.efficiency, h.SleepWakeEfficiency)
	}
}

func TestFallbackCPUPowerScalesWithUtilization(t *testing.T) {
	p := fallbackCPUPower(50)

	assert.InDelta(t, 7.5, p.PackageWatts, 1e-9)
	assert.InDelta(t, 4.5, p.CPUWatts, 1e-9)
	assert.InDelta(t, 1.5, p.GPUWatts, 1e-9)
	assert.InDelta(t, 30, p.EClusterActive, 1e-9)
	assert.InDelta(t, 20, p.PClusterActive, 1e-9)
	assert.Equal(t, 1800, p.EClusterFreqMHz)
	assert.Equal(t, 2400, p.PClusterFreqMHz)

	busy := fallbackCPUPower(90)
	assert.Equal(t, 2400, busy.EClusterFreqMHz)
	assert.Equal(t, 3200, busy.PClusterFreqMHz)
}

func TestMergeThermal(t *testing.T) {
	quiet := mergeThermal(nil, nil)
	assert.Equal(t, 0, quiet.Pressure)
	assert.False(t, quiet.Throttling)
	assert.Equal(t, 5.0, quiet.HeatDissipation)

	hot := 70
	loaded := mergeThermal(&hot, nil)
	assert.True(t, loaded.Throttling)
	assert.Equal(t, 20.0, loaded.HeatDissipation)
}

func TestDissipationBands(t *testing.T) {
	tests := []struct {
		pressure int
		watts    float64
	}{
		{0, 5}, {20, 5}, {21, 10}, {40, 10}, {41, 15}, {60, 15}, {61, 20}, {80, 20}, {81, 25}, {100, 25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.watts, dissipationFor(tt.pressure), "pressure %d", tt.pressure)
	}
}

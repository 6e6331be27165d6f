package telemetry

import "github.com/sysalert/agent/internal/models"

// derivePerformance computes the efficiency figures from utilization and the
// reconciled power record. All ratios are zero when the package draw is
// unknown, never NaN or Inf.
func derivePerformance(avgUtil float64, power models.CPUPower) models.PerformanceMetrics {
	var m models.PerformanceMetrics

	if power.PackageWatts > 0 {
		// Instruction throughput proxied from utilization; real counters
		// would need privileged access the collector deliberately avoids.
		m.InstructionsPerWatt = avgUtil * 1e6 / power.PackageWatts
		m.PerformancePerWatt = avgUtil / power.PackageWatts
	}

	avgFreq := float64(power.EClusterFreqMHz+power.PClusterFreqMHz) / 2
	if avgFreq > 0 {
		m.FrequencyEfficiency = avgUtil / avgFreq * 1000
	}

	switch {
	case avgUtil < 10:
		m.Workload = models.WorkloadIdle
	case power.GPUWatts > power.CPUWatts:
		m.Workload = models.WorkloadGraphics
	case avgUtil > 70:
		m.Workload = models.WorkloadCompute
	default:
		m.Workload = models.WorkloadMixed
	}

	return m
}

// scoreHealth fills in the derived quality figures from the raw load
// averages already present in the record.
func scoreHealth(h *models.SystemHealth) {
	avgLoad := (h.Load1 + h.Load5 + h.Load15) / 3

	switch {
	case avgLoad < 1:
		h.QualityScore = 95
	case avgLoad < 2:
		h.QualityScore = 85
	case avgLoad < 3:
		h.QualityScore = 75
	default:
		h.QualityScore = 65
	}

	if avgLoad < 1.5 {
		h.SleepWakeEfficiency = 95
	} else {
		h.SleepWakeEfficiency = 85
	}
}

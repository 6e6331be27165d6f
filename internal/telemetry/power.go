package telemetry

import (
	"context"

	"github.com/sysalert/agent/internal/extract"
	"github.com/sysalert/agent/internal/models"
	"github.com/sysalert/agent/internal/probe"
)

// powerFromSample settles the partial powermetrics record into a complete
// CPU power record. Fields no core reported stay at their zero defaults.
func powerFromSample(s extract.PowerSample) models.CPUPower {
	var out models.CPUPower
	if s.EClusterActive != nil {
		out.EClusterActive = *s.EClusterActive
	}
	if s.PClusterActive != nil {
		out.PClusterActive = *s.PClusterActive
	}
	if s.EClusterFreqMHz != nil {
		out.EClusterFreqMHz = *s.EClusterFreqMHz
	}
	if s.PClusterFreqMHz != nil {
		out.PClusterFreqMHz = *s.PClusterFreqMHz
	}
	if s.CPUWatts != nil {
		out.CPUWatts = *s.CPUWatts
	}
	if s.GPUWatts != nil {
		out.GPUWatts = *s.GPUWatts
	}
	if s.ANEWatts != nil {
		out.ANEWatts = *s.ANEWatts
	}
	if s.PackageWatts != nil {
		out.PackageWatts = *s.PackageWatts
	}
	return out
}

// fallbackCPUPower synthesizes a plausible power record from the directly
// observed CPU utilization, for machines or moments where powermetrics is
// unavailable. A fully loaded package is assumed to draw about 15 W, split
// 60/20/5 across CPU/GPU/ANE, with efficiency cores carrying most of the
// activity.
func fallbackCPUPower(avgUtil float64) models.CPUPower {
	estimated := avgUtil / 100 * 15

	out := models.CPUPower{
		EClusterActive:  avgUtil * 0.6,
		PClusterActive:  avgUtil * 0.4,
		EClusterFreqMHz: 1800,
		PClusterFreqMHz: 2400,
		CPUWatts:        estimated * 0.6,
		GPUWatts:        estimated * 0.2,
		ANEWatts:        estimated * 0.05,
		PackageWatts:    estimated,
	}
	if avgUtil > 50 {
		out.EClusterFreqMHz = 2400
	}
	if avgUtil > 70 {
		out.PClusterFreqMHz = 3200
	}
	return out
}

// refreshCPUPower runs the CPU power pipeline: one powermetrics sample,
// extracted and settled. powermetrics needs root and takes a noticeable
// fraction of a second, which is why this domain sits behind a cache.
func (a *Aggregator) refreshCPUPower(ctx context.Context) (models.CPUPower, error) {
	text, err := a.runner.Run(ctx, probe.Command{
		Source:  "powermetrics",
		Name:    "powermetrics",
		Args:    []string{"--samplers", "cpu_power", "-n", "1", "-i", "1000"},
		Timeout: a.probes.PowerMetricsTimeout.Duration,
	})
	if err != nil {
		return models.CPUPower{}, err
	}

	sample, err := extract.ParsePowerMetrics(text, a.probes.EfficiencyCoreMax)
	if err != nil {
		return models.CPUPower{}, err
	}
	return powerFromSample(sample), nil
}

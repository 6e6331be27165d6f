// CPU utilization collector — per-core percentages plus the cross-core
// average. Uses gopsutil, which computes usage from the delta since the
// previous call, so the first sweep after startup reads low.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CPUResult holds per-core utilization and the average across cores.
type CPUResult struct {
	Cores   []float64 `json:"cores"`
	Average float64   `json:"average"`
}

// CPUCollector collects CPU utilization metrics.
type CPUCollector struct{}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector() *CPUCollector {
	return &CPUCollector{}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return "cpu" }

// Collect gathers per-core utilization without blocking; the percentage is
// derived from counters accumulated since the previous collection.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	cores, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, err
	}

	result := CPUResult{Cores: cores}
	if len(cores) > 0 {
		var sum float64
		for _, u := range cores {
			sum += u
		}
		result.Average = sum / float64(len(cores))
	}
	return result, nil
}

// IsAvailable returns true — CPU metrics are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }

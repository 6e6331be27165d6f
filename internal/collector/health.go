// System health collector — uptime and load averages.
// Uses gopsutil host and load packages. The derived quality scores are
// filled in later by the aggregator; this collector reports raw readings.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"

	"github.com/sysalert/agent/internal/models"
)

// HealthCollector collects uptime and load averages.
type HealthCollector struct{}

// NewHealthCollector creates a new system health collector.
func NewHealthCollector() *HealthCollector {
	return &HealthCollector{}
}

// Name returns the collector identifier.
func (c *HealthCollector) Name() string { return "health" }

// Collect gathers uptime seconds and the 1/5/15 minute load averages.
func (c *HealthCollector) Collect(ctx context.Context) (interface{}, error) {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, err
	}

	result := models.SystemHealth{UptimeSeconds: uptime}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		result.Load1 = avg.Load1
		result.Load5 = avg.Load5
		result.Load15 = avg.Load15
	}
	return result, nil
}

// IsAvailable returns true — uptime is available on all platforms.
func (c *HealthCollector) IsAvailable() bool { return true }

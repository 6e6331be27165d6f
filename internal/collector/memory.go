// Memory collector — physical and swap usage.
// Uses gopsutil for cross-platform memory metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/sysalert/agent/internal/models"
)

// MemoryCollector collects RAM and swap usage metrics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return "memory" }

// Collect gathers physical memory and swap usage.
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	result := models.MemoryInfo{
		Total:       v.Total,
		Used:        v.Used,
		Available:   v.Available,
		UsedPercent: v.UsedPercent,
	}

	if s, err := mem.SwapMemoryWithContext(ctx); err == nil {
		result.SwapTotal = s.Total
		result.SwapUsed = s.Used
	}

	return result, nil
}

// IsAvailable returns true — memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }

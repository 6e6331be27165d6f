// Network collector — cumulative per-interface I/O counters.
// Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/sysalert/agent/internal/models"
)

// NetworkCollector collects per-interface byte and packet counters.
type NetworkCollector struct{}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return "network" }

// Collect gathers cumulative counters for every interface. Rate computation
// is left to consumers, who can difference successive snapshots.
func (c *NetworkCollector) Collect(ctx context.Context) (interface{}, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}

	stats := make([]models.InterfaceStats, 0, len(counters))
	for _, io := range counters {
		stats = append(stats, models.InterfaceStats{
			Name:        io.Name,
			BytesRecv:   io.BytesRecv,
			BytesSent:   io.BytesSent,
			PacketsRecv: io.PacketsRecv,
			PacketsSent: io.PacketsSent,
		})
	}
	return stats, nil
}

// IsAvailable returns true — network metrics are available on all platforms.
func (c *NetworkCollector) IsAvailable() bool { return true }

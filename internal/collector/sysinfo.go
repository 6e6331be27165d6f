// System identity collector — hostname, OS, kernel, architecture, and CPU
// brand. Uses gopsutil with a sysctl override on darwin, where the kernel
// reports the marketing OS version and CPU brand string directly. Results
// are cached since identity does not change during runtime.
package collector

import (
	"context"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/sysalert/agent/internal/models"
)

// SysInfoCollector collects host identity information.
// Results are cached after the first successful collection.
type SysInfoCollector struct {
	once  sync.Once
	cache models.SystemInfo
}

// NewSysInfoCollector creates a new system identity collector.
func NewSysInfoCollector() *SysInfoCollector {
	return &SysInfoCollector{}
}

// Name returns the collector identifier.
func (c *SysInfoCollector) Name() string { return "sysinfo" }

// Collect gathers host identity. Cached after the first call.
func (c *SysInfoCollector) Collect(ctx context.Context) (interface{}, error) {
	c.once.Do(func() {
		c.cache = collectSysInfo(ctx)
	})
	return c.cache, nil
}

// IsAvailable returns true — host identity is available on all platforms.
func (c *SysInfoCollector) IsAvailable() bool { return true }

func collectSysInfo(ctx context.Context) models.SystemInfo {
	info := models.SystemInfo{
		OSName: runtime.GOOS,
		Arch:   runtime.GOARCH,
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = hi.Hostname
		info.OSName = hi.Platform
		info.OSVersion = hi.PlatformVersion
		info.KernelVersion = hi.KernelVersion
		if hi.KernelArch != "" {
			info.Arch = hi.KernelArch
		}
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUBrand = cpus[0].ModelName
	}

	// Platform-native readings win over gopsutil where available.
	if v := platformOSVersion(); v != "" {
		info.OSVersion = v
	}
	if b := platformCPUBrand(); b != "" {
		info.CPUBrand = b
	}

	return info
}

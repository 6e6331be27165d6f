// Package models defines the snapshot data structures produced by one
// collection cycle. A Snapshot is immutable once assembled and is the only
// type handed to downstream consumers (history store, log emitters).
package models

import "time"

// Snapshot is the complete merged record of all telemetry domains for one
// polling cycle, stamped with a single capture time.
type Snapshot struct {
	Timestamp    time.Time            `json:"timestamp"`
	System       SystemInfo           `json:"system"`
	CPU          CPUInfo              `json:"cpu"`
	Memory       MemoryInfo           `json:"memory"`
	Network      []InterfaceStats     `json:"network"`
	Temperatures []TemperatureReading `json:"temperatures"`
	Processes    []ProcessInfo        `json:"processes"`
	Battery      BatteryInfo          `json:"battery"`
	Thermal      ThermalInfo          `json:"thermal"`
	Performance  PerformanceMetrics   `json:"performance"`
	Health       SystemHealth         `json:"health"`
}

// SystemInfo identifies the host the snapshot was taken on.
type SystemInfo struct {
	Hostname      string `json:"hostname"`
	OSName        string `json:"os_name"`
	OSVersion     string `json:"os_version"`
	KernelVersion string `json:"kernel_version"`
	Arch          string `json:"arch"`
	CPUBrand      string `json:"cpu_brand"`
}

// CPUInfo holds per-core utilization plus the reconciled power metrics.
type CPUInfo struct {
	CoreUsage []float64 `json:"core_usage"`
	Average   float64   `json:"average"`
	Power     CPUPower  `json:"power"`
}

// CPUPower holds cluster activity/frequency and component power draw in watts.
// Cluster values are arithmetic means across the cores reporting for that
// cluster; unset fields default to zero.
type CPUPower struct {
	EClusterActive  float64 `json:"e_cluster_active"`
	PClusterActive  float64 `json:"p_cluster_active"`
	EClusterFreqMHz int     `json:"e_cluster_freq_mhz"`
	PClusterFreqMHz int     `json:"p_cluster_freq_mhz"`
	CPUWatts        float64 `json:"cpu_w"`
	GPUWatts        float64 `json:"gpu_w"`
	ANEWatts        float64 `json:"ane_w"`
	PackageWatts    float64 `json:"package_w"`
}

// MemoryInfo holds physical and swap memory usage in bytes.
type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
}

// InterfaceStats holds cumulative I/O counters for one network interface.
type InterfaceStats struct {
	Name        string `json:"name"`
	BytesRecv   uint64 `json:"bytes_recv"`
	BytesSent   uint64 `json:"bytes_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	PacketsSent uint64 `json:"packets_sent"`
}

// TemperatureReading is one labelled thermal sensor value in Celsius.
type TemperatureReading struct {
	Label    string  `json:"label"`
	Celsius  float64 `json:"celsius"`
	Critical float64 `json:"critical"`
}

// ProcessInfo holds per-process resource usage.
type ProcessInfo struct {
	PID            int32   `json:"pid"`
	Name           string  `json:"name"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	MemoryRSS      uint64  `json:"memory_rss"`
	DiskReadBytes  uint64  `json:"disk_read_bytes"`
	DiskWriteBytes uint64  `json:"disk_write_bytes"`
	Status         string  `json:"status"`
}

// BatteryInfo is the reconciled battery record. TimeRemaining is nil when no
// estimate is available; every other field defaults to zero/false when no
// source produced it.
type BatteryInfo struct {
	Percentage      float64 `json:"percentage"`
	Charging        bool    `json:"charging"`
	Plugged         bool    `json:"plugged"`
	TimeRemaining   *int    `json:"time_remaining_sec"`
	Health          float64 `json:"health"`
	CycleCount      int     `json:"cycle_count"`
	CurrentCapacity int     `json:"current_capacity"`
	DesignCapacity  int     `json:"design_capacity"`
	AdapterWattage  float64 `json:"adapter_wattage"`
}

// ThermalInfo holds fan speeds and thermal pressure state.
// Pressure is scaled 0-100; HeatDissipation is an estimate in watts.
type ThermalInfo struct {
	FanRPM          []int   `json:"fan_rpm"`
	Throttling      bool    `json:"throttling"`
	Pressure        int     `json:"pressure"`
	HeatDissipation float64 `json:"heat_dissipation_w"`
}

// Workload labels assigned by the performance classifier.
const (
	WorkloadIdle     = "idle"
	WorkloadGraphics = "graphics"
	WorkloadCompute  = "compute"
	WorkloadMixed    = "mixed"
)

// PerformanceMetrics holds efficiency figures derived from utilization and
// power draw. InstructionsPerWatt is a proxy, not a hardware counter.
type PerformanceMetrics struct {
	InstructionsPerWatt float64 `json:"instructions_per_watt"`
	PerformancePerWatt  float64 `json:"performance_per_watt"`
	FrequencyEfficiency float64 `json:"frequency_efficiency"`
	Workload            string  `json:"workload"`
}

// SystemHealth holds uptime, load averages, and derived quality scores.
type SystemHealth struct {
	UptimeSeconds       uint64  `json:"uptime_seconds"`
	Load1               float64 `json:"load_1"`
	Load5               float64 `json:"load_5"`
	Load15              float64 `json:"load_15"`
	QualityScore        int     `json:"quality_score"`
	SleepWakeEfficiency float64 `json:"sleep_wake_efficiency"`
}

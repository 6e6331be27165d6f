// Package config handles configuration loading from YAML files and
// environment variables. Precedence: environment variables > config file >
// defaults. A malformed configuration is the only failure in the agent that
// is allowed to be fatal; runtime data-source failures degrade instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "1s", "5s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all agent configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Probes     ProbesConfig     `yaml:"probes"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	History    HistoryConfig    `yaml:"history"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CollectionConfig holds polling loop settings.
type CollectionConfig struct {
	Interval     Duration `yaml:"interval"`
	TopProcesses int      `yaml:"top_processes"`
}

// ProbesConfig holds external-probe budgets and cache windows. The TTLs are
// short for cheap tools and a few seconds for the slow ones; each timeout is
// strictly enforced per invocation.
type ProbesConfig struct {
	BatteryTTL Duration `yaml:"battery_ttl"`
	PowerTTL   Duration `yaml:"power_ttl"`
	ThermalTTL Duration `yaml:"thermal_ttl"`

	PmsetTimeout        Duration `yaml:"pmset_timeout"`
	ProfilerTimeout     Duration `yaml:"profiler_timeout"`
	IORegTimeout        Duration `yaml:"ioreg_timeout"`
	PowerMetricsTimeout Duration `yaml:"powermetrics_timeout"`
	SysctlTimeout       Duration `yaml:"sysctl_timeout"`

	// EfficiencyCoreMax is the highest CPU index assigned to the efficiency
	// cluster. The default of 3 matches a 4+N core layout; machines with a
	// different topology override it here.
	EfficiencyCoreMax int `yaml:"efficiency_core_max"`
}

// ThresholdsConfig holds the warning/critical levels checked every cycle.
type ThresholdsConfig struct {
	CPUWarning          float64 `yaml:"cpu_warning"`
	CPUCritical         float64 `yaml:"cpu_critical"`
	MemoryWarning       float64 `yaml:"memory_warning"`
	MemoryCritical      float64 `yaml:"memory_critical"`
	TemperatureWarning  float64 `yaml:"temperature_warning"`
	TemperatureCritical float64 `yaml:"temperature_critical"`
}

// HistoryConfig holds snapshot ingestion store settings.
type HistoryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	DBPath    string `yaml:"db_path"`
	BatchSize int    `yaml:"batch_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			Interval:     Duration{1 * time.Second},
			TopProcesses: 10,
		},
		Probes: ProbesConfig{
			BatteryTTL:          Duration{5 * time.Second},
			PowerTTL:            Duration{2 * time.Second},
			ThermalTTL:          Duration{5 * time.Second},
			PmsetTimeout:        Duration{1 * time.Second},
			ProfilerTimeout:     Duration{3 * time.Second},
			IORegTimeout:        Duration{2 * time.Second},
			PowerMetricsTimeout: Duration{3 * time.Second},
			SysctlTimeout:       Duration{1 * time.Second},
			EfficiencyCoreMax:   3,
		},
		Thresholds: ThresholdsConfig{
			CPUWarning:          75,
			CPUCritical:         90,
			MemoryWarning:       75,
			MemoryCritical:      90,
			TemperatureWarning:  70,
			TemperatureCritical: 85,
		},
		History: HistoryConfig{
			Enabled:   false,
			DBPath:    "./sysalert.db",
			BatchSize: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with
// defaults. Environment variables take highest precedence.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// WriteConfig serializes the config to a YAML file at the given path,
// creating parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("SYSALERT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("SYSALERT_DB_PATH"); path != "" {
		cfg.History.DBPath = path
	}
	if interval := os.Getenv("SYSALERT_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			cfg.Collection.Interval = Duration{parsed}
		}
	}
}

// Validate checks that the configuration satisfies the collector's domain
// contract. Violations here are the only fatal failure class.
func (c *Config) Validate() error {
	if c.Collection.Interval.Duration <= 0 {
		return fmt.Errorf("collection interval must be positive")
	}
	if c.Collection.TopProcesses < 0 {
		return fmt.Errorf("top_processes must not be negative")
	}
	if c.Probes.EfficiencyCoreMax < 0 {
		return fmt.Errorf("efficiency_core_max must not be negative")
	}
	for name, d := range map[string]Duration{
		"battery_ttl": c.Probes.BatteryTTL,
		"power_ttl":   c.Probes.PowerTTL,
		"thermal_ttl": c.Probes.ThermalTTL,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	for name, d := range map[string]Duration{
		"pmset_timeout":        c.Probes.PmsetTimeout,
		"profiler_timeout":     c.Probes.ProfilerTimeout,
		"ioreg_timeout":        c.Probes.IORegTimeout,
		"powermetrics_timeout": c.Probes.PowerMetricsTimeout,
		"sysctl_timeout":       c.Probes.SysctlTimeout,
	} {
		if d.Duration <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history db_path is required when history is enabled")
	}
	if c.History.BatchSize < 1 {
		return fmt.Errorf("history batch_size must be at least 1")
	}
	return nil
}

// Thermal sensor collector — all labelled temperature readings.
// Uses gopsutil host sensors; readings outside a plausible range are
// discarded as sensor errors.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/sysalert/agent/internal/models"
)

// minValidTemp is the minimum temperature (°C) considered valid.
const minValidTemp = 0.0

// maxValidTemp is the maximum temperature (°C) considered valid.
const maxValidTemp = 150.0

// defaultCriticalTemp is reported when a sensor carries no critical level.
const defaultCriticalTemp = 100.0

// TemperatureCollector collects every available thermal sensor reading.
type TemperatureCollector struct {
	logger *zap.Logger
}

// NewTemperatureCollector creates a new temperature collector.
// Pass nil for no logging.
func NewTemperatureCollector(logger *zap.Logger) *TemperatureCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemperatureCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *TemperatureCollector) Name() string { return "temperature" }

// Collect gathers all sensor readings with their labels. An empty list is a
// valid result on machines that expose no sensors.
func (c *TemperatureCollector) Collect(ctx context.Context) (interface{}, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		c.logger.Debug("Temperature sensors not available", zap.Error(err))
		return []models.TemperatureReading{}, nil
	}

	readings := make([]models.TemperatureReading, 0, len(temps))
	for _, t := range temps {
		if t.Temperature <= minValidTemp || t.Temperature > maxValidTemp {
			continue
		}
		critical := t.Critical
		if critical <= 0 {
			critical = defaultCriticalTemp
		}
		readings = append(readings, models.TemperatureReading{
			Label:    t.SensorKey,
			Celsius:  t.Temperature,
			Critical: critical,
		})
	}
	return readings, nil
}

// IsAvailable returns true — registered everywhere; machines without sensors
// simply report an empty list.
func (c *TemperatureCollector) IsAvailable() bool { return true }

package telemetry

import (
	"context"

	"go.uber.org/zap"

	"github.com/sysalert/agent/internal/extract"
	"github.com/sysalert/agent/internal/models"
	"github.com/sysalert/agent/internal/probe"
)

// throttlingPressure is the pressure level above which the machine is
// considered to be thermally throttling.
const throttlingPressure = 50

// dissipationFor estimates heat dissipation in watts for a pressure level.
func dissipationFor(pressure int) float64 {
	switch {
	case pressure <= 20:
		return 5
	case pressure <= 40:
		return 10
	case pressure <= 60:
		return 15
	case pressure <= 80:
		return 20
	default:
		return 25
	}
}

// mergeThermal reconciles the thermal sources into one complete record and
// derives the throttling flag and dissipation estimate from the merged
// pressure. A nil source contributes nothing; pressure defaults to zero.
func mergeThermal(pressure *int, fans *extract.FanSample) models.ThermalInfo {
	var out models.ThermalInfo
	if pressure != nil {
		out.Pressure = *pressure
	}
	if fans != nil {
		out.FanRPM = fans.FanRPM
	}
	out.Throttling = out.Pressure > throttlingPressure
	out.HeatDissipation = dissipationFor(out.Pressure)
	return out
}

// fallbackThermal synthesizes the no-data thermal record: zero pressure,
// no fans, idle-level dissipation.
func fallbackThermal() models.ThermalInfo {
	return mergeThermal(nil, nil)
}

// refreshThermal runs the thermal pipeline: the xcpm thermal level sysctl
// plus an smc sampler dump for fan speeds. Either source alone is enough;
// the refresh fails only when both came up empty.
func (a *Aggregator) refreshThermal(ctx context.Context) (models.ThermalInfo, error) {
	var pressure *int
	var fans *extract.FanSample

	if text, ok := a.runProbe(ctx, probe.Command{
		Source:  "sysctl",
		Name:    "sysctl",
		Args:    []string{"-n", "machdep.xcpm.cpu_thermal_level"},
		Timeout: a.probes.SysctlTimeout.Duration,
	}); ok {
		if p, err := extract.ParseThermalLevel(text); err == nil {
			pressure = p
		} else {
			a.logger.Debug("thermal level unrecognizable", zap.Error(err))
		}
	}

	if text, ok := a.runProbe(ctx, probe.Command{
		Source:  "powermetrics_smc",
		Name:    "powermetrics",
		Args:    []string{"--samplers", "smc", "-n", "1", "--show-initial-usage"},
		Timeout: a.probes.PowerMetricsTimeout.Duration,
	}); ok {
		if rec, err := extract.ParseSMCFans(text); err == nil {
			fans = &rec
		} else {
			a.logger.Debug("smc dump unrecognizable", zap.Error(err))
		}
	}

	if pressure == nil && fans == nil {
		return models.ThermalInfo{}, probe.NewParseMismatch("thermal")
	}
	return mergeThermal(pressure, fans), nil
}

package telemetry

import (
	"context"

	"go.uber.org/zap"

	"github.com/sysalert/agent/internal/extract"
	"github.com/sysalert/agent/internal/models"
	"github.com/sysalert/agent/internal/probe"
)

// batterySources holds the partial records gathered for the battery domain
// in one refresh. A nil entry means the source did not run or its output was
// unrecognizable; the reconciler treats both identically.
type batterySources struct {
	Status   *extract.BatteryStatus
	Detail   *extract.BatteryDetail
	Capacity *extract.BatteryCapacity
}

// empty reports whether no source produced any data.
func (s batterySources) empty() bool {
	return s.Status == nil && s.Detail == nil && s.Capacity == nil
}

// mergeBattery reconciles the battery sources into one complete record.
//
// Field ownership follows the fixed priority table: pmset owns the live
// status fields, the profiler owns health/cycles/wattage, and the registry
// dump owns raw capacities. Cycle count falls back to the registry only when
// the profiler was silent; health falls back to the capacity ratio only when
// neither a direct reading nor the condition table produced one. A value set
// by a higher-confidence source is never overwritten by a derived one.
func mergeBattery(src batterySources) models.BatteryInfo {
	var out models.BatteryInfo

	if s := src.Status; s != nil {
		if s.Percentage != nil {
			out.Percentage = *s.Percentage
		}
		if s.Charging != nil {
			out.Charging = *s.Charging
		}
		if s.Plugged != nil {
			out.Plugged = *s.Plugged
		}
		if s.TimeRemaining != nil {
			secs := *s.TimeRemaining
			out.TimeRemaining = &secs
		}
	}

	if d := src.Detail; d != nil {
		if d.Health != nil {
			out.Health = *d.Health
		}
		if d.CycleCount != nil {
			out.CycleCount = *d.CycleCount
		}
		if d.AdapterWattage != nil {
			out.AdapterWattage = *d.AdapterWattage
		}
	}

	if c := src.Capacity; c != nil {
		if c.CurrentCapacity != nil {
			out.CurrentCapacity = *c.CurrentCapacity
		}
		if c.DesignCapacity != nil {
			out.DesignCapacity = *c.DesignCapacity
		}
		if out.CycleCount == 0 && c.CycleCount != nil {
			out.CycleCount = *c.CycleCount
		}
		if out.Health == 0 && out.DesignCapacity > 0 {
			out.Health = float64(out.CurrentCapacity) / float64(out.DesignCapacity) * 100
		}
	}

	return out
}

// refreshBattery runs the battery domain pipeline: three probes, three
// extractors, one reconciliation. Individual source failures degrade to a
// missing source; the refresh as a whole fails only when every source came
// up empty, which lets the cache layer keep serving the previous record.
func (a *Aggregator) refreshBattery(ctx context.Context) (models.BatteryInfo, error) {
	var src batterySources

	if text, ok := a.runProbe(ctx, probe.Command{
		Source:  "pmset",
		Name:    "pmset",
		Args:    []string{"-g", "batt"},
		Timeout: a.probes.PmsetTimeout.Duration,
	}); ok {
		if rec, err := extract.ParsePmsetBatt(text); err == nil {
			src.Status = &rec
		} else {
			a.logger.Debug("pmset output unrecognizable", zap.Error(err))
		}
	}

	if text, ok := a.runProbe(ctx, probe.Command{
		Source:  "system_profiler",
		Name:    "system_profiler",
		Args:    []string{"SPPowerDataType"},
		Timeout: a.probes.ProfilerTimeout.Duration,
	}); ok {
		if rec, err := extract.ParsePowerProfile(text); err == nil {
			src.Detail = &rec
		} else {
			a.logger.Debug("power profile unrecognizable", zap.Error(err))
		}
	}

	if text, ok := a.runProbe(ctx, probe.Command{
		Source:  "ioreg",
		Name:    "ioreg",
		Args:    []string{"-r", "-c", "AppleSmartBattery"},
		Timeout: a.probes.IORegTimeout.Duration,
	}); ok {
		if rec, err := extract.ParseIORegBattery(text); err == nil {
			src.Capacity = &rec
		} else {
			a.logger.Debug("ioreg output unrecognizable", zap.Error(err))
		}
	}

	if src.empty() {
		return models.BatteryInfo{}, probe.NewParseMismatch("battery")
	}
	return mergeBattery(src), nil
}

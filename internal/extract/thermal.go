package extract

import (
	"strconv"
	"strings"

	"github.com/sysalert/agent/internal/probe"
)

// maxPressure caps the scaled thermal pressure value.
const maxPressure = 100

// FanSample is the partial record produced from an smc sampler dump.
type FanSample struct {
	FanRPM []int
}

// ParseSMCFans extracts fan speeds from `powermetrics --samplers smc` output.
// Fan lines carry both a "Fan" label and an RPM-suffixed reading; machines
// without fans legitimately produce none, which is not a mismatch as long as
// the dump itself is recognizable.
func ParseSMCFans(text string) (FanSample, error) {
	var rec FanSample
	matched := false

	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "Fan") || strings.Contains(line, "SMC") {
			matched = true
		}
		if !strings.Contains(line, "Fan") || !strings.Contains(line, "RPM") {
			continue
		}
		for _, field := range strings.Fields(line) {
			if !strings.HasSuffix(field, "RPM") {
				continue
			}
			if rpm, err := strconv.Atoi(strings.TrimSuffix(field, "RPM")); err == nil {
				rec.FanRPM = append(rec.FanRPM, rpm)
			}
		}
	}

	if !matched {
		return FanSample{}, probe.NewParseMismatch("powermetrics_smc")
	}
	return rec, nil
}

// ParseThermalLevel converts the machdep.xcpm.cpu_thermal_level sysctl value
// into a 0-100 pressure figure (level x10, clamped).
func ParseThermalLevel(text string) (*int, error) {
	level, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || level < 0 {
		return nil, probe.NewParseMismatch("sysctl_thermal")
	}
	pressure := level * 10
	if pressure > maxPressure {
		pressure = maxPressure
	}
	return &pressure, nil
}

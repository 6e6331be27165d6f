// Package extract turns raw diagnostic-tool output into partial-fact records.
// Each function is a stateless extractor for one (source, domain) pair: it
// matches the line shapes it knows, leaves everything it does not recognize
// alone, and never invents a value for a field it could not read. A record
// field is either a concrete value or nil, never parsed garbage.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sysalert/agent/internal/probe"
)

// BatteryStatus is the partial record produced from pmset output.
type BatteryStatus struct {
	Percentage    *float64
	Charging      *bool
	Plugged       *bool
	TimeRemaining *int // seconds; nil when no estimate is available
}

// BatteryDetail is the partial record produced from the power profiler.
type BatteryDetail struct {
	Health         *float64
	CycleCount     *int
	AdapterWattage *float64
}

// BatteryCapacity is the partial record produced from the I/O registry dump.
type BatteryCapacity struct {
	CurrentCapacity *int
	DesignCapacity  *int
	CycleCount      *int
}

var (
	pmsetPercentRe = regexp.MustCompile(`(\d+)%`)
	pmsetTimeRe    = regexp.MustCompile(`(\d+):(\d+) remaining`)

	profilerCapacityRe  = regexp.MustCompile(`Maximum Capacity:\s*(\d+)%`)
	profilerCyclesRe    = regexp.MustCompile(`Cycle Count:\s*(\d+)`)
	profilerConditionRe = regexp.MustCompile(`Condition:\s*(\w+(?:\s+\w+)*)`)
	profilerWattageRe   = regexp.MustCompile(`Wattage \(W\):\s*(\d+)`)

	ioregCurrentRe    = regexp.MustCompile(`"AppleRawCurrentCapacity"\s*=\s*(\d+)`)
	ioregAltCurrentRe = regexp.MustCompile(`"CurrentCapacity"\s*=\s*(\d+)`)
	ioregDesignRe     = regexp.MustCompile(`"DesignCapacity"\s*=\s*(\d+)`)
	ioregAltDesignRe  = regexp.MustCompile(`"MaxCapacity"\s*=\s*(\d+)`)
	ioregCyclesRe     = regexp.MustCompile(`"CycleCount"\s*=\s*(\d+)`)
)

// conditionHealth maps the profiler's battery condition wording to an
// estimated health percentage, used only when no direct reading exists.
var conditionHealth = map[string]float64{
	"Normal":          95,
	"Replace Soon":    75,
	"Replace Now":     50,
	"Service Battery": 30,
}

// conditionHealthDefault covers condition wordings outside the known table.
const conditionHealthDefault = 85.0

// ParsePmsetBatt extracts the basic battery status from `pmset -g batt`
// output. The battery line carries an "InternalBattery" token; the power
// source line starts with "Now drawing from".
func ParsePmsetBatt(text string) (BatteryStatus, error) {
	var rec BatteryStatus
	matched := false

	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "InternalBattery") {
			matched = true

			if caps := pmsetPercentRe.FindStringSubmatch(line); caps != nil {
				if pct, err := strconv.ParseFloat(caps[1], 64); err == nil {
					rec.Percentage = &pct
				}
			}

			charging := strings.Contains(line, "charging")
			rec.Charging = &charging

			// Weak inference; the power source line is authoritative and
			// must not be overwritten by it.
			if rec.Plugged == nil {
				plugged := !strings.Contains(line, "Battery Power")
				rec.Plugged = &plugged
			}

			if caps := pmsetTimeRe.FindStringSubmatch(line); caps != nil {
				h, herr := strconv.Atoi(caps[1])
				m, merr := strconv.Atoi(caps[2])
				if herr == nil && merr == nil {
					secs := h*3600 + m*60
					rec.TimeRemaining = &secs
				}
			}

			// The estimate can be explicitly withdrawn on the same line.
			if strings.Contains(line, "no estimate") {
				rec.TimeRemaining = nil
			}
		}

		if strings.Contains(line, "Now drawing from") {
			matched = true
			plugged := strings.Contains(line, "AC Power")
			rec.Plugged = &plugged
		}
	}

	if !matched {
		return BatteryStatus{}, probe.NewParseMismatch("pmset")
	}
	return rec, nil
}

// ParsePowerProfile extracts health, cycle count, and adapter wattage from
// `system_profiler SPPowerDataType` output. The condition table is consulted
// only when no "Maximum Capacity" line produced a direct health reading.
func ParsePowerProfile(text string) (BatteryDetail, error) {
	var rec BatteryDetail
	matched := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if caps := profilerCapacityRe.FindStringSubmatch(line); caps != nil {
			matched = true
			if health, err := strconv.ParseFloat(caps[1], 64); err == nil {
				rec.Health = &health
			}
			continue
		}

		if caps := profilerCyclesRe.FindStringSubmatch(line); caps != nil {
			matched = true
			if cycles, err := strconv.Atoi(caps[1]); err == nil {
				rec.CycleCount = &cycles
			}
			continue
		}

		if caps := profilerConditionRe.FindStringSubmatch(line); caps != nil {
			matched = true
			if rec.Health == nil {
				health, ok := conditionHealth[caps[1]]
				if !ok {
					health = conditionHealthDefault
				}
				rec.Health = &health
			}
			continue
		}

		if caps := profilerWattageRe.FindStringSubmatch(line); caps != nil {
			matched = true
			if watts, err := strconv.ParseFloat(caps[1], 64); err == nil {
				rec.AdapterWattage = &watts
			}
		}
	}

	if !matched {
		return BatteryDetail{}, probe.NewParseMismatch("system_profiler")
	}
	return rec, nil
}

// ParseIORegBattery extracts raw capacity counters and cycle count from an
// I/O registry dump. Newer firmware exposes AppleRawCurrentCapacity and
// DesignCapacity; older builds use CurrentCapacity and MaxCapacity.
func ParseIORegBattery(text string) (BatteryCapacity, error) {
	var rec BatteryCapacity
	matched := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if v := firstInt(line, ioregCurrentRe, ioregAltCurrentRe); v != nil {
			rec.CurrentCapacity = v
			matched = true
		}
		if v := firstInt(line, ioregDesignRe, ioregAltDesignRe); v != nil {
			rec.DesignCapacity = v
			matched = true
		}
		if v := firstInt(line, ioregCyclesRe); v != nil {
			rec.CycleCount = v
			matched = true
		}
	}

	if !matched {
		return BatteryCapacity{}, probe.NewParseMismatch("ioreg")
	}
	return rec, nil
}

// firstInt returns the first capture of the first regexp that matches line,
// or nil when none match or the capture does not parse.
func firstInt(line string, res ...*regexp.Regexp) *int {
	for _, re := range res {
		if caps := re.FindStringSubmatch(line); caps != nil {
			if v, err := strconv.Atoi(caps[1]); err == nil {
				return &v
			}
			return nil
		}
	}
	return nil
}

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sysalert/agent/internal/probe"
)

// PowerSample is the partial record produced from a powermetrics cpu_power
// sample. Cluster values are arithmetic means over the cores that reported;
// power draws are in watts.
type PowerSample struct {
	EClusterActive  *float64
	PClusterActive  *float64
	EClusterFreqMHz *int
	PClusterFreqMHz *int
	CPUWatts        *float64
	GPUWatts        *float64
	ANEWatts        *float64
	PackageWatts    *float64
}

var (
	residencyRe = regexp.MustCompile(`CPU (\d+) active residency:\s+(\d+\.\d+)%`)
	frequencyRe = regexp.MustCompile(`^CPU\s+(\d+)\s+frequency:\s+(\d+)\s+MHz$`)
)

// clusterAcc accumulates per-core readings for one cluster. Residency and
// frequency lines are counted independently because a core may report one
// without the other.
type clusterAcc struct {
	activeSum   float64
	activeCount int
	freqSum     float64
	freqCount   int
}

// ParsePowerMetrics extracts cluster activity, cluster frequency, and
// component power draw from `powermetrics --samplers cpu_power` output.
// Cores with index <= eCoreMax belong to the efficiency cluster, the rest to
// the performance cluster; the boundary is caller-configured because it is a
// chip-topology assumption, not a stable fact.
func ParsePowerMetrics(text string, eCoreMax int) (PowerSample, error) {
	var rec PowerSample
	var eCluster, pCluster clusterAcc
	matched := false

	for _, line := range strings.Split(text, "\n") {
		if caps := residencyRe.FindStringSubmatch(line); caps != nil {
			core, cerr := strconv.Atoi(caps[1])
			active, aerr := strconv.ParseFloat(caps[2], 64)
			if cerr == nil && aerr == nil {
				matched = true
				acc := clusterFor(core, eCoreMax, &eCluster, &pCluster)
				acc.activeSum += active
				acc.activeCount++
			}
			continue
		}

		if caps := frequencyRe.FindStringSubmatch(line); caps != nil {
			core, cerr := strconv.Atoi(caps[1])
			freq, ferr := strconv.ParseFloat(caps[2], 64)
			if cerr == nil && ferr == nil {
				matched = true
				acc := clusterFor(core, eCoreMax, &eCluster, &pCluster)
				acc.freqSum += freq
				acc.freqCount++
			}
			continue
		}

		switch {
		case strings.Contains(line, "ANE Power"):
			if w := powerField(line, 2); w != nil {
				rec.ANEWatts = w
				matched = true
			}
		case strings.Contains(line, "Combined Power (CPU + GPU + ANE)"):
			if w := powerField(line, 7); w != nil {
				rec.PackageWatts = w
				matched = true
			}
		case strings.Contains(line, "CPU Power"):
			if w := powerField(line, 2); w != nil {
				rec.CPUWatts = w
				matched = true
			}
		case strings.Contains(line, "GPU Power"):
			if w := powerField(line, 2); w != nil {
				rec.GPUWatts = w
				matched = true
			}
		}
	}

	if !matched {
		return PowerSample{}, probe.NewParseMismatch("powermetrics")
	}

	if eCluster.activeCount > 0 {
		mean := eCluster.activeSum / float64(eCluster.activeCount)
		rec.EClusterActive = &mean
	}
	if pCluster.activeCount > 0 {
		mean := pCluster.activeSum / float64(pCluster.activeCount)
		rec.PClusterActive = &mean
	}
	if eCluster.freqCount > 0 {
		mhz := int(eCluster.freqSum / float64(eCluster.freqCount))
		rec.EClusterFreqMHz = &mhz
	}
	if pCluster.freqCount > 0 {
		mhz := int(pCluster.freqSum / float64(pCluster.freqCount))
		rec.PClusterFreqMHz = &mhz
	}

	return rec, nil
}

func clusterFor(core, eCoreMax int, e, p *clusterAcc) *clusterAcc {
	if core <= eCoreMax {
		return e
	}
	return p
}

// powerField parses the milliwatt value at the given whitespace-field index
// of a power line and converts it to watts. Returns nil when the field is
// missing or not numeric.
func powerField(line string, index int) *float64 {
	fields := strings.Fields(line)
	if index >= len(fields) {
		return nil
	}
	mw, err := strconv.ParseFloat(strings.TrimSuffix(fields[index], "mW"), 64)
	if err != nil {
		return nil
	}
	w := mw / 1000.0
	return &w
}

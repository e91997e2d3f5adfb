package validation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/bessim/core/model"
)

// ShapeBuckets is the width of the solar shape fingerprint.
const ShapeBuckets = 24

// ExtractFeatures flattens a run into a fixed set of named features.
func ExtractFeatures(res *model.SimulationResult, cfg model.BatteryConfiguration) map[string]float64 {
	cfg = cfg.Normalized()
	f := make(map[string]float64, 16+len(model.Technologies)+len(model.StrategyKinds)+ShapeBuckets)
	dt := res.DtHours

	var peak, mean, energy float64
	if res.Len() > 0 {
		peak = floats.Max(res.Solar)
		mean = stat.Mean(res.Solar, nil)
		energy = floats.Sum(res.Solar) * dt
	}
	f["solar_peak_mw"] = peak
	f["solar_mean_mw"] = mean
	f["solar_energy_mwh"] = energy
	f["battery_power_mw"] = cfg.PowerMW
	f["battery_energy_mwh"] = cfg.CapacityMWh()
	f["battery_duration_h"] = cfg.DurationHours
	f["power_to_peak_ratio"] = ratio(cfg.PowerMW, peak)
	if hours := float64(res.Len()) * dt; hours > 0 {
		f["energy_to_daily_solar_ratio"] = ratio(cfg.CapacityMWh(), energy*24/hours)
	}

	for _, t := range model.Technologies {
		f["technology_"+string(t)] = oneHot(t == cfg.Technology)
	}
	for _, k := range model.StrategyKinds {
		f["strategy_"+string(k)] = oneHot(k == res.Strategy)
	}
	for i, v := range ShapeFingerprint(res.Solar, dt) {
		f[fmt.Sprintf("shape_%02d", i)] = v
	}
	return f
}

// ShapeFingerprint buckets the solar series by hour of day and normalizes
// it by the largest bucket. Sub-hourly steps are averaged into their hour,
// steps longer than an hour fill every hour they cover and hours with no
// sample repeat the previous bucket.
func ShapeFingerprint(solar []float64, dt float64) []float64 {
	sum := make([]float64, ShapeBuckets)
	count := make([]float64, ShapeBuckets)
	if dt > 0 {
		for i, v := range solar {
			start := math.Mod(float64(i)*dt, 24)
			span := int(math.Max(1, math.Ceil(dt-1e-9)))
			for k := 0; k < span && k < ShapeBuckets; k++ {
				b := (int(math.Floor(start+1e-9)) + k) % ShapeBuckets
				sum[b] += v
				count[b]++
			}
		}
	}
	out := make([]float64, ShapeBuckets)
	first := -1
	for b := range out {
		if count[b] > 0 {
			out[b] = sum[b] / count[b]
			if first < 0 {
				first = b
			}
		}
	}
	if first < 0 {
		return out
	}
	for b := range out {
		if count[b] > 0 {
			continue
		}
		if b == 0 {
			out[b] = out[first]
			continue
		}
		out[b] = out[b-1]
	}
	if peak := floats.Max(out); peak > 0 {
		floats.Scale(1/peak, out)
	}
	return out
}

func ratio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

func oneHot(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

package runner

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/model"
)

// activityEpsilonMW separates an idle battery from one that is moving power.
const activityEpsilonMW = 1e-9

// boundEpsilon is how close SOC must be to a bound to count as saturated or
// depleted.
const boundEpsilon = 1e-6

// Stats aggregates one run.
type Stats struct {
	ChargedMWh           float64 `json:"charged_mwh"`
	DischargedMWh        float64 `json:"discharged_mwh"`
	LossMWh              float64 `json:"loss_mwh"`
	RoundTrip            float64 `json:"round_trip"`
	Cycles               float64 `json:"cycles"`
	Utilization          float64 `json:"utilization"`
	VariabilityReduction float64 `json:"variability_reduction"`
	PeakShavingMW        float64 `json:"peak_shaving_mw"`
	HoursCharging        float64 `json:"hours_charging"`
	HoursDischarging     float64 `json:"hours_discharging"`
	HoursIdle            float64 `json:"hours_idle"`
	HoursSaturated       float64 `json:"hours_saturated"`
	HoursDepleted        float64 `json:"hours_depleted"`
}

// ComputeStats aggregates res against the battery that produced it.
//
// RoundTrip is discharged over charged energy. Utilization is the SOC swing
// reached over the usable window. VariabilityReduction is
// 1 - std(grid)/std(solar), zero for a flat solar series.
func ComputeStats(res *model.SimulationResult, b *battery.Battery) Stats {
	dt := res.DtHours
	p := b.Params()
	var st Stats
	for i := 0; i < res.Len(); i++ {
		charge, discharge := res.ChargeMW(i), res.DischargeMW(i)
		st.ChargedMWh += charge * dt
		st.DischargedMWh += discharge * dt
		switch {
		case charge > activityEpsilonMW:
			st.HoursCharging += dt
		case discharge > activityEpsilonMW:
			st.HoursDischarging += dt
		default:
			st.HoursIdle += dt
		}
		soc := res.SOC[i]
		if soc >= p.SOCMax-boundEpsilon {
			st.HoursSaturated += dt
		}
		if soc <= p.SOCMin+boundEpsilon {
			st.HoursDepleted += dt
		}
	}
	st.LossMWh = floats.Sum(res.Loss)
	if st.ChargedMWh > 0 {
		st.RoundTrip = st.DischargedMWh / st.ChargedMWh
	}
	st.Cycles = b.CyclesEquivalent()
	if res.Len() > 0 {
		window := p.SOCMax - p.SOCMin
		if window > 0 {
			st.Utilization = (floats.Max(res.SOC) - floats.Min(res.SOC)) / window
		}
		st.PeakShavingMW = math.Max(0, floats.Max(res.Solar)-floats.Max(res.Grid))
	}
	if res.Len() > 1 {
		sdSolar := stat.StdDev(res.Solar, nil)
		if sdSolar > 0 {
			st.VariabilityReduction = 1 - stat.StdDev(res.Grid, nil)/sdSolar
		}
	}
	return st
}

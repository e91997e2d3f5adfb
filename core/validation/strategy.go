package validation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/model"
)

// HoursPerYear is the horizon from which a run is treated as annual.
const HoursPerYear = 365 * 24

// FirmTolerance is the relative shortfall allowed before a firm step
// counts as missed.
const FirmTolerance = 0.02

// ValidateStrategyResult validates a completed run. Pass or fail is always
// decided on the undivided totals; for annual runs the reported energy
// metrics are daily averages.
func ValidateStrategyResult(res *model.SimulationResult, cfg model.BatteryConfiguration, s dispatch.Strategy) model.ValidationResult {
	dt := res.DtHours
	solarMWh := floats.Sum(res.Solar) * dt
	deliveredMWh := floats.Sum(res.Grid) * dt
	curtailedMWh := floats.Sum(res.Curtailed) * dt
	lossMWh := floats.Sum(res.Loss)

	out := ValidateEnergyDelivery(cfg.Technology, solarMWh, deliveredMWh, curtailedMWh)

	hours := float64(res.Len()) * dt
	scale := 1.0
	if hours >= HoursPerYear-epsilon {
		scale = 24 / hours
		out.Metrics["annual"] = 1
	}
	out.Metrics["days"] = hours / 24
	out.Metrics["solar_energy_mwh"] = solarMWh * scale
	out.Metrics["delivered_energy_mwh"] = deliveredMWh * scale
	out.Metrics["curtailed_energy_mwh"] = curtailedMWh * scale
	out.Metrics["battery_loss_mwh"] = lossMWh * scale
	out.Metrics["total_solar_energy_mwh"] = solarMWh
	out.Metrics["total_delivered_energy_mwh"] = deliveredMWh
	out.Metrics["total_curtailed_energy_mwh"] = curtailedMWh
	out.Metrics["efficiency"] = out.Efficiency
	out.Metrics["loss_fraction"] = out.LossFraction

	switch v := s.(type) {
	case dispatch.CapShaving:
		capMetrics(out.Metrics, res, v.CapMW)
	case dispatch.CapShavingBalanced:
		capMetrics(out.Metrics, res, v.CapMW)
	case dispatch.RampLimit:
		rampMetrics(out.Metrics, res, v.RampMWPerHour)
	case dispatch.Trapezoid:
		if res.Firm != nil {
			firmMetrics(out.Metrics, res, func(i int) float64 { return res.Firm.Target[i] })
		}
	case dispatch.FlatDay:
		firmMetrics(out.Metrics, res, func(i int) float64 {
			if dispatch.InWindow(math.Mod(float64(i)*dt, 24), v.StartHour, v.EndHour) {
				return v.FlatMW
			}
			return 0
		})
		if v.CapMW > 0 {
			capMetrics(out.Metrics, res, v.CapMW)
		}
	case dispatch.NightShift:
		nightMetrics(out.Metrics, res, v)
	}
	if out.Valid {
		out.Diagnosis = fmt.Sprintf("%s: %s", res.Strategy, out.Diagnosis)
	}
	out.Features = ExtractFeatures(res, cfg)
	return out
}

func capMetrics(m map[string]float64, res *model.SimulationResult, capMW float64) {
	var violations int
	var worst float64
	limit := capMW * (1 + dispatch.CapTolerance)
	for _, g := range res.Grid {
		if g > limit+epsilon {
			violations++
		}
		worst = math.Max(worst, g-capMW)
	}
	m["cap_mw"] = capMW
	m["cap_violation_count"] = float64(violations)
	m["max_cap_overshoot_mw"] = worst
	m["cap_compliance"] = compliance(violations, res.Len())
}

func rampMetrics(m map[string]float64, res *model.SimulationResult, limit float64) {
	var violations int
	var worst float64
	for i := 1; i < res.Len(); i++ {
		ramp := math.Abs(res.Grid[i]-res.Grid[i-1]) / res.DtHours
		if excess := ramp - limit; excess > 1e-9*math.Max(1, limit) {
			violations++
			worst = math.Max(worst, excess)
		}
	}
	m["ramp_limit_mw_per_hour"] = limit
	m["ramp_violation_count"] = float64(violations)
	m["max_ramp_excess"] = worst
	m["ramp_compliance"] = compliance(violations, res.Len()-1)
}

func firmMetrics(m map[string]float64, res *model.SimulationResult, target func(int) float64) {
	var steps, met int
	var delivered, shortfall float64
	for i := range res.Grid {
		t := target(i)
		if t <= 0 {
			continue
		}
		steps++
		delivered += res.Grid[i]
		if res.Grid[i] >= t*(1-FirmTolerance)-epsilon {
			met++
		}
		shortfall += math.Max(0, t-res.Grid[i]) * res.DtHours
	}
	m["firm_steps"] = float64(steps)
	if steps > 0 {
		m["firm_average_mw"] = delivered / float64(steps)
		m["firm_compliance"] = float64(met) / float64(steps)
	}
	m["firm_shortfall_mwh"] = shortfall
}

func nightMetrics(m map[string]float64, res *model.SimulationResult, s dispatch.NightShift) {
	var steps, active int
	var delivered float64
	for i := range res.Grid {
		if !dispatch.InWindow(math.Mod(float64(i)*res.DtHours, 24), s.DischargeStartHour, s.DischargeEndHour) {
			continue
		}
		steps++
		delivered += res.Grid[i]
		if res.Battery[i] > epsilon {
			active++
		}
	}
	m["firm_steps"] = float64(steps)
	if steps > 0 {
		m["firm_average_mw"] = delivered / float64(steps)
		m["firm_compliance"] = float64(active) / float64(steps)
	}
}

func compliance(violations, steps int) float64 {
	if steps <= 0 {
		return 1
	}
	return 1 - float64(violations)/float64(steps)
}

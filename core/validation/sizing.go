package validation

import (
	"fmt"
	"math"

	"github.com/kilianp07/bessim/core/model"
)

// Sizing is a battery size that would absorb every surplus of solar over a
// reference delivery profile.
type Sizing struct {
	PowerMW          float64 `json:"power_mw"`
	EnergyMWh        float64 `json:"energy_mwh"`
	DurationHours    float64 `json:"duration_hours"`
	MaxCumulativeMWh float64 `json:"max_cumulative_mwh"`
	MaxChargeMW      float64 `json:"max_charge_mw"`
	MaxDischargeMW   float64 `json:"max_discharge_mw"`
}

// Configuration returns the sizing as a battery configuration.
func (s Sizing) Configuration(tech model.Technology, topo model.Topology) model.BatteryConfiguration {
	return model.BatteryConfiguration{PowerMW: s.PowerMW, DurationHours: s.DurationHours, Technology: tech, Topology: topo}
}

// SuggestSizing walks solar minus reference, accumulating surplus energy
// clamped at zero. A single-value reference is used for every step.
func SuggestSizing(solar, reference []float64, dt float64, tech model.Technology) (Sizing, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return Sizing{}, fmt.Errorf("%w: dt=%v", model.ErrInvalidTimestep, dt)
	}
	if len(reference) != len(solar) && len(reference) != 1 {
		return Sizing{}, fmt.Errorf("%w: %d solar values, %d reference values", model.ErrBatchLength, len(solar), len(reference))
	}
	p := tech.Parameters()
	var s Sizing
	var cum float64
	for i, v := range solar {
		ref := reference[0]
		if len(reference) > 1 {
			ref = reference[i]
		}
		diff := v - ref
		if diff > 0 {
			s.MaxChargeMW = math.Max(s.MaxChargeMW, diff)
		} else {
			s.MaxDischargeMW = math.Max(s.MaxDischargeMW, -diff)
		}
		cum = math.Max(0, cum+diff*dt)
		s.MaxCumulativeMWh = math.Max(s.MaxCumulativeMWh, cum)
	}
	margin := 1 + SizingSafetyMargin
	s.PowerMW = math.Max(s.MaxChargeMW/p.EtaCharge, s.MaxDischargeMW) * margin
	s.EnergyMWh = s.MaxCumulativeMWh / p.EtaCharge * margin
	if s.PowerMW > 0 {
		s.DurationHours = s.EnergyMWh / s.PowerMW
	}
	return s, nil
}

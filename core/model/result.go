package model

import (
	"fmt"
	"math"
)

// SimulationResult holds one value per timestep for every series. Battery
// power is signed: negative charges, positive discharges.
type SimulationResult struct {
	Strategy  StrategyKind `json:"strategy"`
	DtHours   float64      `json:"dt_hours"`
	Solar     []float64    `json:"solar"`
	Grid      []float64    `json:"grid"`
	Battery   []float64    `json:"battery"`
	SOC       []float64    `json:"soc"`
	Curtailed []float64    `json:"curtailed"`
	Loss      []float64    `json:"loss"`

	Firm           *FirmDelivery      `json:"firm,omitempty"`
	RampViolations []RampViolation    `json:"ramp_violations,omitempty"`
	Diagnostics    map[string]float64 `json:"diagnostics,omitempty"`
}

// NewSimulationResult allocates every series with n timesteps.
func NewSimulationResult(kind StrategyKind, n int, dt float64) *SimulationResult {
	return &SimulationResult{
		Strategy:  kind,
		DtHours:   dt,
		Solar:     make([]float64, n),
		Grid:      make([]float64, n),
		Battery:   make([]float64, n),
		SOC:       make([]float64, n),
		Curtailed: make([]float64, n),
		Loss:      make([]float64, n),
	}
}

// Len returns the number of timesteps.
func (r *SimulationResult) Len() int { return len(r.Solar) }

// ChargeMW returns the power flowing into the battery at step i.
func (r *SimulationResult) ChargeMW(i int) float64 { return math.Max(0, -r.Battery[i]) }

// DischargeMW returns the power flowing out of the battery at step i.
func (r *SimulationResult) DischargeMW(i int) float64 { return math.Max(0, r.Battery[i]) }

// CheckFinite returns ErrNumericCorruption naming the first non-finite
// value found.
func (r *SimulationResult) CheckFinite() error {
	series := []struct {
		name string
		v    []float64
	}{
		{"solar", r.Solar},
		{"grid", r.Grid},
		{"battery", r.Battery},
		{"soc", r.SOC},
		{"curtailed", r.Curtailed},
		{"loss", r.Loss},
	}
	for _, s := range series {
		if len(s.v) != len(r.Solar) {
			return fmt.Errorf("%w: series %s has %d values, want %d", ErrNumericCorruption, s.name, len(s.v), len(r.Solar))
		}
		for i, v := range s.v {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s[%d] = %v", ErrNumericCorruption, s.name, i, v)
			}
		}
	}
	return nil
}

// FirmDelivery decomposes a trapezoid run. DirectSolar and SolarToBattery
// are solar-side flows whose sum never exceeds Solar at the same step.
type FirmDelivery struct {
	PreferredStartHour float64   `json:"preferred_start_hour"`
	ActualStartHours   []float64 `json:"actual_start_hours"`
	PlateauMW          []float64 `json:"plateau_mw"`
	PlateauHours       float64   `json:"plateau_hours"`
	RampHours          float64   `json:"ramp_hours"`
	Target             []float64 `json:"target"`
	DirectSolar        []float64 `json:"direct_solar"`
	SolarToBattery     []float64 `json:"solar_to_battery"`
	BatteryToGrid      []float64 `json:"battery_to_grid"`
}

// Shifted reports whether any day started away from the preferred hour.
func (f *FirmDelivery) Shifted() bool {
	for _, h := range f.ActualStartHours {
		if math.Abs(h-f.PreferredStartHour) > 1e-9 {
			return true
		}
	}
	return false
}

// RampViolation records a step whose ramp the battery could not buffer.
type RampViolation struct {
	Index           int     `json:"index"`
	RampMWPerHour   float64 `json:"ramp_mw_per_hour"`
	ExcessMWPerHour float64 `json:"excess_mw_per_hour"`
}

// BalanceViolation records a step where
// solar != grid + curtailed + charge - discharge.
type BalanceViolation struct {
	Index       int     `json:"index"`
	ResidualMW  float64 `json:"residual_mw"`
	SolarMW     float64 `json:"solar_mw"`
	GridMW      float64 `json:"grid_mw"`
	CurtailedMW float64 `json:"curtailed_mw"`
	ChargeMW    float64 `json:"charge_mw"`
	DischargeMW float64 `json:"discharge_mw"`
}

// ValidationResult is the verdict on one run.
type ValidationResult struct {
	Technology        Technology         `json:"technology"`
	Efficiency        float64            `json:"efficiency"`
	LossFraction      float64            `json:"loss_fraction"`
	Valid             bool               `json:"valid"`
	Diagnosis         string             `json:"diagnosis"`
	Suggestions       []string           `json:"suggestions,omitempty"`
	Metrics           map[string]float64 `json:"metrics"`
	Features          map[string]float64 `json:"features"`
	BalanceViolations []BalanceViolation `json:"balance_violations,omitempty"`
}

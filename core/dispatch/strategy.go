// Package dispatch turns a solar series into grid, battery and curtailment
// series according to one of a closed set of policies.
package dispatch

import (
	"fmt"

	"github.com/kilianp07/bessim/core/model"
)

// Calibration constants kept for output compatibility.
const (
	// CapTolerance is the relative overshoot allowed above a hard cap
	// before curtailment is recorded.
	CapTolerance = 0.02
	// SoftDischargeFraction caps soft discharge top-ups as a share of the
	// instantaneous discharge limit.
	SoftDischargeFraction = 0.30
	// FirmShortfallTolerance is the share of a day's firm target that may
	// go undelivered while the start hour still counts as feasible.
	FirmShortfallTolerance = 0.01
)

// Strategy is the closed set of dispatch policies. Only types in this
// package implement it; Run matches them exhaustively.
type Strategy interface {
	Kind() model.StrategyKind
	Validate() error
	isStrategy()
}

// CapShaving limits grid power to CapMW by charging the excess.
type CapShaving struct {
	CapMW         float64 `json:"cap_mw"`
	SoftDischarge bool    `json:"soft_discharge"`
}

// AllocatorKind selects how balanced discharge energy is spread over a block.
type AllocatorKind string

const (
	AllocatorWeighted AllocatorKind = "weighted"
	AllocatorLP       AllocatorKind = "lp"
)

// CapShavingBalanced adds planned discharge across low-solar blocks to the
// cap shaving rule.
type CapShavingBalanced struct {
	CapMW            float64       `json:"cap_mw"`
	LowSolarFraction float64       `json:"low_solar_fraction"`
	Allocator        AllocatorKind `json:"allocator"`
}

// FlatDay tracks FlatMW inside [StartHour, EndHour).
type FlatDay struct {
	FlatMW    float64 `json:"flat_mw"`
	StartHour float64 `json:"start_hour"`
	EndHour   float64 `json:"end_hour"`
	CapMW     float64 `json:"cap_mw"`
}

// NightShift moves daytime solar into a night window at a fixed rate.
type NightShift struct {
	ChargeStartHour    float64 `json:"charge_start_hour"`
	ChargeEndHour      float64 `json:"charge_end_hour"`
	DischargeStartHour float64 `json:"discharge_start_hour"`
	DischargeEndHour   float64 `json:"discharge_end_hour"`
	ChargeMW           float64 `json:"charge_mw"`
	DischargeMW        float64 `json:"discharge_mw"`
	CapMW              float64 `json:"cap_mw"`
}

// RampLimit bounds the grid ramp rate. RecoverySOC, when set, lets the
// battery drift toward that state of charge while the ramp allows it.
type RampLimit struct {
	RampMWPerHour float64 `json:"ramp_mw_per_hour"`
	RecoverySOC   float64 `json:"recovery_soc"`
}

// Trapezoid delivers a daily ramp-plateau-ramp profile whose plateau lasts
// the battery duration.
type Trapezoid struct {
	PreferredStartHour float64 `json:"preferred_start_hour"`
	RampHours          float64 `json:"ramp_hours"`
	ExportSurplus      bool    `json:"export_surplus"`
}

func (CapShaving) isStrategy()         {}
func (CapShavingBalanced) isStrategy() {}
func (FlatDay) isStrategy()            {}
func (NightShift) isStrategy()         {}
func (RampLimit) isStrategy()          {}
func (Trapezoid) isStrategy()          {}

// Kind reports the strategy variant recorded in results and run logs.
func (CapShaving) Kind() model.StrategyKind         { return model.StrategyCapShaving }
func (CapShavingBalanced) Kind() model.StrategyKind { return model.StrategyCapShavingBalanced }
func (FlatDay) Kind() model.StrategyKind            { return model.StrategyFlatDay }
func (NightShift) Kind() model.StrategyKind         { return model.StrategyNightShift }
func (RampLimit) Kind() model.StrategyKind          { return model.StrategyRampLimit }
func (Trapezoid) Kind() model.StrategyKind          { return model.StrategyTrapezoid }

// Validate requires a positive cap.
func (s CapShaving) Validate() error {
	return positive("cap_mw", s.CapMW)
}

// Validate checks the cap, the low solar fraction and the allocator name.
func (s CapShavingBalanced) Validate() error {
	if err := positive("cap_mw", s.CapMW); err != nil {
		return err
	}
	if s.LowSolarFraction < 0 || s.LowSolarFraction > 1 {
		return invalid("low_solar_fraction must be within [0,1], got %v", s.LowSolarFraction)
	}
	switch s.Allocator {
	case "", AllocatorWeighted, AllocatorLP:
		return nil
	default:
		return invalid("unknown allocator %q", s.Allocator)
	}
}

// Validate checks the flat target, the optional cap and the window.
func (s FlatDay) Validate() error {
	if err := positive("flat_mw", s.FlatMW); err != nil {
		return err
	}
	if s.CapMW < 0 {
		return invalid("cap_mw must not be negative, got %v", s.CapMW)
	}
	return window("flat day", s.StartHour, s.EndHour)
}

// Validate checks both windows and rejects negative powers.
func (s NightShift) Validate() error {
	if err := window("charge", s.ChargeStartHour, s.ChargeEndHour); err != nil {
		return err
	}
	if err := window("discharge", s.DischargeStartHour, s.DischargeEndHour); err != nil {
		return err
	}
	if s.ChargeMW < 0 || s.DischargeMW < 0 || s.CapMW < 0 {
		return invalid("night shift powers must not be negative")
	}
	return nil
}

// Validate requires a positive ramp and a recovery SOC within [0,1].
func (s RampLimit) Validate() error {
	if err := positive("ramp_mw_per_hour", s.RampMWPerHour); err != nil {
		return err
	}
	if s.RecoverySOC < 0 || s.RecoverySOC > 1 {
		return invalid("recovery_soc must be within [0,1], got %v", s.RecoverySOC)
	}
	return nil
}

// Validate checks the ramp length and the preferred start hour.
func (s Trapezoid) Validate() error {
	if s.RampHours < 0 {
		return invalid("ramp_hours must not be negative, got %v", s.RampHours)
	}
	if s.PreferredStartHour < 0 || s.PreferredStartHour >= 24 {
		return invalid("preferred_start_hour must be within [0,24), got %v", s.PreferredStartHour)
	}
	return nil
}

func positive(name string, v float64) error {
	if !(v > 0) {
		return invalid("%s must be positive, got %v", name, v)
	}
	return nil
}

func window(name string, start, end float64) error {
	if start < 0 || start >= 24 || end < 0 || end > 24 {
		return invalid("%s window [%v,%v) outside a day", name, start, end)
	}
	if start == end {
		return invalid("%s window is empty", name)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidConfiguration}, args...)...)
}

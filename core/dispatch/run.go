package dispatch

import (
	"fmt"
	"math"

	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/model"
)

// Run dispatches solar through b according to s. The battery is used from
// its current state; callers that need a clean run reset it first.
func Run(b *battery.Battery, s Strategy, solar []float64, dt float64) (*model.SimulationResult, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt=%v", model.ErrInvalidTimestep, dt)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil strategy", model.ErrUnsupportedStrategy)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	st := newStepper(b, s.Kind(), solar, dt)
	switch v := s.(type) {
	case CapShaving:
		runCapShaving(st, v)
	case CapShavingBalanced:
		runBalanced(st, v)
	case FlatDay:
		runFlatDay(st, v)
	case NightShift:
		runNightShift(st, v)
	case RampLimit:
		runRampLimit(st, v)
	case Trapezoid:
		runTrapezoid(st, v)
	default:
		return nil, fmt.Errorf("%w: %T", model.ErrUnsupportedStrategy, s)
	}
	return st.res, nil
}

// stepper records one timestep at a time into a SimulationResult.
type stepper struct {
	b   *battery.Battery
	res *model.SimulationResult
	dt  float64
}

func newStepper(b *battery.Battery, kind model.StrategyKind, solar []float64, dt float64) *stepper {
	res := model.NewSimulationResult(kind, len(solar), dt)
	copy(res.Solar, solar)
	res.Diagnostics = map[string]float64{}
	return &stepper{b: b, res: res, dt: dt}
}

func (s *stepper) len() int { return len(s.res.Solar) }

// hour returns the hour of day at the start of step i.
func (s *stepper) hour(i int) float64 {
	return math.Mod(float64(i)*s.dt, 24)
}

// apply steps the battery at i and returns the signed power actually used.
func (s *stepper) apply(i int, requestMW float64) float64 {
	r := s.b.Step(requestMW, s.dt)
	s.res.Battery[i] = r.ActualPowerMW
	s.res.Loss[i] = r.EnergyLossMWh
	s.res.SOC[i] = s.b.SOC()
	return r.ActualPowerMW
}

// settle writes grid and curtailment for step i from the battery power
// already applied. When capMW > 0, grid power above the tolerated band is
// curtailed back to capMW.
func (s *stepper) settle(i int, capMW float64) {
	grid := s.res.Solar[i] + s.res.Battery[i]
	if capMW > 0 && grid > capMW*(1+CapTolerance) {
		s.res.Curtailed[i] = grid - capMW
		grid = capMW
	}
	s.res.Grid[i] = grid
}

// InWindow reports whether hour h is inside [start, end), wrapping past
// midnight when start > end.
func InWindow(h, start, end float64) bool {
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}

// windowHours returns the length of [start, end) in hours.
func windowHours(start, end float64) float64 {
	if start < end {
		return end - start
	}
	return 24 - start + end
}

// capCharge returns the charging request that brings solar down to capMW.
func capCharge(solar, capMW float64) float64 {
	if solar > capMW {
		return -(solar - capMW)
	}
	return 0
}

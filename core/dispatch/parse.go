package dispatch

import (
	"fmt"

	"github.com/kilianp07/bessim/core/factory"
	"github.com/kilianp07/bessim/core/model"
)

// Defaults returns the strategy for kind populated with its default
// parameters.
func Defaults(kind model.StrategyKind) (Strategy, error) {
	switch kind {
	case model.StrategyCapShaving:
		return CapShaving{}, nil
	case model.StrategyCapShavingBalanced:
		return CapShavingBalanced{LowSolarFraction: 0.5, Allocator: AllocatorWeighted}, nil
	case model.StrategyFlatDay:
		return FlatDay{StartHour: 8, EndHour: 18}, nil
	case model.StrategyNightShift:
		return NightShift{ChargeStartHour: 9, ChargeEndHour: 16, DischargeStartHour: 18, DischargeEndHour: 23}, nil
	case model.StrategyRampLimit:
		return RampLimit{}, nil
	case model.StrategyTrapezoid, "trapezoid":
		return Trapezoid{PreferredStartHour: 8, RampHours: 1}, nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedStrategy, kind)
}

// Parse builds a strategy from its name and raw parameters, validating the
// result. Unknown names fail with model.ErrUnsupportedStrategy.
func Parse(name string, params map[string]any) (Strategy, error) {
	s, err := Defaults(model.StrategyKind(name))
	if err != nil {
		return nil, err
	}
	switch v := s.(type) {
	case CapShaving:
		err = factory.Decode(params, &v)
		s = v
	case CapShavingBalanced:
		err = factory.Decode(params, &v)
		s = v
	case FlatDay:
		err = factory.Decode(params, &v)
		s = v
	case NightShift:
		err = factory.Decode(params, &v)
		s = v
	case RampLimit:
		err = factory.Decode(params, &v)
		s = v
	case Trapezoid:
		err = factory.Decode(params, &v)
		s = v
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s params: %w", name, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

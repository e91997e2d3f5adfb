package model

// StrategyKind names a dispatch policy.
type StrategyKind string

const (
	StrategyCapShaving         StrategyKind = "cap_shaving"
	StrategyCapShavingBalanced StrategyKind = "cap_shaving_balanced"
	StrategyFlatDay            StrategyKind = "flat_day"
	StrategyNightShift         StrategyKind = "night_shift"
	StrategyRampLimit          StrategyKind = "ramp_limit"
	StrategyTrapezoid          StrategyKind = "energy_constrained_firm"
)

// StrategyKinds lists every kind in a stable order. Feature vectors rely on
// this order for their one-hot columns.
var StrategyKinds = []StrategyKind{
	StrategyCapShaving,
	StrategyCapShavingBalanced,
	StrategyFlatDay,
	StrategyNightShift,
	StrategyRampLimit,
	StrategyTrapezoid,
}

// String returns the kind name.
func (k StrategyKind) String() string { return string(k) }

// IsCapBased reports whether the policy enforces a hard grid ceiling.
func (k StrategyKind) IsCapBased() bool {
	return k == StrategyCapShaving || k == StrategyCapShavingBalanced
}

// IsFirm reports whether the policy commits to a firm delivery shape.
func (k StrategyKind) IsFirm() bool {
	return k == StrategyTrapezoid || k == StrategyFlatDay || k == StrategyNightShift
}

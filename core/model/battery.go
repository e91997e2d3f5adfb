package model

import (
	"fmt"
	"math"
)

// BatteryConfiguration describes one battery allocation. It is immutable
// once a battery has been built from it.
type BatteryConfiguration struct {
	PowerMW       float64    `json:"power_mw"`
	DurationHours float64    `json:"duration_hours"`
	Technology    Technology `json:"technology"`
	Topology      Topology   `json:"topology"`
}

// Validate checks that power and duration are strictly positive and finite.
func (c BatteryConfiguration) Validate() error {
	if !(c.PowerMW > 0) || math.IsInf(c.PowerMW, 0) {
		return fmt.Errorf("%w: power_mw must be positive, got %v", ErrInvalidConfiguration, c.PowerMW)
	}
	if !(c.DurationHours > 0) || math.IsInf(c.DurationHours, 0) {
		return fmt.Errorf("%w: duration_hours must be positive, got %v", ErrInvalidConfiguration, c.DurationHours)
	}
	return nil
}

// Normalized returns a copy with technology and topology mapped onto known
// values.
func (c BatteryConfiguration) Normalized() BatteryConfiguration {
	c.Technology = ParseTechnology(string(c.Technology))
	c.Topology = ParseTopology(string(c.Topology))
	return c
}

// CapacityMWh returns nameplate energy capacity.
func (c BatteryConfiguration) CapacityMWh() float64 {
	return c.PowerMW * c.DurationHours
}

// PowerMWEff returns nameplate power after the topology derating.
func (c BatteryConfiguration) PowerMWEff() float64 {
	return c.PowerMW * (1 - c.Topology.Penalty())
}

// UsableCapacityMWh returns the energy between the technology SOC bounds.
func (c BatteryConfiguration) UsableCapacityMWh() float64 {
	p := c.Technology.Parameters()
	return (p.SOCMax - p.SOCMin) * c.CapacityMWh()
}

// String returns a compact label such as "2MW/4h modern_lfp parallel_ac".
func (c BatteryConfiguration) String() string {
	n := c.Normalized()
	return fmt.Sprintf("%gMW/%gh %s %s", n.PowerMW, n.DurationHours, n.Technology, n.Topology)
}

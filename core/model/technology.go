package model

import "math"

// Technology identifies a battery cell chemistry / product tier.
type Technology string

const (
	TechnologyStandard  Technology = "standard"
	TechnologyModernLFP Technology = "modern_lfp"
	TechnologyPremium   Technology = "premium"
)

// Topology identifies how the battery is coupled to the solar plant.
type Topology string

const (
	TopologyParallelAC Topology = "parallel_ac"
	TopologySeriesDC   Topology = "series_dc"
	TopologyHybrid     Topology = "hybrid"
)

// Technologies lists the known technologies from lowest to highest tier.
var Technologies = []Technology{TechnologyStandard, TechnologyModernLFP, TechnologyPremium}

// TechnologyParameters holds the electrical envelope of a technology.
// SOC bounds are fractions of nameplate capacity, CRateMax is a multiple of
// capacity per hour and the efficiencies are one-way.
type TechnologyParameters struct {
	SOCMin       float64 `json:"soc_min"`
	SOCMax       float64 `json:"soc_max"`
	CRateMax     float64 `json:"c_rate_max"`
	EtaCharge    float64 `json:"eta_charge"`
	EtaDischarge float64 `json:"eta_discharge"`
}

// RoundTrip returns the fraction of energy recovered after a full
// charge-then-discharge cycle.
func (p TechnologyParameters) RoundTrip() float64 {
	return p.EtaCharge * p.EtaDischarge
}

func symmetric(roundTrip float64) float64 { return math.Sqrt(roundTrip) }

var technologyTable = map[Technology]TechnologyParameters{
	TechnologyStandard: {
		SOCMin: 0.10, SOCMax: 0.90, CRateMax: 0.5,
		EtaCharge: symmetric(0.90), EtaDischarge: symmetric(0.90),
	},
	TechnologyModernLFP: {
		SOCMin: 0.10, SOCMax: 0.95, CRateMax: 1.0,
		EtaCharge: symmetric(0.93), EtaDischarge: symmetric(0.93),
	},
	TechnologyPremium: {
		SOCMin: 0.05, SOCMax: 0.95, CRateMax: 2.0,
		EtaCharge: symmetric(0.95), EtaDischarge: symmetric(0.95),
	},
}

var topologyPenalty = map[Topology]float64{
	TopologyParallelAC: 0,
	TopologyHybrid:     0.01,
	TopologySeriesDC:   0.02,
}

// ParseTechnology maps a name onto a known technology. Unknown names fall
// back to modern_lfp.
func ParseTechnology(name string) Technology {
	t := Technology(name)
	if _, ok := technologyTable[t]; ok {
		return t
	}
	return TechnologyModernLFP
}

// ParseTopology maps a name onto a known topology. Unknown names fall back
// to parallel_ac.
func ParseTopology(name string) Topology {
	t := Topology(name)
	if _, ok := topologyPenalty[t]; ok {
		return t
	}
	return TopologyParallelAC
}

// Parameters returns the parameter table entry for t, using the modern_lfp
// entry for unknown values.
func (t Technology) Parameters() TechnologyParameters {
	return technologyTable[ParseTechnology(string(t))]
}

// Next returns the technology one tier above t and false when t is already
// the top tier.
func (t Technology) Next() (Technology, bool) {
	t = ParseTechnology(string(t))
	for i, c := range Technologies {
		if c == t && i+1 < len(Technologies) {
			return Technologies[i+1], true
		}
	}
	return t, false
}

// Penalty returns the fractional power derating applied by the topology.
func (t Topology) Penalty() float64 {
	return topologyPenalty[ParseTopology(string(t))]
}

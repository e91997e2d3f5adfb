// Package battery models the state of one battery allocation during a
// simulation run. A Battery is owned by a single run; the pure NextState
// helpers only read the immutable configuration and may be shared.
package battery

import (
	"math"

	"github.com/kilianp07/bessim/core/model"
)

// CycleNoiseThresholdMWh is the per-step throughput below which energy is
// left out of cycle accounting.
const CycleNoiseThresholdMWh = 0.01

// State is the mutable part of a battery.
type State struct {
	SOC                      float64 `json:"soc"`
	EnergyStoredMWh          float64 `json:"energy_stored_mwh"`
	TotalEnergyChargedMWh    float64 `json:"total_energy_charged_mwh"`
	TotalEnergyDischargedMWh float64 `json:"total_energy_discharged_mwh"`
	TotalEnergyLossesMWh     float64 `json:"total_energy_losses_mwh"`
	Cycles                   float64 `json:"cycles"`
}

// StepResult is what a single Step actually did.
type StepResult struct {
	ActualPowerMW float64
	EnergyLossMWh float64
}

// Battery couples a configuration with its running state.
type Battery struct {
	cfg    model.BatteryConfiguration
	params model.TechnologyParameters

	capacityMWh float64
	usableMWh   float64
	powerEff    float64

	state State
	// throughput counted towards cycles, noise excluded
	cycleChargedMWh    float64
	cycleDischargedMWh float64
}

// New builds a battery at its minimum state of charge.
func New(cfg model.BatteryConfiguration) (*Battery, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalized()
	b := &Battery{
		cfg:         cfg,
		params:      cfg.Technology.Parameters(),
		capacityMWh: cfg.CapacityMWh(),
		usableMWh:   cfg.UsableCapacityMWh(),
		powerEff:    cfg.PowerMWEff(),
	}
	b.Reset()
	return b, nil
}

// Config returns the normalized configuration.
func (b *Battery) Config() model.BatteryConfiguration { return b.cfg }

// Params returns the technology parameters in use.
func (b *Battery) Params() model.TechnologyParameters { return b.params }

// CapacityMWh returns nameplate energy capacity.
func (b *Battery) CapacityMWh() float64 { return b.capacityMWh }

// UsableCapacityMWh returns the energy between SOCMin and SOCMax.
func (b *Battery) UsableCapacityMWh() float64 { return b.usableMWh }

// PowerMWEff returns derated power.
func (b *Battery) PowerMWEff() float64 { return b.powerEff }

// State returns a snapshot of the running state.
func (b *Battery) State() State { return b.state }

// SOC returns the current state of charge.
func (b *Battery) SOC() float64 { return b.state.SOC }

// Reset restores the initial state and clears every counter.
func (b *Battery) Reset() {
	b.state = State{
		SOC:             b.params.SOCMin,
		EnergyStoredMWh: b.params.SOCMin * b.capacityMWh,
	}
	b.cycleChargedMWh = 0
	b.cycleDischargedMWh = 0
}

// ChargeLimit returns the maximum charging power for a step of dt hours.
func (b *Battery) ChargeLimit(dt float64) float64 {
	return b.chargeLimitAt(b.state.SOC, dt)
}

// DischargeLimit returns the maximum discharging power for a step of dt hours.
func (b *Battery) DischargeLimit(dt float64) float64 {
	return b.dischargeLimitAt(b.state.SOC, dt)
}

// DeliverableEnergyMWh returns the grid-side energy the battery could
// release from its current state down to SOCMin.
func (b *Battery) DeliverableEnergyMWh() float64 {
	return math.Max(0, b.state.SOC-b.params.SOCMin) * b.capacityMWh * b.params.EtaDischarge
}

// HeadroomMWh returns the stored energy still needed to reach SOCMax.
func (b *Battery) HeadroomMWh() float64 {
	return math.Max(0, b.params.SOCMax-b.state.SOC) * b.capacityMWh
}

// Step applies a power request for dt hours. Negative requests charge,
// positive requests discharge. Requests are clipped to the limits, never
// rejected.
func (b *Battery) Step(requestedMW, dt float64) StepResult {
	tr := b.NextState(b.state.SOC, requestedMW, dt)
	if tr.ActualPowerMW == 0 {
		return StepResult{}
	}
	p := math.Abs(tr.ActualPowerMW)
	throughput := p * dt
	if tr.ActualPowerMW < 0 {
		b.state.EnergyStoredMWh += throughput * b.params.EtaCharge
		b.state.TotalEnergyChargedMWh += throughput
		if throughput >= CycleNoiseThresholdMWh {
			b.cycleChargedMWh += throughput
		}
	} else {
		b.state.EnergyStoredMWh -= throughput / b.params.EtaDischarge
		b.state.TotalEnergyDischargedMWh += throughput
		if throughput >= CycleNoiseThresholdMWh {
			b.cycleDischargedMWh += throughput
		}
	}
	b.state.TotalEnergyLossesMWh += tr.EnergyLossMWh
	b.state.SOC = b.clampSOC(b.state.EnergyStoredMWh / b.capacityMWh)
	b.state.EnergyStoredMWh = b.clampEnergy(b.state.EnergyStoredMWh)
	b.state.Cycles = b.CyclesEquivalent()
	return StepResult{ActualPowerMW: tr.ActualPowerMW, EnergyLossMWh: tr.EnergyLossMWh}
}

// CyclesEquivalent returns equivalent full cycles from counted throughput.
func (b *Battery) CyclesEquivalent() float64 {
	if b.usableMWh <= 0 {
		return 0
	}
	return (b.cycleChargedMWh + b.cycleDischargedMWh) / (2 * b.usableMWh)
}

func (b *Battery) chargeLimitAt(soc, dt float64) float64 {
	if dt <= 0 || soc >= b.params.SOCMax {
		return 0
	}
	bySOC := (b.params.SOCMax - soc) * b.capacityMWh / dt
	return math.Max(0, math.Min(b.params.CRateMax*b.capacityMWh, math.Min(bySOC, b.powerEff)))
}

func (b *Battery) dischargeLimitAt(soc, dt float64) float64 {
	if dt <= 0 || soc <= b.params.SOCMin {
		return 0
	}
	bySOC := (soc - b.params.SOCMin) * b.capacityMWh / dt
	return math.Max(0, math.Min(b.params.CRateMax*b.capacityMWh, math.Min(bySOC, b.powerEff)))
}

func (b *Battery) clampSOC(soc float64) float64 {
	if soc < b.params.SOCMin {
		return b.params.SOCMin
	}
	if soc > b.params.SOCMax {
		return b.params.SOCMax
	}
	return soc
}

func (b *Battery) clampEnergy(e float64) float64 {
	lo := b.params.SOCMin * b.capacityMWh
	hi := b.params.SOCMax * b.capacityMWh
	return math.Min(hi, math.Max(lo, e))
}

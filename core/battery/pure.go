package battery

import (
	"fmt"
	"math"

	"github.com/kilianp07/bessim/core/model"
)

// Transition is the outcome of a pure state evaluation.
type Transition struct {
	SOC           float64
	ActualPowerMW float64
	EnergyLossMWh float64
}

// NextState evaluates what Step would do from soc without touching the
// battery's own state.
func (b *Battery) NextState(soc, requestedMW, dt float64) Transition {
	soc = b.clampSOC(soc)
	switch {
	case requestedMW < 0:
		p := math.Min(-requestedMW, b.chargeLimitAt(soc, dt))
		if p <= 0 {
			return Transition{SOC: soc}
		}
		stored := soc*b.capacityMWh + p*dt*b.params.EtaCharge
		return Transition{
			SOC:           b.clampSOC(stored / b.capacityMWh),
			ActualPowerMW: -p,
			EnergyLossMWh: p * dt * (1 - b.params.EtaCharge),
		}
	case requestedMW > 0:
		// Draining to SOCMin releases at most the stored energy above it
		// times the discharge efficiency.
		deliverable := (soc - b.params.SOCMin) * b.capacityMWh * b.params.EtaDischarge / dt
		p := math.Min(requestedMW, math.Min(b.dischargeLimitAt(soc, dt), deliverable))
		if p <= 0 {
			return Transition{SOC: soc}
		}
		stored := soc*b.capacityMWh - p*dt/b.params.EtaDischarge
		return Transition{
			SOC:           b.clampSOC(stored / b.capacityMWh),
			ActualPowerMW: p,
			EnergyLossMWh: p * dt * (1/b.params.EtaDischarge - 1),
		}
	default:
		return Transition{SOC: soc}
	}
}

// NextStateBatch evaluates NextState element-wise with a shared dt. A
// single-element slice is broadcast against the other one.
func (b *Battery) NextStateBatch(socs, requestsMW []float64, dt float64) ([]Transition, error) {
	n := len(socs)
	if len(requestsMW) > n {
		n = len(requestsMW)
	}
	if (len(socs) != n && len(socs) != 1) || (len(requestsMW) != n && len(requestsMW) != 1) {
		return nil, fmt.Errorf("%w: %d states, %d requests", model.ErrBatchLength, len(socs), len(requestsMW))
	}
	out := make([]Transition, n)
	for i := range out {
		out[i] = b.NextState(pick(socs, i), pick(requestsMW, i), dt)
	}
	return out, nil
}

func pick(v []float64, i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}

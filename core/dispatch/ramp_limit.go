package dispatch

import (
	"math"

	"github.com/kilianp07/bessim/core/model"
)

func runRampLimit(st *stepper, s RampLimit) {
	if st.len() == 0 {
		return
	}
	band := s.RampMWPerHour * st.dt
	st.res.SOC[0] = st.b.SOC()
	st.settle(0, 0)
	prev := st.res.Grid[0]
	for i := 1; i < st.len(); i++ {
		solar := st.res.Solar[i]
		lo := math.Max(0, prev-band)
		hi := prev + band
		var req float64
		switch {
		case solar > hi:
			req = -(solar - hi)
		case solar < lo:
			req = lo - solar
		case s.RecoverySOC > 0:
			req = st.recoveryRequest(s.RecoverySOC, solar-lo, hi-solar)
		}
		st.apply(i, req)
		st.settle(i, 0)
		grid := st.res.Grid[i]
		ramp := (grid - prev) / st.dt
		if excess := math.Abs(ramp) - s.RampMWPerHour; excess > 1e-9*math.Max(1, s.RampMWPerHour) {
			st.res.RampViolations = append(st.res.RampViolations, model.RampViolation{
				Index:           i,
				RampMWPerHour:   ramp,
				ExcessMWPerHour: excess,
			})
		}
		prev = grid
	}
	st.res.Diagnostics["ramp_violations"] = float64(len(st.res.RampViolations))
}

// recoveryRequest nudges SOC toward target using at most the ramp slack
// available below (down) or above (up) the current solar value.
func (st *stepper) recoveryRequest(target, down, up float64) float64 {
	p := st.b.Params()
	capacity := st.b.CapacityMWh()
	soc := st.b.SOC()
	switch {
	case soc < target:
		need := (target - soc) * capacity / p.EtaCharge / st.dt
		return -math.Min(down, need)
	case soc > target:
		need := (soc - target) * capacity * p.EtaDischarge / st.dt
		return math.Min(up, need)
	}
	return 0
}

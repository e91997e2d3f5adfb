package dispatch

import "math"

func runBalanced(st *stepper, s CapShavingBalanced) {
	threshold := s.LowSolarFraction * s.CapMW
	low := func(i int) bool { return st.res.Solar[i] < threshold }
	var plan []float64
	planStart := 0
	for i := 0; i < st.len(); i++ {
		solar := st.res.Solar[i]
		req := capCharge(solar, s.CapMW)
		if low(i) {
			if i == 0 || !low(i-1) {
				end := i
				for end < st.len() && low(end) {
					end++
				}
				plan = st.planBlock(s, i, end)
				planStart = i
			}
			req = plan[i-planStart] / st.dt
		}
		st.apply(i, req)
		st.settle(i, s.CapMW)
	}
}

// planBlock spreads the energy the battery can currently deliver over the
// low-solar steps [from, to). It returns grid-side MWh per step.
func (st *stepper) planBlock(s CapShavingBalanced, from, to int) []float64 {
	n := to - from
	weights := make([]float64, n)
	caps := make([]float64, n)
	var capSum float64
	for k := 0; k < n; k++ {
		gap := s.CapMW - st.res.Solar[from+k]
		weights[k] = gap
		caps[k] = math.Max(0, math.Min(gap, st.b.PowerMWEff())) * st.dt
		capSum += caps[k]
	}
	target := math.Min(st.b.DeliverableEnergyMWh(), capSum)
	if target <= 0 {
		return make([]float64, n)
	}
	st.res.Diagnostics["planned_blocks"]++
	st.res.Diagnostics["planned_energy_mwh"] += target
	if s.Allocator == AllocatorLP {
		out, err := allocateLP(weights, caps, target)
		if err == nil {
			return out
		}
		st.res.Diagnostics["lp_fallbacks"]++
	}
	return allocateWeighted(weights, caps, target)
}

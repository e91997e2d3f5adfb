package dispatch

import "math"

func runCapShaving(st *stepper, s CapShaving) {
	for i := 0; i < st.len(); i++ {
		solar := st.res.Solar[i]
		req := capCharge(solar, s.CapMW)
		if s.SoftDischarge && solar < 0.5*s.CapMW {
			req = math.Min(s.CapMW-solar, SoftDischargeFraction*st.b.DischargeLimit(st.dt))
		}
		st.apply(i, req)
		st.settle(i, s.CapMW)
	}
}

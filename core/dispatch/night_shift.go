package dispatch

import "math"

func runNightShift(st *stepper, s NightShift) {
	var rate float64
	inDischarge := func(i int) bool {
		return InWindow(st.hour(i), s.DischargeStartHour, s.DischargeEndHour)
	}
	for i := 0; i < st.len(); i++ {
		solar := st.res.Solar[i]
		switch {
		case inDischarge(i):
			if i == 0 || !inDischarge(i-1) {
				rate = s.DischargeMW
				if rate == 0 {
					rate = st.b.DeliverableEnergyMWh() / windowHours(s.DischargeStartHour, s.DischargeEndHour)
				}
				rate = math.Min(rate, st.b.PowerMWEff())
				st.res.Diagnostics["discharge_windows"]++
			}
			st.apply(i, rate)
		case InWindow(st.hour(i), s.ChargeStartHour, s.ChargeEndHour):
			p := solar
			if s.ChargeMW > 0 {
				p = math.Min(p, s.ChargeMW)
			}
			st.apply(i, -p)
		default:
			st.res.SOC[i] = st.b.SOC()
		}
		st.settle(i, s.CapMW)
	}
}

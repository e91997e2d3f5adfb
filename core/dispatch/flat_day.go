package dispatch

// target is the in-window grid level. A hard cap below FlatMW wins.
func (s FlatDay) target() float64 {
	if s.CapMW > 0 && s.CapMW < s.FlatMW {
		return s.CapMW
	}
	return s.FlatMW
}

func runFlatDay(st *stepper, s FlatDay) {
	target := s.target()
	for i := 0; i < st.len(); i++ {
		if !InWindow(st.hour(i), s.StartHour, s.EndHour) {
			st.res.SOC[i] = st.b.SOC()
			st.settle(i, s.CapMW)
			continue
		}
		// surplus charges, deficit discharges
		st.apply(i, target-st.res.Solar[i])
		st.settle(i, target)
	}
}

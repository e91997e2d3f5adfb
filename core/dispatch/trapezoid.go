package dispatch

import (
	"math"

	"github.com/kilianp07/bessim/core/model"
)

// trapezoidShape is one day's delivery profile: a linear ramp of Ramp
// hours up to PlateauMW, held for Plateau hours, then ramped back down.
type trapezoidShape struct {
	Start     float64
	Ramp      float64
	Plateau   float64
	PlateauMW float64
}

func (t trapezoidShape) span() float64 { return 2*t.Ramp + t.Plateau }

// at returns the target power at hour u of the day.
func (t trapezoidShape) at(u float64) float64 {
	x := u - t.Start
	switch {
	case x < 0 || x >= t.span():
		return 0
	case x < t.Ramp:
		return t.PlateauMW * x / t.Ramp
	case x < t.Ramp+t.Plateau:
		return t.PlateauMW
	default:
		return t.PlateauMW * (t.span() - x) / t.Ramp
	}
}

// energy returns the target energy of the shape over a full day.
func (t trapezoidShape) energy() float64 {
	return t.PlateauMW * (t.Plateau + t.Ramp)
}

func runTrapezoid(st *stepper, s Trapezoid) {
	n := st.len()
	firm := &model.FirmDelivery{
		PreferredStartHour: s.PreferredStartHour,
		Target:             make([]float64, n),
		DirectSolar:        make([]float64, n),
		SolarToBattery:     make([]float64, n),
		BatteryToGrid:      make([]float64, n),
	}
	st.res.Firm = firm

	plateau := math.Min(st.b.Config().DurationHours, 24)
	ramp := math.Min(s.RampHours, (24-plateau)/2)
	firm.PlateauHours = plateau
	firm.RampHours = ramp

	for from := 0; from < n; {
		to := st.dayEnd(from)
		shape := trapezoidShape{Ramp: ramp, Plateau: plateau}
		var solarMWh float64
		for i := from; i < to; i++ {
			solarMWh += st.res.Solar[i] * st.dt
		}
		if plateau+ramp > 0 {
			shape.PlateauMW = math.Min(solarMWh*st.b.Params().RoundTrip()/(plateau+ramp), st.b.PowerMWEff())
		}
		start, shortfall := st.chooseStart(shape, s, from, to)
		shape.Start = start
		firm.ActualStartHours = append(firm.ActualStartHours, start)
		firm.PlateauMW = append(firm.PlateauMW, shape.PlateauMW)
		if math.Abs(start-s.PreferredStartHour) > 1e-9 {
			st.res.Diagnostics["firm_shifted_days"]++
		}
		st.res.Diagnostics["firm_planned_shortfall_mwh"] += shortfall
		st.deliverDay(shape, s, from, to)
		from = to
	}
	st.res.Diagnostics["firm_days"] = float64(len(firm.ActualStartHours))
}

// dayEnd returns the first step index after the day containing step from.
func (st *stepper) dayEnd(from int) int {
	day := st.day(from)
	to := from + 1
	for to < st.len() && st.day(to) == day {
		to++
	}
	return to
}

func (st *stepper) day(i int) float64 {
	return math.Floor(float64(i)*st.dt/24 + 1e-9)
}

// dayOffset returns the midpoint of step i in hours since the start of
// its day.
func (st *stepper) dayOffset(i, from int) float64 {
	return (float64(i-from) + 0.5) * st.dt
}

// flows splits solar against a target into direct delivery, the deficit
// the battery should cover and the surplus it may absorb.
func flows(solar, target float64) (direct, deficit, surplus float64) {
	direct = math.Min(solar, target)
	return direct, target - direct, solar - direct
}

// candidateStarts lists the start hours whose profile fits inside the day.
func (st *stepper) candidateStarts(shape trapezoidShape, from, to int) []float64 {
	dayHours := float64(to-from) * st.dt
	latest := dayHours - shape.span()
	if latest < 0 {
		return []float64{0}
	}
	var out []float64
	for k := 0; float64(k)*st.dt <= latest+1e-9; k++ {
		out = append(out, float64(k)*st.dt)
	}
	return out
}

// chooseStart evaluates every candidate start in lockstep from the current
// state of charge and returns the chosen start with its planned shortfall.
// The preferred start wins when feasible, then the earliest feasible one,
// then the one with the smallest shortfall, earliest on ties.
func (st *stepper) chooseStart(shape trapezoidShape, s Trapezoid, from, to int) (float64, float64) {
	starts := st.candidateStarts(shape, from, to)
	preferred := nearest(starts, s.PreferredStartHour)
	if shape.PlateauMW <= 0 {
		return starts[preferred], 0
	}
	socs := make([]float64, len(starts))
	for c := range socs {
		socs[c] = st.b.SOC()
	}
	reqs := make([]float64, len(starts))
	direct := make([]float64, len(starts))
	targets := make([]float64, len(starts))
	shortfall := make([]float64, len(starts))
	for i := from; i < to; i++ {
		u := st.dayOffset(i, from)
		for c, start := range starts {
			t := shape
			t.Start = start
			targets[c] = t.at(u)
			d, deficit, surplus := flows(st.res.Solar[i], targets[c])
			direct[c] = d
			reqs[c] = deficit
			if deficit == 0 {
				reqs[c] = -surplus
			}
		}
		next, err := st.b.NextStateBatch(socs, reqs, st.dt)
		if err != nil {
			return starts[preferred], 0
		}
		for c, tr := range next {
			socs[c] = tr.SOC
			delivered := direct[c] + math.Max(0, tr.ActualPowerMW)
			shortfall[c] += math.Max(0, targets[c]-delivered) * st.dt
		}
	}
	limit := FirmShortfallTolerance * shape.energy()
	if shortfall[preferred] <= limit {
		return starts[preferred], shortfall[preferred]
	}
	best := 0
	for c := range starts {
		if shortfall[c] <= limit {
			return starts[c], shortfall[c]
		}
		if shortfall[c] < shortfall[best] {
			best = c
		}
	}
	return starts[best], shortfall[best]
}

func (st *stepper) deliverDay(shape trapezoidShape, s Trapezoid, from, to int) {
	firm := st.res.Firm
	for i := from; i < to; i++ {
		solar := st.res.Solar[i]
		target := shape.at(st.dayOffset(i, from))
		direct, deficit, surplus := flows(solar, target)
		req := deficit
		if deficit == 0 {
			req = -surplus
		}
		p := st.apply(i, req)
		charged := math.Max(0, -p)
		leftover := surplus - charged
		if s.ExportSurplus {
			direct += leftover
		} else {
			st.res.Curtailed[i] = leftover
		}
		firm.Target[i] = target
		firm.DirectSolar[i] = direct
		firm.SolarToBattery[i] = charged
		firm.BatteryToGrid[i] = math.Max(0, p)
		st.res.Grid[i] = direct + firm.BatteryToGrid[i]
	}
}

func nearest(values []float64, v float64) int {
	best := 0
	for i := range values {
		if math.Abs(values[i]-v) < math.Abs(values[best]-v) {
			best = i
		}
	}
	return best
}

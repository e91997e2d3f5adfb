package dispatch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/model"
)

func newBattery(t *testing.T, power, duration float64) *battery.Battery {
	t.Helper()
	b, err := battery.New(model.BatteryConfiguration{
		PowerMW:       power,
		DurationHours: duration,
		Technology:    model.TechnologyModernLFP,
		Topology:      model.TopologyParallelAC,
	})
	require.NoError(t, err)
	return b
}

// bellDays returns days of hourly solar rising from 06:00 to a noon peak
// and back to zero at 18:00.
func bellDays(days int, peak float64) []float64 {
	out := make([]float64, 24*days)
	for i := range out {
		h := float64(i%24) + 0.5
		if h > 6 && h < 18 {
			out[i] = peak * math.Sin(math.Pi*(h-6)/12)
		}
	}
	return out
}

func assertInvariants(t *testing.T, b *battery.Battery, res *model.SimulationResult) {
	t.Helper()
	p := b.Params()
	for i := range res.Solar {
		charge := math.Max(0, -res.Battery[i])
		discharge := math.Max(0, res.Battery[i])
		residual := res.Solar[i] - (res.Grid[i] + res.Curtailed[i] + charge - discharge)
		if math.Abs(residual) > 1e-6 {
			t.Fatalf("step %d: energy balance off by %v", i, residual)
		}
		if res.SOC[i] < p.SOCMin-1e-12 || res.SOC[i] > p.SOCMax+1e-12 {
			t.Fatalf("step %d: soc %v outside [%v,%v]", i, res.SOC[i], p.SOCMin, p.SOCMax)
		}
		if res.Curtailed[i] < -1e-12 {
			t.Fatalf("step %d: negative curtailment %v", i, res.Curtailed[i])
		}
	}
}

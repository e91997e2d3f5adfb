package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatSolar(hours int, mw float64) []float64 {
	out := make([]float64, hours)
	for i := range out {
		out[i] = mw
	}
	return out
}

func TestTrapezoid_KeepsFeasiblePreference(t *testing.T) {
	b := newBattery(t, 1, 4)
	res, err := Run(b, Trapezoid{PreferredStartHour: 12, RampHours: 1}, flatSolar(24, 0.5), 1)
	require.NoError(t, err)
	assertInvariants(t, b, res)

	firm := res.Firm
	require.NotNil(t, firm)
	require.Len(t, firm.ActualStartHours, 1)
	assert.Equal(t, 12.0, firm.ActualStartHours[0])
	assert.False(t, firm.Shifted())
	// plateau height is capped at the derated power
	assert.InDelta(t, 1.0, firm.PlateauMW[0], 1e-12)
	assert.InDelta(t, 1.0, firm.Target[14], 1e-12)
	assert.InDelta(t, 1.0, res.Grid[14], 1e-9)
}

func TestTrapezoid_ShiftsInfeasiblePreference(t *testing.T) {
	b := newBattery(t, 1, 4)
	res, err := Run(b, Trapezoid{PreferredStartHour: 0, RampHours: 1}, flatSolar(24, 0.5), 1)
	require.NoError(t, err)
	assertInvariants(t, b, res)

	firm := res.Firm
	require.Len(t, firm.ActualStartHours, 1)
	start := firm.ActualStartHours[0]
	assert.True(t, firm.Shifted())
	// the battery needs several hours of charging before a 4h plateau
	assert.Greater(t, start, 3.0)
	assert.LessOrEqual(t, start, 6.0)
	assert.Equal(t, 1.0, res.Diagnostics["firm_shifted_days"])
}

func TestTrapezoid_FlowDecomposition(t *testing.T) {
	for _, export := range []bool{false, true} {
		b := newBattery(t, 1, 4)
		solar := bellDays(2, 2)
		res, err := Run(b, Trapezoid{PreferredStartHour: 14, RampHours: 1, ExportSurplus: export}, solar, 1)
		require.NoError(t, err)
		assertInvariants(t, b, res)
		firm := res.Firm
		require.Len(t, firm.ActualStartHours, 2)
		for i := range solar {
			if firm.DirectSolar[i]+firm.SolarToBattery[i] > solar[i]+1e-9 {
				t.Fatalf("step %d: sub-flows exceed solar", i)
			}
			assert.InDelta(t, res.Grid[i], firm.DirectSolar[i]+firm.BatteryToGrid[i], 1e-9)
			if export {
				assert.Zero(t, res.Curtailed[i])
			}
		}
	}
}

func TestTrapezoid_NoSolar(t *testing.T) {
	b := newBattery(t, 1, 4)
	res, err := Run(b, Trapezoid{PreferredStartHour: 9, RampHours: 1}, make([]float64, 48), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 9}, res.Firm.ActualStartHours)
	assert.Equal(t, []float64{0, 0}, res.Firm.PlateauMW)
	for i := range res.Grid {
		assert.Zero(t, res.Grid[i])
	}
}

func TestTrapezoidShape(t *testing.T) {
	s := trapezoidShape{Start: 2, Ramp: 1, Plateau: 4, PlateauMW: 2}
	assert.Equal(t, 0.0, s.at(1.5))
	assert.Equal(t, 1.0, s.at(2.5))
	assert.Equal(t, 2.0, s.at(4))
	assert.Equal(t, 1.0, s.at(7.5))
	assert.Equal(t, 0.0, s.at(8))
	assert.Equal(t, 10.0, s.energy())
}

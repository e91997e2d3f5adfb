package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNightShift_FixedTransferRate(t *testing.T) {
	solar := bellDays(1, 2)
	s := NightShift{ChargeStartHour: 9, ChargeEndHour: 16, DischargeStartHour: 18, DischargeEndHour: 23}
	b := newBattery(t, 2, 4)
	res, err := Run(b, s, solar, 1)
	require.NoError(t, err)
	assertInvariants(t, b, res)

	for i := 0; i < 24; i++ {
		switch {
		case i >= 9 && i < 16:
			assert.LessOrEqual(t, -res.Battery[i], solar[i]+1e-12, "hour %d charges from solar only", i)
		case i >= 18 && i < 23:
			assert.InDelta(t, res.Battery[18], res.Battery[i], 1e-9, "hour %d keeps the rate", i)
		default:
			assert.LessOrEqual(t, res.Battery[i], 0.0, "hour %d never discharges", i)
		}
	}
	assert.Greater(t, res.Battery[18], 0.0)
	assert.Equal(t, 1.0, res.Diagnostics["discharge_windows"])
}

func TestNightShift_ExplicitRates(t *testing.T) {
	solar := bellDays(1, 2)
	s := NightShift{ChargeStartHour: 9, ChargeEndHour: 16, DischargeStartHour: 18, DischargeEndHour: 23, ChargeMW: 0.5, DischargeMW: 0.4}
	b := newBattery(t, 2, 4)
	res, err := Run(b, s, solar, 1)
	require.NoError(t, err)
	assertInvariants(t, b, res)
	for i := 9; i < 16; i++ {
		assert.LessOrEqual(t, -res.Battery[i], 0.5+1e-12)
	}
	assert.InDelta(t, 0.4, res.Battery[18], 1e-12)
}

package solar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/bessim/core/model"
)

func TestClearSkyGenerate(t *testing.T) {
	series, err := DefaultClearSky().Generate()
	require.NoError(t, err)
	require.Len(t, series, 24)
	for h := 0; h < 6; h++ {
		assert.Zero(t, series[h], "hour %d", h)
	}
	for h := 18; h < 24; h++ {
		assert.Zero(t, series[h], "hour %d", h)
	}
	assert.InDelta(t, series[11], series[12], 1e-9)
	assert.LessOrEqual(t, floats.Max(series), 10.0)
	assert.Greater(t, series[11], 9.9)
}

func TestClearSkySubHourly(t *testing.T) {
	c := DefaultClearSky()
	c.DtHours = 0.25
	c.Days = 2
	series, err := c.Generate()
	require.NoError(t, err)
	require.Len(t, series, 192)
	// energy of a half sine over 12 h is 24/pi * peak
	assert.InDelta(t, 2*24/3.141592653589793*10, floats.Sum(series)*0.25, 0.1)
}

func TestClearSkySeasonal(t *testing.T) {
	c := DefaultClearSky()
	c.Days = 365
	c.SeasonalSwing = 0.3
	series, err := c.Generate()
	require.NoError(t, err)
	winter := floats.Max(series[:24])
	summer := floats.Max(series[182*24 : 183*24])
	assert.Less(t, winter, summer)
}

func TestClearSkyValidate(t *testing.T) {
	bad := []ClearSky{
		{PeakMW: -1, SunriseHour: 6, SunsetHour: 18, Days: 1, DtHours: 1},
		{PeakMW: 1, SunriseHour: 18, SunsetHour: 6, Days: 1, DtHours: 1},
		{PeakMW: 1, SunriseHour: 6, SunsetHour: 18, Days: 0, DtHours: 1},
		{PeakMW: 1, SunriseHour: 6, SunsetHour: 18, Days: 1, SeasonalSwing: 1, DtHours: 1},
	}
	for i, c := range bad {
		_, err := c.Generate()
		assert.ErrorIs(t, err, model.ErrInvalidConfiguration, "case %d", i)
	}
	c := DefaultClearSky()
	c.DtHours = 0
	_, err := c.Generate()
	assert.ErrorIs(t, err, model.ErrInvalidTimestep)
}

func TestReadCSV(t *testing.T) {
	data := "timestamp,solar_mw\n# comment\n2025-01-01T00:00,0\n2025-01-01T01:00, 1.5\n2025-01-01T02:00,\n2025-01-01T03:00,-0.1\n"
	series, err := ReadCSV(strings.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1.5, 0, 0}, series)
}

func TestReadCSV_Columns(t *testing.T) {
	data := "hour,pv,other\n0,1,9\n1,2,9\n"
	series, err := ReadCSV(strings.NewReader(data), "PV")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, series)

	series, err = ReadCSV(strings.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 9}, series)

	_, err = ReadCSV(strings.NewReader(data), "missing")
	assert.ErrorIs(t, err, ErrNoColumn)

	_, err = ReadCSV(strings.NewReader("solar_mw\nabc\n"), "")
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("solar_mw\nNaN\n"), "")
	assert.ErrorIs(t, err, model.ErrNumericCorruption)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solar.csv")
	require.NoError(t, os.WriteFile(path, []byte("solar_mw\n1\n2\n"), 0o600))
	series, err := LoadCSV(path, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, series)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}

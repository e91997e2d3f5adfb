// Package solar produces solar generation series for the engine: a
// synthetic clear-sky generator and a CSV loader.
package solar

import (
	"fmt"
	"math"

	"github.com/kilianp07/bessim/core/model"
)

// ClearSky describes a synthetic plant. Output follows sin^Shape between
// sunrise and sunset, scaled to PeakMW.
type ClearSky struct {
	PeakMW        float64 `json:"peak_mw"`
	SunriseHour   float64 `json:"sunrise_hour"`
	SunsetHour    float64 `json:"sunset_hour"`
	Shape         float64 `json:"shape"`
	Days          int     `json:"days"`
	DtHours       float64 `json:"dt_hours"`
	SeasonalSwing float64 `json:"seasonal_swing"`
}

// DefaultClearSky is a 10 MW plant over one day at hourly resolution.
func DefaultClearSky() ClearSky {
	return ClearSky{PeakMW: 10, SunriseHour: 6, SunsetHour: 18, Shape: 1, Days: 1, DtHours: 1}
}

// Validate checks the generator parameters.
func (c ClearSky) Validate() error {
	switch {
	case !(c.PeakMW >= 0) || math.IsInf(c.PeakMW, 0):
		return fmt.Errorf("%w: peak_mw must be finite and non-negative, got %v", model.ErrInvalidConfiguration, c.PeakMW)
	case c.SunriseHour < 0 || c.SunsetHour > 24 || c.SunriseHour >= c.SunsetHour:
		return fmt.Errorf("%w: need 0 <= sunrise < sunset <= 24, got %v..%v", model.ErrInvalidConfiguration, c.SunriseHour, c.SunsetHour)
	case c.Days <= 0:
		return fmt.Errorf("%w: days must be positive, got %d", model.ErrInvalidConfiguration, c.Days)
	case !(c.DtHours > 0) || c.DtHours > 24:
		return fmt.Errorf("%w: dt=%v", model.ErrInvalidTimestep, c.DtHours)
	case c.SeasonalSwing < 0 || c.SeasonalSwing >= 1:
		return fmt.Errorf("%w: seasonal_swing must be within [0,1), got %v", model.ErrInvalidConfiguration, c.SeasonalSwing)
	}
	return nil
}

// Generate returns Days*24/DtHours samples. Each sample is the profile value
// at the midpoint of its step. With a SeasonalSwing the daily peak follows
// a yearly cosine, highest at mid-year.
func (c ClearSky) Generate() ([]float64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	shape := c.Shape
	if shape <= 0 {
		shape = 1
	}
	perDay := 24 / c.DtHours
	n := int(math.Round(float64(c.Days) * perDay))
	out := make([]float64, n)
	span := c.SunsetHour - c.SunriseHour
	for i := range out {
		t := (float64(i) + 0.5) * c.DtHours
		day := math.Floor(t / 24)
		h := t - 24*day
		if h <= c.SunriseHour || h >= c.SunsetHour {
			continue
		}
		peak := c.PeakMW
		if c.SeasonalSwing > 0 {
			peak *= 1 - c.SeasonalSwing*math.Cos(2*math.Pi*day/365)
		}
		out[i] = peak * math.Pow(math.Sin(math.Pi*(h-c.SunriseHour)/span), shape)
	}
	return out, nil
}

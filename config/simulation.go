package config

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/bessim/auth"
	"github.com/kilianp07/bessim/connectors"
	"github.com/kilianp07/bessim/connectors/clients/solarforecast"
	connfactory "github.com/kilianp07/bessim/connectors/factory"
	"github.com/kilianp07/bessim/core/solar"
)

// SimulationConfig describes the solar input and the run outputs.
type SimulationConfig struct {
	DtHours float64 `json:"dt_hours"`
	// SolarFile is a CSV series; when empty the clear-sky generator is used.
	SolarFile   string         `json:"solar_file"`
	SolarColumn string         `json:"solar_column"`
	Remote      RemoteSolar    `json:"remote"`
	ClearSky    solar.ClearSky `json:"clear_sky"`
	// Tolerance is the energy balance tolerance in MW.
	Tolerance float64 `json:"tolerance"`
	OutputDir string  `json:"output_dir"`
	// Format is "csv", "json" or "both".
	Format string `json:"format"`
}

// RemoteSolar fetches the solar series from a forecast provider.
type RemoteSolar struct {
	Connector string    `json:"connector"`
	URL       string    `json:"url"`
	Column    string    `json:"column"`
	// Start and End are RFC 3339 timestamps bounding the forecast.
	Start string    `json:"start"`
	End   string    `json:"end"`
	Auth  auth.Conf `json:"auth"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.DtHours == 0 {
		c.DtHours = 1
	}
	if c.Format == "" {
		c.Format = "both"
	}
	def := solar.DefaultClearSky()
	if c.ClearSky.PeakMW == 0 {
		c.ClearSky.PeakMW = def.PeakMW
	}
	if c.ClearSky.SunriseHour == 0 && c.ClearSky.SunsetHour == 0 {
		c.ClearSky.SunriseHour, c.ClearSky.SunsetHour = def.SunriseHour, def.SunsetHour
	}
	if c.ClearSky.Days == 0 {
		c.ClearSky.Days = def.Days
	}
	c.ClearSky.DtHours = c.DtHours
}

// Validate checks the timestep and output format.
func (c SimulationConfig) Validate() error {
	if !(c.DtHours > 0) || math.IsInf(c.DtHours, 0) {
		return fmt.Errorf("simulation.dt_hours must be positive, got %v", c.DtHours)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("simulation.tolerance must not be negative, got %v", c.Tolerance)
	}
	switch c.Format {
	case "csv", "json", "both":
	default:
		return fmt.Errorf("unknown output format %s", c.Format)
	}
	if c.SolarFile != "" && c.Remote.URL != "" {
		return fmt.Errorf("simulation.solar_file and simulation.remote.url are exclusive")
	}
	if c.Remote.URL != "" {
		if _, err := connfactory.NewProfileClient(c.Remote.Connector, c.Remote.URL); err != nil {
			return err
		}
		_, _, err := c.Remote.window()
		return err
	}
	if c.SolarFile == "" {
		return c.ClearSky.Validate()
	}
	return nil
}

// Solar loads, fetches or generates the configured solar series.
func (c SimulationConfig) Solar(ctx context.Context) ([]float64, error) {
	if c.Remote.URL != "" {
		return c.Remote.fetch(ctx)
	}
	if c.SolarFile != "" {
		return solar.LoadCSV(c.SolarFile, c.SolarColumn)
	}
	return c.ClearSky.Generate()
}

func (r RemoteSolar) fetch(ctx context.Context) ([]float64, error) {
	client, err := connfactory.NewProfileClient(r.Connector, r.URL)
	if err != nil {
		return nil, err
	}
	var cred *auth.ClientCred
	if r.Auth.Enabled() {
		cred = auth.NewClientCred(r.Auth)
	}
	start, end, err := r.window()
	if err != nil {
		return nil, err
	}
	opts := []connectors.Option{solarforecast.WithColumn(r.Column)}
	if !start.IsZero() {
		opts = append(opts, solarforecast.WithStartDate(start))
	}
	if !end.IsZero() {
		opts = append(opts, solarforecast.WithEndDate(end))
	}
	return client.Fetch(ctx, cred, opts...)
}

func (r RemoteSolar) window() (start, end time.Time, err error) {
	if r.Start != "" {
		if start, err = time.Parse(time.RFC3339, r.Start); err != nil {
			return start, end, fmt.Errorf("simulation.remote.start: %w", err)
		}
	}
	if r.End != "" {
		if end, err = time.Parse(time.RFC3339, r.End); err != nil {
			return start, end, fmt.Errorf("simulation.remote.end: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return start, end, fmt.Errorf("simulation.remote.end must be after start")
	}
	return start, end, nil
}

package config

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/model"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `battery:
  power_mw: 2
  duration_hours: 4
  technology: premium
  topology: hybrid
strategy:
  name: cap_shaving_balanced
  params:
    cap_mw: 5
    allocator: lp
simulation:
  dt_hours: 0.5
  clear_sky:
    peak_mw: 8
    days: 3
  tolerance: 0.000001
  format: csv
metrics:
  sinks:
    - type: "nop"
run_log:
  backend: sqlite
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  topic_prefix: "site/1"
  qos: 1
sweep:
  workers: 4
  grid:
    powers_mw: [1, 2]
    durations_hours: [2, 4]
  monte_carlo:
    draws: 50
    sigma: 0.1
    seed: 9
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"power", cfg.Battery.PowerMW, 2.0},
		{"technology", cfg.Battery.Technology, model.TechnologyPremium},
		{"topology", cfg.Battery.Topology, model.TopologyHybrid},
		{"strategy", cfg.Strategy.Name, "cap_shaving_balanced"},
		{"dt", cfg.Simulation.DtHours, 0.5},
		{"clear_sky.dt", cfg.Simulation.ClearSky.DtHours, 0.5},
		{"clear_sky.sunrise", cfg.Simulation.ClearSky.SunriseHour, 6.0},
		{"clear_sky.days", cfg.Simulation.ClearSky.Days, 3},
		{"format", cfg.Simulation.Format, "csv"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":2112"},
		{"run_log.backend", cfg.RunLog.Backend, "sqlite"},
		{"run_log.path", cfg.RunLog.Path, "runs.db"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.prefix", cfg.MQTT.TopicPrefix, "site/1"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"sweep.workers", cfg.Sweep.Workers, 4},
		{"sweep.grid", len(cfg.Sweep.Grid.Configurations()), 4},
		{"sweep.seed", cfg.Sweep.MonteCarlo.Seed, uint64(9)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}

	s, err := cfg.Strategy.Build()
	require.NoError(t, err)
	bal, ok := s.(dispatch.CapShavingBalanced)
	require.True(t, ok)
	assert.Equal(t, 5.0, bal.CapMW)
	assert.Equal(t, dispatch.AllocatorLP, bal.Allocator)

	series, err := cfg.Simulation.Solar(context.Background())
	require.NoError(t, err)
	assert.Len(t, series, 144)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.json", `{"battery":{"power_mw":1,"duration_hours":2},"strategy":{"name":"ramp_limit","params":{"ramp_mw_per_hour":0.5}}}`)
	t.Setenv("BESS_BATTERY__POWER_MW", "3")
	t.Setenv("BESS_SIMULATION__DT_HOURS", "0.25")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Battery.PowerMW)
	assert.Equal(t, 0.25, cfg.Simulation.DtHours)
	assert.Equal(t, "none", cfg.RunLog.Backend)
	assert.Equal(t, model.TechnologyModernLFP, cfg.Battery.Technology)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "bad.yaml", "battery:\n  power_mw: 0\n  duration_hours: 1\nstrategy:\n  name: ramp_limit\n  params:\n    ramp_mw_per_hour: 1\n"))
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	_, err = Load(writeConfig(t, "unknown.yaml", "battery:\n  power_mw: 1\n  duration_hours: 1\nstrategy:\n  name: moonshot\n"))
	assert.True(t, errors.Is(err, model.ErrUnsupportedStrategy), "got %v", err)

	_, err = Load(writeConfig(t, "mqtt.yaml", "battery:\n  power_mw: 1\n  duration_hours: 1\nstrategy:\n  name: cap_shaving\n  params:\n    cap_mw: 1\nmqtt:\n  enabled: true\n"))
	assert.Error(t, err)
}

func TestRunLogConfig(t *testing.T) {
	c := RunLogConfig{Backend: "jsonl"}
	c.SetDefaults()
	assert.Equal(t, "runs.jsonl", c.Path)
	assert.NoError(t, c.Validate())
	assert.Error(t, RunLogConfig{Backend: "postgres", Path: "x"}.Validate())
	assert.Error(t, RunLogConfig{Backend: "jsonl"}.Validate())
	assert.Error(t, RunLogConfig{Backend: "jsonl", Path: "x", MaxSizeMB: -1}.Validate())
}

func TestSimulationConfigValidate(t *testing.T) {
	c := SimulationConfig{}
	c.SetDefaults()
	assert.NoError(t, c.Validate())
	c.Format = "xml"
	assert.Error(t, c.Validate())
	c.Format = "json"
	c.Tolerance = -1
	assert.Error(t, c.Validate())
}

func TestSimulationRemoteSolar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("solar_mw\n0\n2\n4\n"))
	}))
	defer srv.Close()

	c := SimulationConfig{Remote: RemoteSolar{URL: srv.URL, Start: "2024-06-01T00:00:00Z", End: "2024-06-02T00:00:00Z"}}
	c.SetDefaults()
	require.NoError(t, c.Validate())
	series, err := c.Solar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4}, series)

	c.Remote.End = "2024-05-01T00:00:00Z"
	assert.Error(t, c.Validate())
	c.Remote.End = "tomorrow"
	assert.Error(t, c.Validate())
	c.Remote.End = ""
	c.SolarFile = "pv.csv"
	assert.Error(t, c.Validate())
}

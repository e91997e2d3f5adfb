package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/config"
	"github.com/kilianp07/bessim/core/factory"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runlog"
	"github.com/kilianp07/bessim/core/sweep"
	"github.com/kilianp07/bessim/infra/mqtt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Battery:  model.BatteryConfiguration{PowerMW: 2, DurationHours: 4},
		Strategy: config.StrategyConfig{Name: "cap_shaving", Params: map[string]any{"cap_mw": 6}},
		Simulation: config.SimulationConfig{
			OutputDir: filepath.Join(dir, "out"),
		},
		RunLog: config.RunLogConfig{Backend: "jsonl", Path: filepath.Join(dir, "runs.jsonl")},
		Sweep: config.SweepConfig{
			Workers:    2,
			Grid:       sweep.Grid{PowersMW: []float64{1, 2}, DurationsHours: []float64{2, 4}},
			MonteCarlo: sweep.MonteCarloOptions{Draws: 5, Sigma: 0.05, Seed: 3},
		},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceSimulateExportsAndLogs(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	pub := mqtt.NewMockPublisher()
	svc.SetPublisher(pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	rep, err := svc.Simulate(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StrategyCapShaving, rep.Strategy)

	for _, suffix := range []string{"_result.csv", "_report.json"} {
		_, err := os.Stat(filepath.Join(cfg.Simulation.OutputDir, rep.RunID+suffix))
		assert.NoError(t, err, suffix)
	}

	recs, err := svc.History(ctx, runlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rep.RunID, recs[0].RunID)

	require.NoError(t, svc.Close())
	published := pub.Published()
	require.Len(t, published, 1)
	assert.Equal(t, rep.RunID, published[0].RunID)
}

func TestServiceCSVOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Format = "csv"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	rep, err := svc.Simulate(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Simulation.OutputDir, rep.RunID+"_report.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestServiceSizeAndMonteCarlo(t *testing.T) {
	cfg := testConfig(t)
	cfg.RunLog = config.RunLogConfig{Backend: "none"}
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	out, err := svc.Size(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 4)
	for _, o := range out {
		assert.NoError(t, o.Err)
	}

	mc, err := svc.MonteCarlo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, mc.Draws)
	assert.Zero(t, mc.Failed)
}

func TestServiceSizeNeedsGrid(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sweep.Grid = sweep.Grid{}
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Size(context.Background())
	assert.Error(t, err)
}

func TestServiceSuggestSizing(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	s, err := svc.SuggestSizing(context.Background(), 0)
	require.NoError(t, err)
	assert.Greater(t, s.PowerMW, 0.0)
	assert.Greater(t, s.EnergyMWh, 0.0)
}

func TestNewRejectsUnknownSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "graphite"}}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestServiceHandler(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Token = "secret"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	_, err = svc.Simulate(context.Background())
	require.NoError(t, err)

	h := svc.Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cap_shaving")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bess_executor_runs_total")
}

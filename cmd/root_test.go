package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/validation"
)

const testConfig = `battery:
  power_mw: 2
  duration_hours: 4
strategy:
  name: cap_shaving
  params:
    cap_mw: 6
simulation:
  dt_hours: 1
sweep:
  workers: 2
  grid:
    powers_mw: [1, 2]
    durations_hours: [2]
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--config", path))
	require.NoError(t, Execute())
	return out.String()
}

func TestRunPrintsSummary(t *testing.T) {
	var sum model.RunSummary
	require.NoError(t, json.Unmarshal([]byte(execute(t)), &sum))
	assert.Equal(t, model.StrategyCapShaving, sum.Strategy)
	assert.NotEmpty(t, sum.RunID)
}

func TestSizeCommand(t *testing.T) {
	var s validation.Sizing
	require.NoError(t, json.Unmarshal([]byte(execute(t, "size")), &s))
	assert.Greater(t, s.PowerMW, 0.0)
}

func TestSweepSizingCommand(t *testing.T) {
	out := execute(t, "sweep", "sizing")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
}

func TestLogLevelFlag(t *testing.T) {
	defer func() { logLevel = "" }()
	var sum model.RunSummary
	require.NoError(t, json.Unmarshal([]byte(execute(t, "--log-level", "error")), &sum))
	assert.Equal(t, "error", logLevel)
}

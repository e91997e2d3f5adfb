package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runner"
)

func sampleResult() *model.SimulationResult {
	res := model.NewSimulationResult(model.StrategyCapShaving, 2, 0.5)
	copy(res.Solar, []float64{1, 3})
	copy(res.Grid, []float64{1, 2})
	copy(res.Battery, []float64{0, -1})
	copy(res.SOC, []float64{0.1, 0.15})
	copy(res.Loss, []float64{0, 0.035})
	return res
}

func TestWriteResultCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, sampleResult()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, resultHeader, rows[0])
	assert.Equal(t, []string{"1", "0.5", "3", "2", "-1", "0.15", "0", "0.035"}, rows[2])
}

func TestWriteResultCSV_Firm(t *testing.T) {
	res := sampleResult()
	res.Firm = &model.FirmDelivery{
		Target:         []float64{1, 2},
		DirectSolar:    []float64{1, 2},
		SolarToBattery: []float64{0, 1},
		BatteryToGrid:  []float64{0, 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, res))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows[0], len(resultHeader)+4)
	assert.Equal(t, "1", rows[2][len(resultHeader)+2])
}

func TestWriteSummariesCSV(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sums := []model.RunSummary{{
		RunID:    "r1",
		Time:     ts,
		Strategy: model.StrategyRampLimit,
		Battery:  model.BatteryConfiguration{PowerMW: 2, DurationHours: 4},
		Valid:    true,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteSummariesCSV(&buf, sums))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r1", rows[1][0])
	assert.Equal(t, "2025-06-01T12:00:00Z", rows[1][1])
	assert.Equal(t, "modern_lfp", rows[1][5])
	assert.Equal(t, "true", rows[1][13])
}

func TestWriteJSON(t *testing.T) {
	rep := &runner.Report{RunID: "abc", Strategy: model.StrategyCapShaving, Result: sampleResult()}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "abc", decoded["run_id"])
	result := decoded["result"].(map[string]any)
	assert.Len(t, result["grid"], 2)
}

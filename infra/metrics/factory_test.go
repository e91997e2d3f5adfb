package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/core/factory"
	coremetrics "github.com/kilianp07/bessim/core/metrics"
)

func TestBuiltinSinkTypes(t *testing.T) {
	names := coremetrics.SinkTypes()
	assert.Contains(t, names, "nop")
	assert.Contains(t, names, "prometheus")
	assert.Contains(t, names, "influx")
}

func TestPrometheusSinkFromConfig(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	require.NoError(t, err)
	_, ok := s.(*PromSink)
	assert.True(t, ok, "got %T", s)
}

func TestInfluxSinkFromConfig(t *testing.T) {
	_, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"url": "http://localhost:1"}}})
	assert.Error(t, err, "bucket is required")

	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{
		"url": "http://127.0.0.1:1", "bucket": "bess",
	}}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s, "unreachable influx falls back to nop")

	s, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{
		"url": "http://127.0.0.1:1", "bucket": "bess", "strict": "true",
	}}})
	require.NoError(t, err)
	influx, ok := s.(*InfluxSink)
	require.True(t, ok, "got %T", s)
	influx.Close()
}

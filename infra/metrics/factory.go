package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/bessim/core/factory"
	coremetrics "github.com/kilianp07/bessim/core/metrics"
)

// influxConf is the "conf" block of an influx sink.
type influxConf struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// Strict disables the NopSink fallback when the health check fails.
	Strict bool `json:"strict"`
}

func (c influxConf) validate() error {
	if c.URL == "" || c.Bucket == "" {
		return errors.New("influx sink: url and bucket are required")
	}
	return nil
}

func newInfluxFromConf(conf map[string]any) (coremetrics.MetricsSink, error) {
	var c influxConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.Strict {
		return NewInfluxSink(c.URL, c.Token, c.Org, c.Bucket), nil
	}
	return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
}

// The scrape address belongs to the HTTP server, so the sink only
// registers its collectors.
func newPromFromConf(map[string]any) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

func init() {
	builtins := map[string]factory.Factory[coremetrics.MetricsSink]{
		"nop": func(map[string]any) (coremetrics.MetricsSink, error) {
			return coremetrics.NopSink{}, nil
		},
		"prometheus": newPromFromConf,
		"influx":     newInfluxFromConf,
	}
	for name, f := range builtins {
		_ = coremetrics.RegisterMetricsSink(name, f)
	}
}

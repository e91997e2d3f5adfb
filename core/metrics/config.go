package metrics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/bessim/core/factory"
)

// Config lists the sinks a run reports to. PrometheusAddr is where the
// scrape endpoint listens when a "prometheus" sink is configured.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	PrometheusAddr string                 `json:"prometheus_addr"`
}

// Has reports whether a sink of the given type is configured.
func (c Config) Has(typ string) bool {
	for _, s := range c.Sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}

// Validate catches unnamed and duplicated sinks. Unknown types are only
// detected by NewMetricsSink since the registry is filled by importers.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Sinks))
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
		if seen[s.Type] {
			return fmt.Errorf("metrics.sinks[%d]: duplicate sink %q", i, s.Type)
		}
		seen[s.Type] = true
	}
	if seen["prometheus"] && c.PrometheusAddr == "" {
		return errors.New("metrics.prometheus_addr is required with a prometheus sink")
	}
	return nil
}

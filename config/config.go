package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/sweep"
	"github.com/kilianp07/bessim/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. Nested keys are joined with a
// double underscore, e.g. BESS_BATTERY__POWER_MW.
const EnvPrefix = "BESS_"

type Config struct {
	Battery    model.BatteryConfiguration `json:"battery"`
	Strategy   StrategyConfig             `json:"strategy"`
	Simulation SimulationConfig           `json:"simulation"`
	Metrics    metrics.Config             `json:"metrics"`
	RunLog     RunLogConfig               `json:"run_log"`
	MQTT       mqtt.Config                `json:"mqtt"`
	Sweep      SweepConfig                `json:"sweep"`
	Log        LogConfig                  `json:"log"`
	API        APIConfig                  `json:"api"`
}

// StrategyConfig names a strategy and its raw parameters.
type StrategyConfig struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Build parses the configured strategy.
func (c StrategyConfig) Build() (dispatch.Strategy, error) {
	return dispatch.Parse(c.Name, c.Params)
}

// SweepConfig holds the sizing grid and Monte Carlo settings.
type SweepConfig struct {
	Workers    int                     `json:"workers"`
	Grid       sweep.Grid              `json:"grid"`
	MonteCarlo sweep.MonteCarloOptions `json:"monte_carlo"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level   string `json:"level"`
	Console bool   `json:"console"`
}

// APIConfig controls the HTTP server started by the serve command.
type APIConfig struct {
	Addr  string `json:"addr"`
	Token string `json:"token"`
}

// Load reads the file at path, applies BESS_ environment overrides and
// validates the result. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset sections.
func (c *Config) SetDefaults() {
	c.Battery = c.Battery.Normalized()
	c.Simulation.SetDefaults()
	c.RunLog.SetDefaults()
	if c.Metrics.PrometheusAddr == "" {
		c.Metrics.PrometheusAddr = ":2112"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
}

// Validate checks every section. The strategy is parsed to surface
// parameter errors at load time.
func (c Config) Validate() error {
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	if _, err := c.Strategy.Build(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.RunLog.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if c.Sweep.MonteCarlo.Sigma < 0 {
		return fmt.Errorf("sweep.monte_carlo.sigma must not be negative")
	}
	return nil
}

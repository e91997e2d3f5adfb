package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/bessim/core/model"
)

type BatteryDef struct {
	PowerMW       float64 `yaml:"power_mw"`
	DurationHours float64 `yaml:"duration_hours"`
	Technology    string  `yaml:"technology"`
	Topology      string  `yaml:"topology"`
}

func (b BatteryDef) ToModel() model.BatteryConfiguration {
	return model.BatteryConfiguration{
		PowerMW:       b.PowerMW,
		DurationHours: b.DurationHours,
		Technology:    model.Technology(b.Technology),
		Topology:      model.Topology(b.Topology),
	}.Normalized()
}

type StrategyDef struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// SeriesDef is either an explicit list of values or a constant repeated
// Steps times.
type SeriesDef struct {
	Values   []float64 `yaml:"values"`
	Constant float64   `yaml:"constant"`
	Steps    int       `yaml:"steps"`
}

func (s SeriesDef) Expand() []float64 {
	if len(s.Values) > 0 {
		return append([]float64(nil), s.Values...)
	}
	out := make([]float64, s.Steps)
	for i := range out {
		out[i] = s.Constant
	}
	return out
}

func (s SeriesDef) empty() bool { return len(s.Values) == 0 && s.Steps == 0 }

type Expected struct {
	Valid           *bool              `yaml:"valid,omitempty"`
	CurtailedMWh    *float64           `yaml:"curtailed_mwh,omitempty"`
	GridMaxMW       *float64           `yaml:"grid_max_mw,omitempty"`
	GridEqualsSolar bool               `yaml:"grid_equals_solar,omitempty"`
	IdleBattery     bool               `yaml:"idle_battery,omitempty"`
	Metrics         map[string]float64 `yaml:"metrics,omitempty"`
	Tolerance       float64            `yaml:"tolerance,omitempty"`
}

// Scenario describes either a dispatch run or, when Grid is set, a
// precomputed result that only goes through validation.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Battery     BatteryDef  `yaml:"battery"`
	Strategy    StrategyDef `yaml:"strategy"`
	DtHours     float64     `yaml:"dt_hours"`
	Solar       SeriesDef   `yaml:"solar"`
	Grid        SeriesDef   `yaml:"grid,omitempty"`
	Curtailed   SeriesDef   `yaml:"curtailed,omitempty"`
	Expected    Expected    `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.DtHours == 0 {
		sc.DtHours = 1
	}
	if sc.Expected.Tolerance == 0 {
		sc.Expected.Tolerance = 1e-6
	}
	return &sc, nil
}

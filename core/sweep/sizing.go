package sweep

import (
	"context"
	"sort"

	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/model"
)

// Grid is the cartesian product of battery parameters to search. Empty
// technology or topology lists use the defaults.
type Grid struct {
	PowersMW       []float64          `json:"powers_mw"`
	DurationsHours []float64          `json:"durations_hours"`
	Technologies   []model.Technology `json:"technologies"`
	Topologies     []model.Topology   `json:"topologies"`
}

// Configurations expands the grid in power, duration, technology, topology
// order.
func (g Grid) Configurations() []model.BatteryConfiguration {
	techs := g.Technologies
	if len(techs) == 0 {
		techs = []model.Technology{model.TechnologyModernLFP}
	}
	topos := g.Topologies
	if len(topos) == 0 {
		topos = []model.Topology{model.TopologyParallelAC}
	}
	var out []model.BatteryConfiguration
	for _, p := range g.PowersMW {
		for _, d := range g.DurationsHours {
			for _, tech := range techs {
				for _, topo := range topos {
					out = append(out, model.BatteryConfiguration{PowerMW: p, DurationHours: d, Technology: tech, Topology: topo})
				}
			}
		}
	}
	return out
}

// Sizing runs the strategy against every configuration of the grid.
func (s *Sweeper) Sizing(ctx context.Context, g Grid, strategy dispatch.Strategy, solar []float64, dt float64) ([]Outcome, error) {
	cfgs := g.Configurations()
	jobs := make([]Job, len(cfgs))
	for i, c := range cfgs {
		jobs[i] = Job{Config: c, Strategy: strategy, Solar: solar, DtHours: dt}
	}
	return s.Execute(ctx, "sizing", jobs)
}

// Best returns the feasible outcome with the smallest nameplate capacity,
// preferring higher efficiency and then lower power on ties.
func Best(out []Outcome) (Outcome, bool) {
	var feasible []Outcome
	for _, o := range out {
		if o.Feasible() {
			feasible = append(feasible, o)
		}
	}
	if len(feasible) == 0 {
		return Outcome{}, false
	}
	sort.SliceStable(feasible, func(i, j int) bool {
		a, b := feasible[i], feasible[j]
		ca, cb := a.Job.Config.CapacityMWh(), b.Job.Config.CapacityMWh()
		if ca != cb {
			return ca < cb
		}
		ea, eb := a.Report.Validation.Efficiency, b.Report.Validation.Efficiency
		if ea != eb {
			return ea > eb
		}
		return a.Job.Config.PowerMW < b.Job.Config.PowerMW
	})
	return feasible[0], true
}

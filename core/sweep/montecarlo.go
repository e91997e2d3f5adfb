package sweep

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/model"
)

// MonteCarloOptions controls the solar perturbation. Each step of draw k is
// scaled by max(0, N(1, Sigma)) from a generator seeded with (Seed, k), so
// results do not depend on scheduling.
type MonteCarloOptions struct {
	Draws int     `json:"draws"`
	Sigma float64 `json:"sigma"`
	Seed  uint64  `json:"seed"`
}

// Distribution summarizes one metric across draws.
type Distribution struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	P05  float64 `json:"p05"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
}

// MonteCarloResult aggregates a Monte Carlo sweep.
type MonteCarloResult struct {
	Draws         int          `json:"draws"`
	Failed        int          `json:"failed"`
	ValidFraction float64      `json:"valid_fraction"`
	Efficiency    Distribution `json:"efficiency"`
	CurtailedMWh  Distribution `json:"curtailed_mwh"`
	Cycles        Distribution `json:"cycles"`
	Outcomes      []Outcome    `json:"-"`
}

// Perturb returns draw k of the perturbed solar series.
func Perturb(solar []float64, opts MonteCarloOptions, k int) []float64 {
	n := distuv.Normal{Mu: 1, Sigma: opts.Sigma, Src: rand.NewPCG(opts.Seed, uint64(k))}
	out := make([]float64, len(solar))
	for i, v := range solar {
		out[i] = v * math.Max(0, n.Rand())
	}
	return out
}

// MonteCarlo runs the strategy on opts.Draws perturbed copies of solar.
func (s *Sweeper) MonteCarlo(ctx context.Context, cfg model.BatteryConfiguration, strategy dispatch.Strategy, solar []float64, dt float64, opts MonteCarloOptions) (MonteCarloResult, error) {
	if opts.Draws <= 0 {
		return MonteCarloResult{}, fmt.Errorf("%w: draws must be positive, got %d", model.ErrInvalidConfiguration, opts.Draws)
	}
	if opts.Sigma < 0 || math.IsNaN(opts.Sigma) || math.IsInf(opts.Sigma, 0) {
		return MonteCarloResult{}, fmt.Errorf("%w: sigma must be finite and non-negative, got %v", model.ErrInvalidConfiguration, opts.Sigma)
	}
	jobs := make([]Job, opts.Draws)
	for k := range jobs {
		jobs[k] = Job{Config: cfg, Strategy: strategy, Solar: Perturb(solar, opts, k), DtHours: dt}
	}
	out, err := s.Execute(ctx, "monte_carlo", jobs)
	res := MonteCarloResult{Draws: opts.Draws, Outcomes: out}
	var eff, curt, cyc []float64
	valid := 0
	for _, o := range out {
		if o.Err != nil || o.Report == nil {
			res.Failed++
			continue
		}
		if o.Report.Valid() {
			valid++
		}
		sum := o.Report.Summary()
		eff = append(eff, sum.Efficiency)
		curt = append(curt, sum.CurtailedMWh)
		cyc = append(cyc, sum.Cycles)
	}
	res.ValidFraction = float64(valid) / float64(opts.Draws)
	res.Efficiency = describe(eff)
	res.CurtailedMWh = describe(curt)
	res.Cycles = describe(cyc)
	return res, err
}

func describe(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	d := Distribution{
		Mean: stat.Mean(sorted, nil),
		P05:  stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

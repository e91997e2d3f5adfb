// Package sweep runs many independent scenarios in parallel: sizing grid
// searches and Monte Carlo solar perturbations. Each job builds its own
// battery so workers never share state.
package sweep

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/events"
	"github.com/kilianp07/bessim/core/logger"
	"github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runner"
	"github.com/kilianp07/bessim/internal/eventbus"
)

// Runner executes one scenario. *runner.Executor implements it.
type Runner interface {
	Run(ctx context.Context, b *battery.Battery, s dispatch.Strategy, solar []float64, dt float64) (*runner.Report, error)
}

// Job is one scenario of a sweep.
type Job struct {
	Config   model.BatteryConfiguration
	Strategy dispatch.Strategy
	Solar    []float64
	DtHours  float64
}

// Outcome pairs a job with its report or error.
type Outcome struct {
	Job    Job
	Report *runner.Report
	Err    error
}

// Feasible reports whether the job ran and passed validation.
func (o Outcome) Feasible() bool {
	return o.Err == nil && o.Report != nil && o.Report.Valid()
}

// Sweeper fans jobs out over a bounded worker pool.
type Sweeper struct {
	runner  Runner
	workers int
	bus     eventbus.Publisher[events.SweepEvent]
	logger  logger.Logger
}

// NewSweeper creates a sweeper. A non-positive workers count uses
// GOMAXPROCS.
func NewSweeper(r Runner, workers int, bus eventbus.Publisher[events.SweepEvent], log logger.Logger) *Sweeper {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Sweeper{runner: r, workers: workers, bus: bus, logger: logger.OrNop(log)}
}

// Workers returns the worker pool size.
func (s *Sweeper) Workers() int { return s.workers }

// Execute runs every job and returns outcomes in job order. A failing job
// is recorded in its outcome and does not stop the sweep. Cancellation is
// checked before each job starts; jobs already running finish. The
// returned error is the context error when the sweep was cut short.
func (s *Sweeper) Execute(ctx context.Context, kind string, jobs []Job) ([]Outcome, error) {
	out := make([]Outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = Outcome{Job: jobs[i], Err: err}
				return err
			}
			out[i] = s.run(gctx, jobs[i])
			return nil
		})
	}
	_ = g.Wait()
	err := ctx.Err()
	if err != nil {
		for i := range out {
			if out[i].Report == nil && out[i].Err == nil {
				out[i] = Outcome{Job: jobs[i], Err: err}
			}
		}
	}
	s.summarize(kind, out, err)
	return out, err
}

func (s *Sweeper) run(ctx context.Context, j Job) Outcome {
	b, err := battery.New(j.Config)
	if err != nil {
		return Outcome{Job: j, Err: err}
	}
	rep, err := s.runner.Run(ctx, b, j.Strategy, j.Solar, j.DtHours)
	return Outcome{Job: j, Report: rep, Err: err}
}

func (s *Sweeper) summarize(kind string, out []Outcome, err error) {
	sum := metrics.SweepSummary{Kind: kind, Jobs: len(out)}
	for _, o := range out {
		switch {
		case o.Err != nil, o.Report == nil:
			sum.Failed++
		case o.Report.Valid():
			sum.Feasible++
		}
	}
	if err != nil {
		s.logger.Warnf("%s sweep interrupted: %v", kind, err)
	}
	s.logger.Infof("%s sweep: %d jobs, %d failed, %d feasible", kind, sum.Jobs, sum.Failed, sum.Feasible)
	if s.bus != nil {
		s.bus.Publish(events.SweepEvent{Summary: sum})
	}
}

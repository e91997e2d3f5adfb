// Package runner executes one strategy run end to end: dispatch, balance
// walk, statistics, validation and reporting.
package runner

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/events"
	"github.com/kilianp07/bessim/core/logger"
	"github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runlog"
	"github.com/kilianp07/bessim/core/validation"
	"github.com/kilianp07/bessim/internal/eventbus"
)

// Executor runs strategies and fans the reports out to the configured
// sink, bus and run log. It is safe for concurrent use as long as each
// call gets its own battery.
type Executor struct {
	mu        sync.RWMutex
	tolerance float64
	sink      metrics.MetricsSink
	bus       eventbus.Publisher[events.RunEvent]
	store     runlog.Store
	logger    logger.Logger
	now       func() time.Time
}

// NewExecutor creates an executor. Nil dependencies fall back to no-op
// implementations.
func NewExecutor(sink metrics.MetricsSink, bus eventbus.Publisher[events.RunEvent], log logger.Logger) *Executor {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Executor{
		tolerance: DefaultTolerance,
		sink:      sink,
		bus:       bus,
		store:     runlog.NopStore{},
		logger:    logger.OrNop(log),
		now:       time.Now,
	}
}

// SetLogStore configures the store used to persist run records.
func (e *Executor) SetLogStore(store runlog.Store) {
	if store == nil {
		store = runlog.NopStore{}
	}
	e.mu.Lock()
	e.store = store
	e.mu.Unlock()
}

// SetTolerance sets the balance tolerance in MW. Non-positive values
// restore DefaultTolerance.
func (e *Executor) SetTolerance(tol float64) {
	if !(tol > 0) {
		tol = DefaultTolerance
	}
	e.mu.Lock()
	e.tolerance = tol
	e.mu.Unlock()
}

// Tolerance returns the balance tolerance in MW.
func (e *Executor) Tolerance() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tolerance
}

// Run resets b, dispatches solar through s and validates the outcome.
// Balance violations end up in the report, never in the error.
func (e *Executor) Run(ctx context.Context, b *battery.Battery, s dispatch.Strategy, solar []float64, dt float64) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: nil battery", model.ErrInvalidConfiguration)
	}
	kind := model.StrategyKind("")
	if s != nil {
		kind = s.Kind()
	}
	rep, err := e.run(b, s, solar, dt)
	if err != nil {
		runsTotal.WithLabelValues(kind.String(), "error").Inc()
		e.logger.Errorf("run %s failed: %v", kind, err)
		e.publish(events.RunEvent{Summary: model.RunSummary{Strategy: kind, Battery: b.Config(), Time: e.now()}, Err: err})
		return nil, err
	}
	e.report(ctx, rep)
	return rep, nil
}

func (e *Executor) run(b *battery.Battery, s dispatch.Strategy, solar []float64, dt float64) (*Report, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt=%v", model.ErrInvalidTimestep, dt)
	}
	for i, v := range solar {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: solar[%d] = %v", model.ErrNumericCorruption, i, v)
		}
	}
	started := e.now()
	b.Reset()
	res, err := dispatch.Run(b, s, solar, dt)
	if err != nil {
		return nil, err
	}
	if err := res.CheckFinite(); err != nil {
		return nil, err
	}
	violations := CheckBalance(res, e.Tolerance())
	stats := ComputeStats(res, b)
	val := validation.ValidateStrategyResult(res, b.Config(), s)
	val.BalanceViolations = violations
	if len(violations) > 0 {
		val.Diagnosis = fmt.Sprintf("%s; %d balance violations", val.Diagnosis, len(violations))
	}
	return &Report{
		RunID:      uuid.NewString(),
		Strategy:   res.Strategy,
		Battery:    b.Config(),
		Result:     res,
		Validation: val,
		Stats:      stats,
		Started:    started,
		Duration:   e.now().Sub(started),
	}, nil
}

func (e *Executor) report(ctx context.Context, rep *Report) {
	kind := rep.Strategy.String()
	outcome := "invalid"
	if rep.Valid() {
		outcome = "valid"
	}
	runsTotal.WithLabelValues(kind, outcome).Inc()
	runDuration.WithLabelValues(kind).Observe(rep.Duration.Seconds())
	if n := len(rep.Validation.BalanceViolations); n > 0 {
		balanceViolations.WithLabelValues(kind).Add(float64(n))
		e.logger.Warnf("run %s: %d steps out of balance, worst residual %.3g MW", rep.RunID, n, worstResidual(rep.Validation.BalanceViolations))
	}

	summary := rep.Summary()
	e.logger.Debugw("run completed", map[string]any{
		"run_id":     rep.RunID,
		"strategy":   kind,
		"battery":    rep.Battery.String(),
		"efficiency": rep.Validation.Efficiency,
		"valid":      summary.Valid,
		"cycles":     rep.Stats.Cycles,
	})
	if err := e.sink.RecordRun(summary); err != nil {
		e.logger.Warnf("record run %s: %v", rep.RunID, err)
	}
	e.publish(events.RunEvent{Summary: summary})

	e.mu.RLock()
	store := e.store
	e.mu.RUnlock()
	if err := store.Append(ctx, rep.Record()); err != nil {
		e.logger.Warnf("append run log %s: %v", rep.RunID, err)
	}
}

func (e *Executor) publish(ev events.RunEvent) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func worstResidual(vs []model.BalanceViolation) float64 {
	var worst float64
	for _, v := range vs {
		worst = math.Max(worst, math.Abs(v.ResidualMW))
	}
	return worst
}

package sweep

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/events"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runner"
	"github.com/kilianp07/bessim/internal/eventbus"
)

func bellDays(days int, peak float64) []float64 {
	out := make([]float64, 24*days)
	for i := range out {
		h := float64(i%24) + 0.5
		if h > 6 && h < 18 {
			out[i] = peak * math.Sin(math.Pi*(h-6)/12)
		}
	}
	return out
}

// countingRunner wraps an executor and records which batteries it saw.
type countingRunner struct {
	inner    Runner
	calls    atomic.Int32
	mu       sync.Mutex
	seen     map[*battery.Battery]bool
	onRun    func(n int32)
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (c *countingRunner) Run(ctx context.Context, b *battery.Battery, s dispatch.Strategy, solar []float64, dt float64) (*runner.Report, error) {
	cur := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		m := c.maxSeen.Load()
		if cur <= m || c.maxSeen.CompareAndSwap(m, cur) {
			break
		}
	}
	n := c.calls.Add(1)
	c.mu.Lock()
	if c.seen == nil {
		c.seen = map[*battery.Battery]bool{}
	}
	c.seen[b] = true
	c.mu.Unlock()
	if c.onRun != nil {
		c.onRun(n)
	}
	return c.inner.Run(ctx, b, s, solar, dt)
}

func TestGridConfigurations(t *testing.T) {
	g := Grid{PowersMW: []float64{1, 2}, DurationsHours: []float64{2, 4, 6}}
	cfgs := g.Configurations()
	require.Len(t, cfgs, 6)
	assert.Equal(t, model.BatteryConfiguration{PowerMW: 1, DurationHours: 2, Technology: model.TechnologyModernLFP, Topology: model.TopologyParallelAC}, cfgs[0])
	assert.Equal(t, 2.0, cfgs[5].PowerMW)
	assert.Equal(t, 6.0, cfgs[5].DurationHours)

	g.Technologies = []model.Technology{model.TechnologyStandard, model.TechnologyPremium}
	assert.Len(t, g.Configurations(), 12)
}

func TestSizing_FreshBatteryPerJob(t *testing.T) {
	cr := &countingRunner{inner: runner.NewExecutor(nil, nil, nil)}
	bus := eventbus.New[events.SweepEvent](1)
	sub := bus.Subscribe()
	sw := NewSweeper(cr, 3, bus, nil)

	g := Grid{PowersMW: []float64{0.5, 1, 2}, DurationsHours: []float64{1, 4}}
	out, err := sw.Sizing(context.Background(), g, dispatch.CapShaving{CapMW: 2}, bellDays(1, 3), 1)
	require.NoError(t, err)
	require.Len(t, out, 6)
	assert.Equal(t, int32(6), cr.calls.Load())
	assert.Len(t, cr.seen, 6)
	assert.LessOrEqual(t, cr.maxSeen.Load(), int32(3))
	for i, o := range out {
		require.NoError(t, o.Err, "job %d", i)
		assert.Equal(t, g.Configurations()[i], o.Job.Config)
	}

	ev := <-sub
	assert.Equal(t, "sizing", ev.Summary.Kind)
	assert.Equal(t, 6, ev.Summary.Jobs)
	assert.Zero(t, ev.Summary.Failed)
}

func TestSizing_InvalidConfigDoesNotStopSweep(t *testing.T) {
	sw := NewSweeper(runner.NewExecutor(nil, nil, nil), 2, nil, nil)
	g := Grid{PowersMW: []float64{-1, 1}, DurationsHours: []float64{2}}
	out, err := sw.Sizing(context.Background(), g, dispatch.CapShaving{CapMW: 1}, bellDays(1, 2), 1)
	require.NoError(t, err)
	assert.ErrorIs(t, out[0].Err, model.ErrInvalidConfiguration)
	assert.NoError(t, out[1].Err)
}

func TestExecute_CancelStopsNewJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cr := &countingRunner{inner: runner.NewExecutor(nil, nil, nil)}
	cr.onRun = func(n int32) {
		if n == 2 {
			cancel()
		}
	}
	sw := NewSweeper(cr, 1, nil, nil)
	g := Grid{PowersMW: []float64{1, 2, 3, 4, 5, 6}, DurationsHours: []float64{2}}
	out, err := sw.Sizing(ctx, g, dispatch.CapShaving{CapMW: 1}, bellDays(1, 2), 1)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, out, 6)
	assert.LessOrEqual(t, cr.calls.Load(), int32(3))
	canceled := 0
	for _, o := range out {
		if errors.Is(o.Err, context.Canceled) {
			canceled++
		}
	}
	assert.GreaterOrEqual(t, canceled, 3)
}

func TestBest(t *testing.T) {
	sw := NewSweeper(runner.NewExecutor(nil, nil, nil), 4, nil, nil)
	g := Grid{PowersMW: []float64{1, 2}, DurationsHours: []float64{2, 4}}
	out, err := sw.Sizing(context.Background(), g, dispatch.CapShaving{CapMW: 2.5, SoftDischarge: true}, bellDays(2, 3), 1)
	require.NoError(t, err)
	best, ok := Best(out)
	if !ok {
		t.Skip("no feasible configuration in grid")
	}
	for _, o := range out {
		if o.Feasible() {
			assert.LessOrEqual(t, best.Job.Config.CapacityMWh(), o.Job.Config.CapacityMWh())
		}
	}

	_, ok = Best([]Outcome{{Err: errors.New("x")}})
	assert.False(t, ok)
}

func TestPerturbDeterministic(t *testing.T) {
	solar := bellDays(1, 3)
	opts := MonteCarloOptions{Draws: 2, Sigma: 0.1, Seed: 42}
	a := Perturb(solar, opts, 0)
	b := Perturb(solar, opts, 0)
	c := Perturb(solar, opts, 1)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for i, v := range a {
		assert.GreaterOrEqual(t, v, 0.0)
		if solar[i] == 0 {
			assert.Zero(t, v)
		}
	}
	assert.Equal(t, solar, Perturb(solar, MonteCarloOptions{Sigma: 0}, 3))
}

func TestMonteCarlo(t *testing.T) {
	sw := NewSweeper(runner.NewExecutor(nil, nil, nil), 4, nil, nil)
	cfg := model.BatteryConfiguration{PowerMW: 2, DurationHours: 4, Technology: model.TechnologyModernLFP}
	res, err := sw.MonteCarlo(context.Background(), cfg, dispatch.CapShaving{CapMW: 2}, bellDays(1, 3), 1,
		MonteCarloOptions{Draws: 16, Sigma: 0.15, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 16, res.Draws)
	assert.Zero(t, res.Failed)
	assert.Len(t, res.Outcomes, 16)
	assert.GreaterOrEqual(t, res.ValidFraction, 0.0)
	assert.LessOrEqual(t, res.ValidFraction, 1.0)
	assert.LessOrEqual(t, res.Efficiency.P05, res.Efficiency.P50)
	assert.LessOrEqual(t, res.Efficiency.P50, res.Efficiency.P95)
	assert.Greater(t, res.Efficiency.Mean, 0.0)

	_, err = sw.MonteCarlo(context.Background(), cfg, dispatch.CapShaving{CapMW: 2}, nil, 1, MonteCarloOptions{})
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}

func TestNewSweeperDefaultsWorkers(t *testing.T) {
	assert.Positive(t, NewSweeper(nil, 0, nil, nil).Workers())
}

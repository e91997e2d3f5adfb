package scenarios

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/dispatch"
	"github.com/kilianp07/bessim/core/events"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runner"
	"github.com/kilianp07/bessim/core/validation"
	"github.com/kilianp07/bessim/infra/logger"
	"github.com/kilianp07/bessim/infra/metrics"
	"github.com/kilianp07/bessim/infra/mqtt"
	"github.com/kilianp07/bessim/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	strategy, err := dispatch.Parse(sc.Strategy.Name, sc.Strategy.Params)
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	cfg := sc.Battery.ToModel()
	solar := sc.Solar.Expand()

	var res *model.SimulationResult
	var val model.ValidationResult
	if sc.Grid.empty() {
		res, val = simulate(t, sc, cfg, strategy, solar)
	} else {
		res = supplied(sc, strategy, solar)
		val = validation.ValidateStrategyResult(res, cfg, strategy)
	}
	checkExpected(t, sc, res, val)
}

// simulate runs the scenario through the executor with a Prometheus sink
// and an MQTT forwarder attached, as a deployment would.
func simulate(t *testing.T, sc *Scenario, cfg model.BatteryConfiguration, s dispatch.Strategy, solar []float64) (*model.SimulationResult, model.ValidationResult) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.New[events.RunEvent](eventbus.DefaultBuffer)
	pub := mqtt.NewMockPublisher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := mqtt.Forward(ctx, bus, pub, logger.NopLogger{})

	b, err := battery.New(cfg)
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	exec := runner.NewExecutor(sink, bus, logger.NopLogger{})
	rep, err := exec.Run(ctx, b, s, solar, sc.DtHours)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not drain")
	}
	if got := len(pub.Published()); got != 1 {
		t.Errorf("scenario %s expected 1 published summary, got %d", sc.Name, got)
	}
	if n, err := testutil.GatherAndCount(reg, "bess_runs_total"); err != nil || n != 1 {
		t.Errorf("scenario %s expected one runs series, got %d (%v)", sc.Name, n, err)
	}
	if len(rep.Validation.BalanceViolations) > 0 {
		t.Errorf("scenario %s energy balance violated at %d steps", sc.Name, len(rep.Validation.BalanceViolations))
	}
	p := b.Params()
	for i, soc := range rep.Result.SOC {
		if soc < p.SOCMin-1e-9 || soc > p.SOCMax+1e-9 {
			t.Errorf("scenario %s soc[%d]=%v outside [%v, %v]", sc.Name, i, soc, p.SOCMin, p.SOCMax)
		}
	}
	return rep.Result, rep.Validation
}

func supplied(sc *Scenario, s dispatch.Strategy, solar []float64) *model.SimulationResult {
	res := model.NewSimulationResult(s.Kind(), len(solar), sc.DtHours)
	copy(res.Solar, solar)
	copy(res.Grid, sc.Grid.Expand())
	copy(res.Curtailed, sc.Curtailed.Expand())
	return res
}

func checkExpected(t *testing.T, sc *Scenario, res *model.SimulationResult, val model.ValidationResult) {
	exp := sc.Expected
	tol := exp.Tolerance
	if exp.Valid != nil && val.Valid != *exp.Valid {
		t.Errorf("scenario %s expected valid=%t, got %t (%s)", sc.Name, *exp.Valid, val.Valid, val.Diagnosis)
	}
	if exp.CurtailedMWh != nil {
		got := floats.Sum(res.Curtailed) * res.DtHours
		if math.Abs(got-*exp.CurtailedMWh) > tol {
			t.Errorf("scenario %s expected %v MWh curtailed, got %v", sc.Name, *exp.CurtailedMWh, got)
		}
	}
	if exp.GridMaxMW != nil {
		if got := floats.Max(res.Grid); got > *exp.GridMaxMW+tol {
			t.Errorf("scenario %s expected grid <= %v MW, got %v", sc.Name, *exp.GridMaxMW, got)
		}
	}
	if exp.GridEqualsSolar && !floats.EqualApprox(res.Grid, res.Solar, tol) {
		t.Errorf("scenario %s expected grid to equal solar", sc.Name)
	}
	if exp.IdleBattery {
		for i, v := range res.Battery {
			if math.Abs(v) > tol {
				t.Errorf("scenario %s expected idle battery, step %d moved %v MW", sc.Name, i, v)
				break
			}
		}
	}
	for k, want := range exp.Metrics {
		got, ok := val.Metrics[k]
		if !ok {
			t.Errorf("scenario %s missing metric %s", sc.Name, k)
			continue
		}
		if math.Abs(got-want) > math.Max(tol, 1e-6*math.Abs(want)) {
			t.Errorf("scenario %s metric %s expected %v, got %v", sc.Name, k, want, got)
		}
	}
}

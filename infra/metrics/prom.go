package metrics

import (
	"errors"
	"strconv"

	coremetrics "github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/model"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records run summaries in Prometheus metrics.
type PromSink struct {
	runs       *prometheus.CounterVec
	efficiency *prometheus.GaugeVec
	cycles     *prometheus.HistogramVec
	curtailed  *prometheus.CounterVec
	delivered  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	sweeps     *prometheus.CounterVec
	feasible   *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bess_runs_total",
			Help: "Total number of simulation runs by strategy and validity",
		}, []string{"strategy", "valid"}),
		efficiency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bess_run_efficiency_ratio",
			Help: "Delivered over solar energy of the last run",
		}, []string{"strategy"}),
		cycles: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bess_run_cycles",
			Help:    "Equivalent full cycles per run",
			Buckets: []float64{0.5, 1, 2, 5, 10, 50, 100, 365},
		}, []string{"strategy"}),
		curtailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bess_curtailed_energy_mwh_total",
			Help: "Curtailed energy accumulated over all runs",
		}, []string{"strategy"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bess_delivered_energy_mwh_total",
			Help: "Grid energy accumulated over all runs",
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bess_run_duration_seconds",
			Help:    "Wall clock time spent per run",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bess_sweep_jobs_total",
			Help: "Jobs executed by sizing and Monte Carlo sweeps",
		}, []string{"kind", "outcome"}),
		feasible: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bess_sweep_feasible_configurations",
			Help: "Feasible configurations found by the last sweep",
		}, []string{"kind"}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.efficiency, err = register(reg, s.efficiency); err != nil {
		return nil, err
	}
	if s.cycles, err = register(reg, s.cycles); err != nil {
		return nil, err
	}
	if s.curtailed, err = register(reg, s.curtailed); err != nil {
		return nil, err
	}
	if s.delivered, err = register(reg, s.delivered); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.sweeps, err = register(reg, s.sweeps); err != nil {
		return nil, err
	}
	if s.feasible, err = register(reg, s.feasible); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates counters and gauges from one run summary.
func (s *PromSink) RecordRun(r model.RunSummary) error {
	strategy := r.Strategy.String()
	s.runs.WithLabelValues(strategy, strconv.FormatBool(r.Valid)).Inc()
	s.efficiency.WithLabelValues(strategy).Set(r.Efficiency)
	s.cycles.WithLabelValues(strategy).Observe(r.Cycles)
	if r.CurtailedMWh > 0 {
		s.curtailed.WithLabelValues(strategy).Add(r.CurtailedMWh)
	}
	if r.DeliveredMWh > 0 {
		s.delivered.WithLabelValues(strategy).Add(r.DeliveredMWh)
	}
	s.duration.WithLabelValues(strategy).Observe(r.Duration.Seconds())
	return nil
}

// RecordSweep counts sweep jobs by outcome.
func (s *PromSink) RecordSweep(sw coremetrics.SweepSummary) error {
	ok := sw.Jobs - sw.Failed
	if ok > 0 {
		s.sweeps.WithLabelValues(sw.Kind, "ok").Add(float64(ok))
	}
	if sw.Failed > 0 {
		s.sweeps.WithLabelValues(sw.Kind, "failed").Add(float64(sw.Failed))
	}
	s.feasible.WithLabelValues(sw.Kind).Set(float64(sw.Feasible))
	return nil
}

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal         *prometheus.CounterVec
	balanceViolations *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bess_executor_runs_total",
			Help: "Runs handled by the executor by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)
	bal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bess_balance_violations_total",
			Help: "Timesteps whose energy balance exceeded the tolerance",
		},
		[]string{"strategy"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bess_executor_run_seconds",
			Help:    "Time spent dispatching and validating one run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	return runs, bal, dur
}

func init() {
	runsTotal, balanceViolations, runDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers executor metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runsTotal, balanceViolations, runDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runsTotal, balanceViolations, runDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

package metrics

import "github.com/kilianp07/bessim/core/model"

// MetricsSink records run summaries for observability purposes.
type MetricsSink interface {
	RecordRun(s model.RunSummary) error
}

// SweepSummary captures the outcome of one sweep.
type SweepSummary struct {
	Kind     string
	Jobs     int
	Failed   int
	Feasible int
}

// SweepRecorder is implemented by sinks able to record sweep outcomes.
type SweepRecorder interface {
	RecordSweep(s SweepSummary) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(model.RunSummary) error { return nil }
func (NopSink) RecordSweep(SweepSummary) error   { return nil }

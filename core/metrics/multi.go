package metrics

import (
	"errors"

	"github.com/kilianp07/bessim/core/model"
)

// MultiSink fans run summaries out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the summary to every sink and joins their errors.
func (m *MultiSink) RecordRun(s model.RunSummary) error {
	var errs []error
	for _, sink := range m.Sinks {
		if err := sink.RecordRun(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordSweep forwards sweep outcomes when supported by the sink.
func (m *MultiSink) RecordSweep(s SweepSummary) error {
	var errs []error
	for _, sink := range m.Sinks {
		if rec, ok := sink.(SweepRecorder); ok {
			if err := rec.RecordSweep(s); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

package metrics

import (
	"errors"
	"testing"

	"github.com/kilianp07/bessim/core/model"
)

type recordSink struct {
	runs   int
	sweeps int
	err    error
}

func (r *recordSink) RecordRun(model.RunSummary) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordSweep(SweepSummary) error {
	r.sweeps++
	return nil
}

type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(model.RunSummary) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnlySink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(model.RunSummary{RunID: "r"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordSweep(SweepSummary{Kind: "sizing"}); err != nil {
		t.Fatalf("record sweep: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 || s1.sweeps != 1 {
		t.Fatalf("summaries not forwarded")
	}
}

func TestMultiSink_ContinuesAfterError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &runOnlySink{}
	err := NewMultiSink(s1, s2).RecordRun(model.RunSummary{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if s2.runs != 1 {
		t.Fatalf("second sink skipped after first failed")
	}
}

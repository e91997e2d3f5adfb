package events

import (
	"github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/model"
)

// RunEvent is published once per executed run. Err is set when the run
// aborted; Summary is then only partially filled.
type RunEvent struct {
	Summary model.RunSummary
	Err     error
}

// SweepEvent is published when a sizing or Monte Carlo sweep completes.
type SweepEvent struct {
	Summary metrics.SweepSummary
}

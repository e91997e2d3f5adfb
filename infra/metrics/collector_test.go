package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/core/events"
	coremetrics "github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/internal/eventbus"
)

type recordingSink struct {
	mu     sync.Mutex
	runs   []model.RunSummary
	sweeps []coremetrics.SweepSummary
}

func (r *recordingSink) RecordRun(s model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, s)
	return nil
}

func (r *recordingSink) RecordSweep(s coremetrics.SweepSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps = append(r.sweeps, s)
	return nil
}

func (r *recordingSink) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs), len(r.sweeps)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New[events.RunEvent](4)
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(events.RunEvent{Summary: model.RunSummary{RunID: "a"}})
	bus.Publish(events.RunEvent{Summary: model.RunSummary{RunID: "b"}, Err: errors.New("boom")})
	bus.Publish(events.RunEvent{Summary: model.RunSummary{RunID: "c"}})

	require.Eventually(t, func() bool {
		n, _ := sink.counts()
		return n == 2
	}, time.Second, 5*time.Millisecond)

	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after bus close")
	}
	assert.Equal(t, "a", sink.runs[0].RunID)
	assert.Equal(t, "c", sink.runs[1].RunID)
}

func TestStartSweepCollector(t *testing.T) {
	bus := eventbus.New[events.SweepEvent](1)
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartSweepCollector(ctx, bus, sink)

	bus.Publish(events.SweepEvent{Summary: coremetrics.SweepSummary{Kind: "monte_carlo", Jobs: 3}})
	require.Eventually(t, func() bool {
		_, n := sink.counts()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestStartEventCollector_NilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, coremetrics.NopSink{})
	_, open := <-done
	assert.False(t, open)
}

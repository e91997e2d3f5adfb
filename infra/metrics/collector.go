package metrics

import (
	"context"

	"github.com/kilianp07/bessim/core/events"
	coremetrics "github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/internal/eventbus"
)

// StartEventCollector subscribes to the run bus and records every
// successful run on the sink. It stops when the context is canceled or the
// bus is closed. The returned channel is closed once the collector exits.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.RunEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Err != nil {
					continue
				}
				_ = sink.RecordRun(ev.Summary)
			}
		}
	}()
	return done
}

// StartSweepCollector forwards sweep events to sinks that record sweeps.
func StartSweepCollector(ctx context.Context, bus *eventbus.Bus[events.SweepEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.SweepRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = rec.RecordSweep(ev.Summary)
			}
		}
	}()
	return done
}

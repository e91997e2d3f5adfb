package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/bessim/core/events"
	"github.com/kilianp07/bessim/core/model"
	coremqtt "github.com/kilianp07/bessim/core/mqtt"
	"github.com/kilianp07/bessim/infra/logger"
	"github.com/kilianp07/bessim/internal/eventbus"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages []model.RunSummary
	FailIDs  map[string]bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailIDs: make(map[string]bool)}
}

// PublishRun records the summary or returns an error if configured to fail.
func (m *MockPublisher) PublishRun(s model.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[s.RunID] {
		return fmt.Errorf("publish failed")
	}
	m.Messages = append(m.Messages, s)
	return nil
}

// Published returns a copy of the recorded summaries.
func (m *MockPublisher) Published() []model.RunSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RunSummary(nil), m.Messages...)
}

// Forward publishes every successful run event until ctx is canceled or the
// bus closes. Publish failures are logged and do not stop forwarding.
func Forward(ctx context.Context, bus *eventbus.Bus[events.RunEvent], pub Publisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
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
				if err := pub.PublishRun(ev.Summary); err != nil {
					log.Warnf("mqtt publish of run %s failed: %v", ev.Summary.RunID, err)
				}
			}
		}
	}()
	return done
}

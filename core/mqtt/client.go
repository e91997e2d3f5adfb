package mqtt

import "github.com/kilianp07/bessim/core/model"

// Publisher pushes run summaries to an MQTT broker for dashboards.
type Publisher interface {
	// PublishRun sends one summary. It returns once the broker accepted it
	// at the configured QoS or the retries are exhausted.
	PublishRun(s model.RunSummary) error
}

// DefaultTopicPrefix is the root under which summaries are published as
// <prefix>/<strategy>/summary.
const DefaultTopicPrefix = "bess/runs"

// Package validation judges completed runs against technology delivery
// guarantees and derives compliance metrics and learning features.
package validation

import "github.com/kilianp07/bessim/core/model"

// SizingSafetyMargin inflates sizing suggestions.
const SizingSafetyMargin = 0.10

const epsilon = 1e-12

// Threshold is the acceptance envelope of one technology.
type Threshold struct {
	MinEfficiency float64 `json:"min_efficiency"`
	MaxLoss       float64 `json:"max_loss"`
}

var thresholds = map[model.Technology]Threshold{
	model.TechnologyStandard:  {MinEfficiency: 0.90, MaxLoss: 0.10},
	model.TechnologyModernLFP: {MinEfficiency: 0.93, MaxLoss: 0.07},
	model.TechnologyPremium:   {MinEfficiency: 0.95, MaxLoss: 0.05},
}

// ThresholdFor returns the envelope for tech, falling back to modern_lfp.
func ThresholdFor(tech model.Technology) Threshold {
	return thresholds[model.ParseTechnology(string(tech))]
}

// Passes reports whether efficiency and loss fraction meet the envelope.
func (t Threshold) Passes(efficiency, lossFraction float64) bool {
	return efficiency >= t.MinEfficiency-epsilon && lossFraction <= t.MaxLoss+epsilon
}

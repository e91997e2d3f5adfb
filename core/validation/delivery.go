package validation

import (
	"fmt"
	"math"

	"github.com/kilianp07/bessim/core/model"
)

// ValidateEnergyDelivery compares delivered energy with the solar energy
// that produced it. All quantities are MWh over the same horizon.
func ValidateEnergyDelivery(tech model.Technology, solarMWh, deliveredMWh, curtailedMWh float64) model.ValidationResult {
	tech = model.ParseTechnology(string(tech))
	th := ThresholdFor(tech)
	res := model.ValidationResult{
		Technology: tech,
		Metrics:    map[string]float64{},
		Features:   map[string]float64{},
	}
	if !(solarMWh > 0) {
		res.Diagnosis = "no solar energy to deliver"
		return res
	}
	losses := math.Max(0, solarMWh-deliveredMWh-curtailedMWh)
	res.Efficiency = deliveredMWh / solarMWh
	res.LossFraction = losses / solarMWh
	res.Valid = th.Passes(res.Efficiency, res.LossFraction)
	if res.Valid {
		res.Diagnosis = fmt.Sprintf("efficiency %.1f%% meets the %.1f%% minimum for %s",
			100*res.Efficiency, 100*th.MinEfficiency, tech)
		return res
	}
	res.Diagnosis = diagnose(tech, th, res.Efficiency, res.LossFraction)
	res.Suggestions = suggest(tech, th, solarMWh, deliveredMWh, curtailedMWh, losses)
	return res
}

func diagnose(tech model.Technology, th Threshold, eff, loss float64) string {
	switch {
	case eff < th.MinEfficiency-epsilon && loss > th.MaxLoss+epsilon:
		return fmt.Sprintf("efficiency %.1f%% below the %.1f%% minimum and losses %.1f%% above the %.1f%% maximum for %s",
			100*eff, 100*th.MinEfficiency, 100*loss, 100*th.MaxLoss, tech)
	case eff < th.MinEfficiency-epsilon:
		return fmt.Sprintf("efficiency %.1f%% below the %.1f%% minimum for %s", 100*eff, 100*th.MinEfficiency, tech)
	default:
		return fmt.Sprintf("losses %.1f%% above the %.1f%% maximum for %s", 100*loss, 100*th.MaxLoss, tech)
	}
}

// suggest orders remediations: losses, curtailment, battery size, then
// technology.
func suggest(tech model.Technology, th Threshold, solar, delivered, curtailed, losses float64) []string {
	var out []string
	if excess := losses - th.MaxLoss*solar; excess > epsilon*solar {
		out = append(out, fmt.Sprintf("reduce losses by %.2f MWh to stay within %.1f%%", excess, 100*th.MaxLoss))
	}
	shortfall := th.MinEfficiency*solar - delivered
	if curtailed > 0 && shortfall > 0 {
		out = append(out, fmt.Sprintf("reduce curtailment: %.2f MWh was discarded, %.2f MWh more delivery is needed",
			curtailed, shortfall))
	}
	if shortfall > 0 {
		out = append(out, fmt.Sprintf("increase battery size by about %.2f MWh",
			shortfall*(1+SizingSafetyMargin)))
	}
	if next, ok := tech.Next(); ok {
		out = append(out, fmt.Sprintf("upgrade technology to %s (%.0f%% round trip)",
			next, 100*next.Parameters().RoundTrip()))
	}
	return out
}

package runner

import (
	"time"

	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runlog"
)

// Report is everything the executor learned about one run.
type Report struct {
	RunID      string                     `json:"run_id"`
	Strategy   model.StrategyKind         `json:"strategy"`
	Battery    model.BatteryConfiguration `json:"battery"`
	Result     *model.SimulationResult    `json:"result"`
	Validation model.ValidationResult     `json:"validation"`
	Stats      Stats                      `json:"stats"`
	Started    time.Time                  `json:"started"`
	Duration   time.Duration              `json:"duration"`
}

// Valid reports whether the energy-delivery check passed and the balance
// walk found nothing.
func (r *Report) Valid() bool {
	return r.Validation.Valid && len(r.Validation.BalanceViolations) == 0
}

// Summary flattens the report for sinks and publishers.
func (r *Report) Summary() model.RunSummary {
	m := r.Validation.Metrics
	return model.RunSummary{
		RunID:                r.RunID,
		Strategy:             r.Strategy,
		Battery:              r.Battery,
		Steps:                r.Result.Len(),
		DtHours:              r.Result.DtHours,
		SolarMWh:             m["total_solar_energy_mwh"],
		DeliveredMWh:         m["total_delivered_energy_mwh"],
		CurtailedMWh:         m["total_curtailed_energy_mwh"],
		LossMWh:              r.Stats.LossMWh,
		Cycles:               r.Stats.Cycles,
		RoundTrip:            r.Stats.RoundTrip,
		Utilization:          r.Stats.Utilization,
		VariabilityReduction: r.Stats.VariabilityReduction,
		PeakShavingMW:        r.Stats.PeakShavingMW,
		Efficiency:           r.Validation.Efficiency,
		LossFraction:         r.Validation.LossFraction,
		Valid:                r.Valid(),
		BalanceViolations:    len(r.Validation.BalanceViolations),
		Duration:             r.Duration,
		Time:                 r.Started,
	}
}

// Record converts the report to a run log entry.
func (r *Report) Record() runlog.Record {
	s := r.Summary()
	return runlog.Record{
		RunID:             s.RunID,
		Timestamp:         s.Time,
		Strategy:          s.Strategy,
		Battery:           s.Battery,
		Steps:             s.Steps,
		DtHours:           s.DtHours,
		SolarMWh:          s.SolarMWh,
		DeliveredMWh:      s.DeliveredMWh,
		CurtailedMWh:      s.CurtailedMWh,
		LossMWh:           s.LossMWh,
		Cycles:            s.Cycles,
		Efficiency:        s.Efficiency,
		Valid:             s.Valid,
		Diagnosis:         r.Validation.Diagnosis,
		BalanceViolations: s.BalanceViolations,
		Metrics:           r.Validation.Metrics,
	}
}

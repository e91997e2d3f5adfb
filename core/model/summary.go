package model

import "time"

// RunSummary is the flat per-run record shared with metrics sinks, the
// event bus and the run log.
type RunSummary struct {
	RunID                string               `json:"run_id"`
	Strategy             StrategyKind         `json:"strategy"`
	Battery              BatteryConfiguration `json:"battery"`
	Steps                int                  `json:"steps"`
	DtHours              float64              `json:"dt_hours"`
	SolarMWh             float64              `json:"solar_mwh"`
	DeliveredMWh         float64              `json:"delivered_mwh"`
	CurtailedMWh         float64              `json:"curtailed_mwh"`
	LossMWh              float64              `json:"loss_mwh"`
	Cycles               float64              `json:"cycles"`
	RoundTrip            float64              `json:"round_trip"`
	Utilization          float64              `json:"utilization"`
	VariabilityReduction float64              `json:"variability_reduction"`
	PeakShavingMW        float64              `json:"peak_shaving_mw"`
	Efficiency           float64              `json:"efficiency"`
	LossFraction         float64              `json:"loss_fraction"`
	Valid                bool                 `json:"valid"`
	BalanceViolations    int                  `json:"balance_violations"`
	Duration             time.Duration        `json:"duration"`
	Time                 time.Time            `json:"time"`
}

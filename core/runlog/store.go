// Package runlog persists one summary record per simulation run.
package runlog

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/bessim/core/model"
)

// Record summarizes one completed run.
type Record struct {
	RunID             string                     `json:"run_id"`
	Timestamp         time.Time                  `json:"timestamp"`
	Strategy          model.StrategyKind         `json:"strategy"`
	Battery           model.BatteryConfiguration `json:"battery"`
	Steps             int                        `json:"steps"`
	DtHours           float64                    `json:"dt_hours"`
	SolarMWh          float64                    `json:"solar_mwh"`
	DeliveredMWh      float64                    `json:"delivered_mwh"`
	CurtailedMWh      float64                    `json:"curtailed_mwh"`
	LossMWh           float64                    `json:"loss_mwh"`
	Cycles            float64                    `json:"cycles"`
	Efficiency        float64                    `json:"efficiency"`
	Valid             bool                       `json:"valid"`
	Diagnosis         string                     `json:"diagnosis"`
	BalanceViolations int                        `json:"balance_violations"`
	Metrics           map[string]float64         `json:"metrics,omitempty"`
}

// Query filters records. Zero values match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	Strategy  model.StrategyKind
	ValidOnly bool
	// Limit keeps only the newest Limit records when positive.
	Limit int
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	if q.ValidOnly && !r.Valid {
		return false
	}
	return true
}

// window sorts recs oldest first and trims them to q.Limit.
func (q Query) window(recs []Record) []Record {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Timestamp.Before(recs[j].Timestamp) })
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }

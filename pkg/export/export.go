// Package export writes simulation results for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runner"
)

// resultHeader is the column layout of WriteResultCSV.
var resultHeader = []string{"step", "hour", "solar_mw", "grid_mw", "battery_mw", "soc", "curtailed_mw", "loss_mwh"}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, rep *runner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteResultCSV writes one row per timestep. Hours are counted from the
// start of the series.
func WriteResultCSV(w io.Writer, res *model.SimulationResult) error {
	cw := csv.NewWriter(w)
	header := resultHeader
	firm := res.Firm != nil
	if firm {
		header = append(append([]string(nil), header...), "target_mw", "direct_solar_mw", "solar_to_battery_mw", "battery_to_grid_mw")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < res.Len(); i++ {
		rec := []string{
			strconv.Itoa(i),
			fmtFloat(float64(i) * res.DtHours),
			fmtFloat(res.Solar[i]),
			fmtFloat(res.Grid[i]),
			fmtFloat(res.Battery[i]),
			fmtFloat(res.SOC[i]),
			fmtFloat(res.Curtailed[i]),
			fmtFloat(res.Loss[i]),
		}
		if firm {
			rec = append(rec,
				fmtFloat(res.Firm.Target[i]),
				fmtFloat(res.Firm.DirectSolar[i]),
				fmtFloat(res.Firm.SolarToBattery[i]),
				fmtFloat(res.Firm.BatteryToGrid[i]),
			)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummariesCSV writes one row per run summary.
func WriteSummariesCSV(w io.Writer, sums []model.RunSummary) error {
	cw := csv.NewWriter(w)
	header := []string{"run_id", "time", "strategy", "power_mw", "duration_h", "technology", "topology",
		"solar_mwh", "delivered_mwh", "curtailed_mwh", "loss_mwh", "efficiency", "cycles", "valid"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sums {
		b := s.Battery.Normalized()
		rec := []string{
			s.RunID,
			s.Time.Format(time.RFC3339),
			s.Strategy.String(),
			fmtFloat(b.PowerMW),
			fmtFloat(b.DurationHours),
			string(b.Technology),
			string(b.Topology),
			fmtFloat(s.SolarMWh),
			fmtFloat(s.DeliveredMWh),
			fmtFloat(s.CurtailedMWh),
			fmtFloat(s.LossMWh),
			fmtFloat(s.Efficiency),
			fmtFloat(s.Cycles),
			strconv.FormatBool(s.Valid),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

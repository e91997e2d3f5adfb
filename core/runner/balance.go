package runner

import (
	"math"

	"github.com/kilianp07/bessim/core/model"
)

// DefaultTolerance is the balance residual, in MW, above which a step is
// recorded as a violation.
const DefaultTolerance = 1e-9

// CheckBalance walks every step and records those where
// solar != grid + curtailed + charge - discharge within tol.
func CheckBalance(res *model.SimulationResult, tol float64) []model.BalanceViolation {
	var out []model.BalanceViolation
	for i := 0; i < res.Len(); i++ {
		charge, discharge := res.ChargeMW(i), res.DischargeMW(i)
		residual := res.Solar[i] - (res.Grid[i] + res.Curtailed[i] + charge - discharge)
		if math.Abs(residual) > tol {
			out = append(out, model.BalanceViolation{
				Index:       i,
				ResidualMW:  residual,
				SolarMW:     res.Solar[i],
				GridMW:      res.Grid[i],
				CurtailedMW: res.Curtailed[i],
				ChargeMW:    charge,
				DischargeMW: discharge,
			})
		}
	}
	return out
}

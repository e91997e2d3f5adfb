package dispatch

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const maxAllocationRounds = 16

// ErrInfeasible indicates the LP had no feasible solution meeting the target.
var ErrInfeasible = errors.New("lp infeasible")

type slot struct {
	idx      int
	weight   float64
	capacity float64
}

// allocateWeighted spreads target over slots in proportion to weights,
// redistributing what saturated slots could not take in further rounds.
func allocateWeighted(weights, caps []float64, target float64) []float64 {
	out := make([]float64, len(caps))
	list := make([]slot, 0, len(caps))
	weightSum := 0.0
	for i := range caps {
		if caps[i] <= 0 || weights[i] <= 0 {
			continue
		}
		list = append(list, slot{idx: i, weight: weights[i], capacity: caps[i]})
		weightSum += weights[i]
	}
	remaining := target
	for rounds := 0; rounds < maxAllocationRounds && remaining > 1e-12 && len(list) > 0; rounds++ {
		var consumed float64
		list, weightSum, remaining, consumed = allocateRound(list, weightSum, remaining, out)
		if consumed == 0 {
			break
		}
	}
	return out
}

func allocateRound(list []slot, weightSum, remaining float64, out []float64) ([]slot, float64, float64, float64) {
	consumed := 0.0
	budget := remaining
	next := list[:0]
	for _, c := range list {
		if remaining <= 0 || weightSum <= 0 {
			break
		}
		share := budget * (c.weight / weightSum)
		if share >= c.capacity {
			out[c.idx] += c.capacity
			consumed += c.capacity
			remaining -= c.capacity
		} else {
			out[c.idx] += share
			c.capacity -= share
			consumed += share
			remaining -= share
			next = append(next, c)
		}
	}
	nextSum := 0.0
	for _, c := range next {
		nextSum += c.weight
	}
	return next, nextSum, remaining, consumed
}

// solveLP maximises the weighted allocation subject to per-slot capacities
// and a total equal to target. Variables are the allocations followed by
// one slack per capacity row.
func solveLP(weights, caps []float64, target float64) ([]float64, error) {
	n := len(caps)
	c := make([]float64, 2*n)
	for i, w := range weights {
		c[i] = -w
	}
	A := mat.NewDense(n+1, 2*n, nil)
	b := make([]float64, n+1)
	for i, cp := range caps {
		A.Set(i, i, 1)
		A.Set(i, n+i, 1)
		b[i] = cp
		A.Set(n, i, 1)
	}
	b[n] = target
	_, sol, err := lp.Simplex(c, A, b, 1e-9, nil)
	if err != nil {
		return nil, err
	}
	return sol[:n], nil
}

// lpSolve points to the function used to solve the LP. It can be overridden in
// tests to simulate solver failures.
var lpSolve = solveLP

// allocateLP solves the allocation exactly and reports ErrInfeasible when
// the solver fails or misses the target.
func allocateLP(weights, caps []float64, target float64) ([]float64, error) {
	sol, err := lpSolve(weights, caps, target)
	if err != nil {
		return nil, errors.Join(ErrInfeasible, err)
	}
	out := make([]float64, len(caps))
	var sum float64
	for i := range out {
		out[i] = math.Min(caps[i], math.Max(0, sol[i]))
		sum += out[i]
	}
	if math.Abs(sum-target) > 1e-6*math.Max(1, target) {
		return nil, ErrInfeasible
	}
	return out, nil
}

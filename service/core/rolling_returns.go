package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/guregu/null/v6"
)

// CalculateRollingReturns compounds each trailing window of period returns:
// out[i] = (1+r[i-window+1]) * ... * (1+r[i]) - 1.
// out[i] is undefined while the window is not yet full, and whenever any return inside it is undefined.
// The input is never modified.
func CalculateRollingReturns(returns []null.Float, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be at least 1, got %d", ErrInvalidArgument, window)
	}

	// a one period compounded return is the period return itself, copy to avoid (1+r)-1 rounding
	if window == 1 {
		res := slices.Clone(returns)
		for i, r := range res {
			if isGap(r) {
				res[i] = null.Float{}
			}
		}
		if res == nil {
			res = []null.Float{}
		}
		return res, nil
	}

	res := make([]null.Float, len(returns))
	lastGap := -1 // most recent undefined position seen so far
	for i, r := range returns {
		if isGap(r) {
			lastGap = i
		}

		// zero value of null.Float is already undefined
		if i < window-1 || lastGap > i-window {
			continue
		}

		product := 1.0
		for _, p := range returns[i-window+1 : i+1] {
			product *= 1 + p.Float64
		}
		res[i] = null.FloatFrom(product - 1)
	}

	return res, nil
}

// AnnualizeReturn converts a compounded return over periods into its per year equivalent
func AnnualizeReturn(cumulative float64, periods, periodsPerYear int) float64 {
	if periods <= 0 || periodsPerYear <= 0 || cumulative <= -1 {
		return math.NaN()
	}
	years := float64(periods) / float64(periodsPerYear)
	return math.Pow(1+cumulative, 1/years) - 1
}

func isGap(r null.Float) bool {
	return !r.Valid || math.IsNaN(r.Float64)
}

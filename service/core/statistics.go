package core

import (
	"math"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	ex "github.com/ximlor/inv-nbs/data/extensions"
	sm "github.com/ximlor/inv-nbs/service/models"
)

// Summarize describes the defined values of a series, undefined entries are dropped first.
// StdDev is the sample standard deviation and stays 0 with fewer than two values.
func Summarize(column string, values []null.Float) sm.SummaryStatistics {
	defined := ex.Map(ex.FilterMultiple(values, func(v null.Float) bool { return !isGap(v) }),
		func(v null.Float) float64 { return v.Float64 })

	res := sm.SummaryStatistics{
		Column: column,
		Count:  len(defined),
	}
	if res.Count == 0 {
		res.Empty = true
		return res
	}

	res.Mean = stat.Mean(defined, nil)
	res.Min = floats.Min(defined)
	res.Max = floats.Max(defined)
	if res.Count > 1 {
		res.StdDev = stat.StdDev(defined, nil)
	}

	return res
}

// SummarizeRolling is Summarize plus the annualized equivalent of the mean window return
func SummarizeRolling(column string, values []null.Float, window, periodsPerYear int) sm.SummaryStatistics {
	res := Summarize(column, values)
	if res.Empty {
		return res
	}

	if annualized := AnnualizeReturn(res.Mean, window, periodsPerYear); !math.IsNaN(annualized) {
		res.AnnualizedMean = annualized
	}
	return res
}

package models

import (
	"github.com/guregu/null/v6"
)

const ( // periods per year for the supported return frequencies
	Daily     = 252
	Weekly    = 52
	Monthly   = 12
	Quarterly = 4
	Yearly    = 1
)

// RollingReturnRequest is the body of the rolling return endpoints, null entries are gaps
type RollingReturnRequest struct {
	Returns []null.Float `json:"returns"`
	Window  int          `json:"window"`
}

type RollingReturnResponse struct {
	Window int          `json:"window"`
	Values []null.Float `json:"values"`
}

// RollingReturnSeries is the derived output for one asset column
type RollingReturnSeries struct {
	Asset  string
	Column string
	Window int
	Values []null.Float
}

// FrequencyToString returns the unit name used in column suffixes and logs
func FrequencyToString(periodsPerYear int) string {
	switch periodsPerYear {
	case Daily:
		return "days"
	case Weekly:
		return "weeks"
	case Monthly:
		return "months"
	case Quarterly:
		return "quarters"
	case Yearly:
		return "years"
	default:
		return "periods"
	}
}

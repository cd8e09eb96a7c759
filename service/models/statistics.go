package models

// SummaryStatistics describes the defined values of one rolling return column
type SummaryStatistics struct {
	Column         string  `json:"column"`
	Count          int     `json:"count"`
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"stdDev"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	AnnualizedMean float64 `json:"annualizedMean"`
	Empty          bool    `json:"empty"`
}

// RunReport is everything the console report needs after a run
type RunReport struct {
	InputRows    int
	InputColumns int
	Output       string
	Header       []string
	SampleRows   [][]string // period column followed by the derived columns
	Summaries    []SummaryStatistics
}

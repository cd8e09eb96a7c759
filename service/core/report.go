package core

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	sm "github.com/ximlor/inv-nbs/service/models"
)

// WriteReport prints the run summary: table shape, the first sample rows of the derived columns
// and descriptive statistics per derived column. Columns with no defined values are skipped.
func WriteReport(w io.Writer, report *sm.RunReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Loaded %d rows and %d columns\n", report.InputRows, report.InputColumns)
	if report.Output != "" {
		fmt.Fprintf(&b, "Saved rolling returns to %s\n", report.Output)
	}

	if len(report.SampleRows) > 0 {
		fmt.Fprintf(&b, "\nFirst %d rows:\n", len(report.SampleRows))

		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, strings.Join(report.Header, "\t")+"\t")
		for _, row := range report.SampleRows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = c
				if c == "" {
					cells[i] = "NaN"
				}
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, s := range report.Summaries {
		if s.Empty {
			continue
		}

		fmt.Fprintf(&b, "\nSummary statistics for %s:\n", s.Column)
		fmt.Fprintf(&b, "  Count: %d\n", s.Count)
		fmt.Fprintf(&b, "  Mean: %.6f (%.2f%%)\n", s.Mean, s.Mean*100)
		fmt.Fprintf(&b, "  Annualized mean: %.2f%%\n", s.AnnualizedMean*100)
		fmt.Fprintf(&b, "  Std: %.6f\n", s.StdDev)
		fmt.Fprintf(&b, "  Min: %.2f%%\n", s.Min*100)
		fmt.Fprintf(&b, "  Max: %.2f%%\n", s.Max*100)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

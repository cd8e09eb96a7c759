package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/ximlor/inv-nbs/data/extensions"
	sm "github.com/ximlor/inv-nbs/service/models"
	"github.com/ximlor/inv-nbs/service/tables"
)

const shuffledReturns = `Year,S&P 500,Gold*
1931,-43.84%,-2.00%
1928,43.81%,0.10%
1930,-25.12%,5.00%
1929,-8.30%,
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "returns.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// compound multiplies at runtime in input order, the way the calculator does
func compound(returns ...float64) float64 {
	product := 1.0
	for _, r := range returns {
		product *= 1 + r
	}
	return product - 1
}

func newServiceContext(input, output string) *ServiceContext {
	return &ServiceContext{
		Context: context.Background(),
		Source:  &tables.CSVSource{Path: input},
		Sink:    &tables.CSVSink{Path: output},
	}
}

func TestRunWritesSortedAugmentedTable(t *testing.T) {
	input := writeInput(t, shuffledReturns)
	output := filepath.Join(t.TempDir(), "out", "rolling.csv")

	sc := newServiceContext(input, output)
	report, err := sc.Run(Settings{PeriodColumn: "Year", Window: 2, PeriodsPerYear: sm.Yearly, SampleRows: 3, Workers: 2})
	require.NoError(t, err)

	got, err := (&tables.CSVSource{Path: output}).Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", "S&P 500", "Gold*", "S&P 500_2yr_rolling_return", "Gold*_2yr_rolling_return"}, got.Header)
	ex.AssertAreEqual(t, "rows", 4, len(got.Rows))
	assert.Equal(t, []string{"1928", "0.4381", "0.001", "", ""}, got.Rows[0])
	assert.Equal(t, []string{"1929", "-0.083", "", FormatReturn(floatsOf(compound(0.4381, -0.083))[0]), ""}, got.Rows[1])
	ex.AssertAreEqual(t, "gold after gap", "", got.Rows[2][4])
	ex.AssertAreEqual(t, "gold", FormatReturn(floatsOf(compound(0.05, -0.02))[0]), got.Rows[3][4])

	ex.AssertAreEqual(t, "input rows", 4, report.InputRows)
	ex.AssertAreEqual(t, "input columns", 3, report.InputColumns)
	ex.AssertAreEqual(t, "output", output, report.Output)
	assert.Equal(t, []string{"Year", "S&P 500_2yr_rolling_return", "Gold*_2yr_rolling_return"}, report.Header)
	ex.AssertAreEqual(t, "sample rows", 3, len(report.SampleRows))
	ex.AssertAreEqual(t, "sample period", "1930", report.SampleRows[2][0])

	require.Len(t, report.Summaries, 2)
	ex.AssertAreEqual(t, "spx count", 3, report.Summaries[0].Count)
	ex.AssertAreEqual(t, "gold count", 1, report.Summaries[1].Count)
}

func TestRunSelectedAssetsAndSuffix(t *testing.T) {
	input := writeInput(t, shuffledReturns)
	output := filepath.Join(t.TempDir(), "rolling.csv")

	sc := newServiceContext(input, output)
	_, err := sc.Run(Settings{PeriodColumn: "Year", Assets: []string{"Gold*"}, Window: 3, Suffix: "_3y"})
	require.NoError(t, err)

	got, err := (&tables.CSVSource{Path: output}).Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", "S&P 500", "Gold*", "Gold*_3y"}, got.Header)
	// non asset columns pass through untouched
	ex.AssertAreEqual(t, "untouched", "43.81%", got.Rows[0][1])
}

func TestRunMalformedCellWritesNothing(t *testing.T) {
	input := writeInput(t, shuffledReturns+"1932,oops,1%\n")
	output := filepath.Join(t.TempDir(), "rolling.csv")

	sc := newServiceContext(input, output)
	_, err := sc.Run(Settings{PeriodColumn: "Year", Window: 2})
	require.ErrorIs(t, err, ErrMalformedValue)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunLenientWritesMalformedAsBlank(t *testing.T) {
	input := writeInput(t, shuffledReturns+"1932,oops,1%\n")
	output := filepath.Join(t.TempDir(), "rolling.csv")

	sc := newServiceContext(input, output)
	_, err := sc.Run(Settings{PeriodColumn: "Year", Window: 2, Lenient: true})
	require.NoError(t, err)

	got, err := (&tables.CSVSource{Path: output}).Read(context.Background())
	require.NoError(t, err)
	ex.AssertAreEqual(t, "malformed", "", got.Rows[4][1])
	ex.AssertAreEqual(t, "window with malformed", "", got.Rows[4][3])
}

func TestRunRejectsInvalidWindow(t *testing.T) {
	input := writeInput(t, shuffledReturns)
	output := filepath.Join(t.TempDir(), "rolling.csv")

	sc := newServiceContext(input, output)
	_, err := sc.Run(Settings{PeriodColumn: "Year", Window: 0})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCancelledContext(t *testing.T) {
	input := writeInput(t, shuffledReturns)
	output := filepath.Join(t.TempDir(), "rolling.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := newServiceContext(input, output)
	sc.Context = ctx
	_, err := sc.Run(Settings{PeriodColumn: "Year", Window: 2})
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

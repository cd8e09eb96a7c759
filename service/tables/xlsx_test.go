package tables

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	ex "github.com/ximlor/inv-nbs/data/extensions"
)

func TestXLSXSinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "returns.xlsx")

	tbl := &Table{
		Header: []string{"Year", "A", "Note", "A_2yr_rolling_return"},
		Rows: [][]string{
			{"1928", "0.1", "first", ""},
			{"1929", "0.2", "", "0.32"},
		},
	}

	require.NoError(t, (&XLSXSink{Path: path, Sheet: "Returns"}).Write(ctx, tbl))

	// blanks stay blank
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	ex.AssertAreEqual(t, "sheet name", "Returns", f.GetSheetList()[0])

	text, err := f.GetCellValue("Returns", "C2")
	require.NoError(t, err)
	ex.AssertAreEqual(t, "text cell", "first", text)

	blank, err := f.GetCellValue("Returns", "D2")
	require.NoError(t, err)
	ex.AssertAreEqual(t, "blank cell", "", blank)

	// first sheet is used when none is named
	got, err := (&XLSXSource{Path: path}).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)

	got, err = (&XLSXSource{Path: path, Sheet: "Returns"}).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}

func TestXLSXSourceErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := (&XLSXSource{Path: filepath.Join(dir, "missing.xlsx")}).Read(ctx)
	assert.Error(t, err)

	path := filepath.Join(dir, "returns.xlsx")
	tbl := &Table{Header: []string{"Year", "A"}, Rows: [][]string{{"1928", "0.1"}}}
	require.NoError(t, (&XLSXSink{Path: path}).Write(ctx, tbl))

	_, err = (&XLSXSource{Path: path, Sheet: "Nope"}).Read(ctx)
	assert.Error(t, err)

	// a cell past the last header column
	wide := excelize.NewFile()
	defer wide.Close()
	require.NoError(t, wide.SetSheetRow(defaultSheet, "A1", &[]any{"Year", "A"}))
	require.NoError(t, wide.SetSheetRow(defaultSheet, "A2", &[]any{"1928", "0.1", "stray"}))
	widePath := filepath.Join(dir, "wide.xlsx")
	require.NoError(t, wide.SaveAs(widePath))

	_, err = (&XLSXSource{Path: widePath}).Read(ctx)
	assert.ErrorContains(t, err, "row 2 has 3 cells")
}

func TestNewSourcePicksByExtension(t *testing.T) {
	assert.IsType(t, &XLSXSource{}, NewSource("returns.xlsx", "Sheet1"))
	assert.IsType(t, &CSVSource{}, NewSource("returns.csv", ""))
}

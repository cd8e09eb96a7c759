package tables

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/ximlor/inv-nbs/data/extensions"
)

func TestToCells(t *testing.T) {
	tbl := &Table{
		Header: []string{"Note", "Year", "Gold*", "Gold*_2yr_rolling_return"},
		Rows: [][]string{
			{"first", "1928", "0.1", ""},
			{"", "1929", "0.2", "0.32"},
		},
	}

	cells, err := ToCells(tbl, "Year", "_2yr_rolling_return")
	require.NoError(t, err)
	ex.AssertAreEqual(t, "cell count", 6, len(cells))

	note := cells[0]
	ex.AssertAreEqual(t, "note column", "Note", note.ColumnName)
	ex.AssertAreEqual(t, "note period", int32(1928), note.Period)
	ex.AssertAreEqual(t, "note position", int32(0), note.Position)
	assert.Equal(t, null.StringFrom("first"), note.RawValue)
	assert.False(t, note.Value.Valid)

	gold := cells[1]
	ex.AssertAreEqual(t, "gold position", int32(2), gold.Position)
	assert.Equal(t, null.FloatFrom(0.1), gold.Value)
	assert.False(t, gold.Derived)

	undefined := cells[2]
	assert.True(t, undefined.Derived)
	assert.False(t, undefined.Value.Valid)
	assert.False(t, undefined.RawValue.Valid)

	emptyNote := cells[3]
	assert.False(t, emptyNote.RawValue.Valid)

	rolling := cells[5]
	ex.AssertAreEqual(t, "rolling period", int32(1929), rolling.Period)
	assert.Equal(t, null.FloatFrom(0.32), rolling.Value)
	assert.True(t, rolling.Derived)
}

func TestToCellsErrors(t *testing.T) {
	tbl := &Table{Header: []string{"Year", "A"}, Rows: [][]string{{"abc", "0.1"}}}

	_, err := ToCells(tbl, "Period", "_rolling")
	assert.Error(t, err)

	_, err = ToCells(tbl, "Year", "_rolling")
	assert.Error(t, err)

	// int4 column
	tbl.Rows[0][0] = "2147483648"
	_, err = ToCells(tbl, "Year", "_rolling")
	assert.Error(t, err)
}

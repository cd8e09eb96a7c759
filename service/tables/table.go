package tables

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	ex "github.com/ximlor/inv-nbs/data/extensions"
)

// Table is a header plus rows of raw cells, every row as wide as the header
type Table struct {
	Header []string
	Rows   [][]string
}

// Source supplies the input table
type Source interface {
	Read(ctx context.Context) (*Table, error)
	Name() string
}

// Sink receives the output table, written once
type Sink interface {
	Write(ctx context.Context, t *Table) error
	Name() string
}

// ColumnIndex returns the position of name in the header, -1 if absent
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Header, name)
}

// Validate checks the header is not empty, has no duplicate names and every row matches its width
func (t *Table) Validate() error {
	if len(t.Header) == 0 {
		return fmt.Errorf("table has no header")
	}

	seen := make(map[string]bool, len(t.Header))
	for _, h := range t.Header {
		if seen[h] {
			return fmt.Errorf("duplicate column %q in header", h)
		}
		seen[h] = true
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), len(t.Header))
		}
	}
	return nil
}

const (
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatPostgres = "postgres"
)

// FormatFromPath infers the file format from the extension, csv unless it is an excel workbook
func FormatFromPath(path string) string {
	ext := filepath.Ext(path)
	if ex.AreEqual(ext, ".xlsx") || ex.AreEqual(ext, ".xlsm") {
		return FormatXLSX
	}
	return FormatCSV
}

// NewSource picks a file source for path, sheet is only used by workbooks
func NewSource(path, sheet string) Source {
	if FormatFromPath(path) == FormatXLSX {
		return &XLSXSource{Path: path, Sheet: sheet}
	}
	return &CSVSource{Path: path}
}

// NewFileSink picks a file sink for path by format, empty format means infer from the extension
func NewFileSink(path, sheet, format string) (Sink, error) {
	if format == "" {
		format = FormatFromPath(path)
	}

	switch format {
	case FormatCSV:
		return &CSVSink{Path: path}, nil
	case FormatXLSX:
		return &XLSXSink{Path: path, Sheet: sheet}, nil
	default:
		return nil, fmt.Errorf("unsupported file sink format %q", format)
	}
}

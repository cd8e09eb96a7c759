package tables

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXSource reads one sheet of a workbook, the first one when Sheet is empty
type XLSXSource struct {
	Path  string
	Sheet string
}

func (s *XLSXSource) Name() string { return s.Path }

func (s *XLSXSource) Read(ctx context.Context) (*Table, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", s.Path, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.Path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q of %s: %w", sheet, s.Path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q of %s is empty, expected a header row", sheet, s.Path)
	}

	// excelize drops trailing blank cells, pad every row back to the header width
	header := rows[0]
	data := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("error reading sheet %q of %s: row %d has %d cells, header has %d", sheet, s.Path, i+2, len(row), len(header))
		}
		padded := make([]string, len(header))
		copy(padded, row)
		data = append(data, padded)
	}

	t := &Table{Header: header, Rows: data}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("error reading sheet %q of %s: %w", sheet, s.Path, err)
	}

	log.Ctx(ctx).Debug().Str("path", s.Path).Str("sheet", sheet).Int("rows", len(t.Rows)).Msg("read workbook")
	return t, nil
}

// XLSXSink writes the table into a single sheet workbook, numeric cells stay numeric
type XLSXSink struct {
	Path  string
	Sheet string
}

func (s *XLSXSink) Name() string { return s.Path }

func (s *XLSXSink) Write(ctx context.Context, t *Table) error {
	f, err := buildWorkbook(t, s.Sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeAtomic(s.Path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	}); err != nil {
		return err
	}

	log.Ctx(ctx).Debug().Str("path", s.Path).Int("rows", len(t.Rows)).Msg("wrote workbook")
	return nil
}

func buildWorkbook(t *Table, sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("error naming sheet %q: %w", sheet, err)
		}
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	for r, row := range t.Rows {
		values := make([]any, len(row))
		for i, cell := range row {
			values[i] = workbookValue(cell)
		}

		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, axis, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing row %d: %w", r+1, err)
		}
	}

	return f, nil
}

// workbookValue keeps numbers numeric, blanks blank and everything else as text
func workbookValue(cell string) any {
	if cell == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

package tables

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"

	m "github.com/ximlor/inv-nbs/data/models"
	r "github.com/ximlor/inv-nbs/data/repos"
)

// PostgresSink stores the table as long format cells keyed by period and column name.
// Columns ending in Suffix are flagged as derived.
type PostgresSink struct {
	Repo         *r.Postgres
	TableName    string
	PeriodColumn string
	Suffix       string
}

func (s *PostgresSink) Name() string { return "postgres:" + s.TableName }

func (s *PostgresSink) Write(ctx context.Context, t *Table) error {
	cells, err := ToCells(t, s.PeriodColumn, s.Suffix)
	if err != nil {
		return err
	}

	if err := s.Repo.EnsureReturnTableSchema(ctx); err != nil {
		return err
	}

	ct, err := s.Repo.ReplaceReturnTable(ctx, s.TableName, cells)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Debug().Str("table", s.TableName).Int64("cells", ct).Msg("wrote return table")
	return nil
}

// ToCells flattens every non period cell of t, numeric cells go to Value and other text to RawValue
func ToCells(t *Table, periodColumn, suffix string) ([]*m.ReturnTableCell, error) {
	periodIdx := t.ColumnIndex(periodColumn)
	if periodIdx < 0 {
		return nil, fmt.Errorf("column %q not found", periodColumn)
	}

	cells := make([]*m.ReturnTableCell, 0, len(t.Rows)*(len(t.Header)-1))
	for i, row := range t.Rows {
		period, err := strconv.ParseInt(strings.TrimSpace(row[periodIdx]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("row %d: period %q is not an int4 integer: %w", i+1, row[periodIdx], err)
		}

		for j, col := range t.Header {
			if j == periodIdx {
				continue
			}

			cell := &m.ReturnTableCell{
				Period:     int32(period),
				ColumnName: col,
				Position:   int32(j),
				Derived:    suffix != "" && strings.HasSuffix(col, suffix),
			}

			raw := row[j]
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				cell.Value = null.FloatFrom(v)
			} else if raw != "" {
				cell.RawValue = null.StringFrom(raw)
			}

			cells = append(cells, cell)
		}
	}

	return cells, nil
}

package core

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"

	ex "github.com/ximlor/inv-nbs/data/extensions"
	sm "github.com/ximlor/inv-nbs/service/models"
	"github.com/ximlor/inv-nbs/service/tables"
)

// ReturnTable is the input table ordered by period with its asset columns parsed to fractional returns
type ReturnTable struct {
	periodColumn string
	header       []string
	rows         [][]string // sorted copy of the input rows
	periods      []int
	assets       []string
	series       map[string][]null.Float
}

// NewReturnTable validates the columns, orders rows ascending by period and parses every asset cell.
// An empty assets list means every column except the period column.
// In lenient mode malformed asset cells become undefined instead of failing.
func NewReturnTable(raw *tables.Table, periodColumn string, assets []string, lenient bool) (*ReturnTable, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: table is nil", ErrInvalidArgument)
	}

	periodIdx := raw.ColumnIndex(periodColumn)
	if periodIdx < 0 {
		return nil, fmt.Errorf("%w: period column %q", ErrMissingColumn, periodColumn)
	}

	if len(assets) == 0 {
		assets = ex.FilterMultiple(raw.Header, func(h string) bool { return h != periodColumn })
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: no asset columns besides %q", ErrMissingColumn, periodColumn)
	}

	assetIdx := make([]int, len(assets))
	for i, asset := range assets {
		if asset == periodColumn {
			return nil, fmt.Errorf("%w: %q is the period column and cannot be an asset", ErrInvalidArgument, asset)
		}
		if slices.Contains(assets[:i], asset) {
			return nil, fmt.Errorf("%w: asset column %q listed twice", ErrInvalidArgument, asset)
		}

		assetIdx[i] = raw.ColumnIndex(asset)
		if assetIdx[i] < 0 {
			return nil, fmt.Errorf("%w: asset column %q", ErrMissingColumn, asset)
		}
	}

	n := len(raw.Rows)
	periods := make([]int, n)
	for i, row := range raw.Rows {
		p, err := ParsePeriod(row[periodIdx])
		if err != nil {
			return nil, &ParseError{Row: i + 1, Column: periodColumn, Value: row[periodIdx], Err: err}
		}
		periods[i] = p
	}

	// stable so equal periods keep input order in the error message
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(periods[a], periods[b]) })

	for k := 1; k < n; k++ {
		prev, cur := order[k-1], order[k]
		if periods[prev] == periods[cur] {
			return nil, fmt.Errorf("%w: %d appears on rows %d and %d", ErrDuplicatePeriod, periods[cur], prev+1, cur+1)
		}
	}

	rt := &ReturnTable{
		periodColumn: periodColumn,
		header:       slices.Clone(raw.Header),
		rows:         make([][]string, n),
		periods:      make([]int, n),
		assets:       slices.Clone(assets),
		series:       make(map[string][]null.Float, len(assets)),
	}

	for k, i := range order {
		rt.rows[k] = slices.Clone(raw.Rows[i])
		rt.periods[k] = periods[i]
	}

	for a, asset := range assets {
		values := make([]null.Float, n)
		for k, i := range order {
			cell := raw.Rows[i][assetIdx[a]]
			v, err := ParseReturn(cell)
			if err != nil {
				if !lenient {
					return nil, &ParseError{Row: i + 1, Column: asset, Value: cell, Err: err}
				}
				log.Warn().Int("row", i+1).Str("asset", asset).Str("value", cell).Msg("malformed return treated as missing")
				v = null.Float{}
			}
			values[k] = v
		}
		rt.series[asset] = values
	}

	return rt, nil
}

func (rt *ReturnTable) Len() int { return len(rt.rows) }

func (rt *ReturnTable) Assets() []string { return slices.Clone(rt.assets) }

func (rt *ReturnTable) Periods() []int { return slices.Clone(rt.periods) }

func (rt *ReturnTable) PeriodColumn() string { return rt.periodColumn }

// AssetSeries returns the parsed returns of one asset in period order
func (rt *ReturnTable) AssetSeries(asset string) ([]null.Float, error) {
	s, ok := rt.series[asset]
	if !ok {
		return nil, fmt.Errorf("%w: asset column %q", ErrMissingColumn, asset)
	}
	return slices.Clone(s), nil
}

// Augment builds the output table: every input column in input order with asset columns written as
// fractional decimals, followed by one column per series. Undefined values are empty cells.
func (rt *ReturnTable) Augment(results []*sm.RollingReturnSeries) (*tables.Table, error) {
	header := slices.Clone(rt.header)
	for _, res := range results {
		if slices.Contains(header, res.Column) {
			return nil, fmt.Errorf("%w: output column %q already exists", ErrInvalidArgument, res.Column)
		}
		if len(res.Values) != rt.Len() {
			return nil, fmt.Errorf("%w: series %q has %d values for %d rows", ErrInvalidArgument, res.Column, len(res.Values), rt.Len())
		}
		header = append(header, res.Column)
	}

	periodIdx := slices.Index(rt.header, rt.periodColumn)
	assetIdx := ex.Map(rt.assets, func(a string) int { return slices.Index(rt.header, a) })

	rows := make([][]string, rt.Len())
	for k, src := range rt.rows {
		row := make([]string, 0, len(header))
		row = append(row, src...)
		row[periodIdx] = strconv.Itoa(rt.periods[k])

		for a, asset := range rt.assets {
			row[assetIdx[a]] = FormatReturn(rt.series[asset][k])
		}
		for _, res := range results {
			row = append(row, FormatReturn(res.Values[k]))
		}
		rows[k] = row
	}

	return &tables.Table{Header: header, Rows: rows}, nil
}

// FormatReturn writes a defined value in plain decimal notation and an undefined one as an empty cell
func FormatReturn(v null.Float) string {
	if isGap(v) {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// ColumnSuffix names the derived column for a window, "_10yr_rolling_return" for ten yearly periods
func ColumnSuffix(window, periodsPerYear int) string {
	if periodsPerYear > 0 && window%periodsPerYear == 0 {
		return fmt.Sprintf("_%dyr_rolling_return", window/periodsPerYear)
	}
	return fmt.Sprintf("_%d%s_rolling_return", window, sm.FrequencyToString(periodsPerYear))
}

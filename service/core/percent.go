package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// periods are stored as int4 downstream
	minPeriod = decimal.NewFromInt(math.MinInt32)
	maxPeriod = decimal.NewFromInt(math.MaxInt32)

	// cells read as missing data rather than malformed
	missingTokens = map[string]struct{}{
		"":     {},
		"-":    {},
		"NA":   {},
		"N/A":  {},
		"n/a":  {},
		"NaN":  {},
		"nan":  {},
		"null": {},
		"NULL": {},
		"None": {},
		"#N/A": {},
	}
)

// ParseReturn reads a period return cell. "12.50%" is 0.125, a bare numeral is taken as already fractional,
// missing tokens are undefined.
func ParseReturn(cell string) (null.Float, error) {
	s := strings.TrimSpace(cell)
	if _, ok := missingTokens[s]; ok {
		return null.Float{}, nil
	}

	percent := strings.HasSuffix(s, "%")
	if percent {
		s = strings.TrimSpace(strings.TrimRight(s, "%"))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return null.Float{}, fmt.Errorf("%w: %q is not a percentage or number", ErrMalformedValue, cell)
	}

	if percent {
		d = d.Div(hundred)
	}

	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return null.Float{}, fmt.Errorf("%w: %q is out of range", ErrMalformedValue, cell)
	}
	return null.FloatFrom(f), nil
}

// ParsePeriod reads a period identifier such as a calendar year. "1928" and "1928.0" are both accepted.
func ParsePeriod(cell string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(cell))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer period", ErrMalformedValue, cell)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not an integer period", ErrMalformedValue, cell)
	}
	if d.LessThan(minPeriod) || d.GreaterThan(maxPeriod) {
		return 0, fmt.Errorf("%w: period %q is out of range", ErrMalformedValue, cell)
	}
	return int(d.IntPart()), nil
}

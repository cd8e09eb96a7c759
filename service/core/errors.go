package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMalformedValue  = errors.New("malformed value")
	ErrMissingColumn   = errors.New("missing column")
	ErrDuplicatePeriod = errors.New("duplicate period")
	ErrNonFinite       = errors.New("non-finite result")
)

// ParseError reports a cell that could not be read as a return or a period.
// Row is the 1-based data row of the input, before sorting
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

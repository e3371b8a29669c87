package csvmonkey

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [Reader]. End of input is reported as [io.EOF].
var (
	// ErrTruncatedRow is returned when the input ends in the middle of a
	// quoted cell, leaving the final row unterminated.
	ErrTruncatedRow = errors.New("truncated row at end of input")

	// ErrRowTooLarge is returned when a single row cannot fit in the
	// source's buffer. The buffer never grows; callers needing larger rows
	// must open the source with a larger capacity.
	ErrRowTooLarge = errors.New("row exceeds buffer capacity")

	// ErrTooManyCells is returned when a row holds more cells than the
	// reader's cell capacity. The row is rejected, never truncated.
	ErrTooManyCells = errors.New("row exceeds cell capacity")

	// ErrMappingUnsupported is returned by OpenMapped on platforms without
	// memory-mapped file support.
	ErrMappingUnsupported = errors.New("memory-mapped sources are not supported on this platform")
)

// ParseError reports a row-level parse failure with the 1-based number of the
// row being parsed when the failure occurred.
type ParseError struct {
	Row int64 // Row number where the error occurred (1-indexed)
	Err error // Underlying error
}

// Error returns a formatted error message with the row number.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on row %d: %v", e.Row, e.Err)
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *ParseError) Unwrap() error {
	return e.Err
}

package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors for per-file conversion failures. The batch skips the file and continues.
var (
	// ErrSourceUnreadable covers locked, missing, corrupt or unsupported source files.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrMissingRequiredField is returned when the table has no usable Content.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrDateParse is returned when a date or time cell is present but cannot be parsed.
	ErrDateParse = errors.New("date parse error")
)

// ReasonContentEmpty is the skip reason reported for tables without post text.
const ReasonContentEmpty = "Content field empty"

// NumericWarning records a numeric cell that was coerced to zero.
type NumericWarning struct {
	Field string
	Value string
}

func (w NumericWarning) Error() string {
	return fmt.Sprintf("non-numeric %s value %q treated as 0", w.Field, w.Value)
}

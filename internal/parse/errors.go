package parse

import (
	"errors"
	"fmt"
)

// ErrNotAStatLine marks input with no recognizable date/time anchor.
// Callers skip these lines silently — prose mixed into a paste is normal.
var ErrNotAStatLine = errors.New("parse: not a stat line")

// errStrategyMiss is returned by a strategy whose structural preconditions
// don't hold for the line (wrong shape, not an error worth reporting).
// The batch loop moves on to the next strategy.
var errStrategyMiss = errors.New("parse: strategy does not apply")

// Validation error codes. A code identifies which required-field invariant
// the record broke; the whole record is discarded on any of them.
const (
	CodeMissingField   = "MISSING_FIELD"
	CodeInvalidFaction = "INVALID_FACTION"
	CodeInvalidLevel   = "INVALID_LEVEL"
	CodeInvalidDate    = "INVALID_DATE"
	CodeInvalidTime    = "INVALID_TIME"
	CodeInvalidValue   = "INVALID_VALUE"
)

// ValidationError reports a required-field check failure on a parsed record.
type ValidationError struct {
	Field string
	Code  string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parse: %s: %s", e.Field, e.Msg)
}

func invalid(field, code, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Code: code, Msg: fmt.Sprintf(format, args...)}
}

package query

import (
	"fmt"
	"strings"
)

// ParseErrorKind classifies query parse failures.
type ParseErrorKind string

const (
	// ErrUnknownField indicates the field is not in the active whitelist.
	ErrUnknownField ParseErrorKind = "unknown_field"
	// ErrUnknownOperator indicates an operator spelling with no canonical kind.
	ErrUnknownOperator ParseErrorKind = "unknown_operator"
	// ErrMalformedValue indicates an unterminated list/string or other
	// unparseable fragment.
	ErrMalformedValue ParseErrorKind = "malformed_value"
	// ErrMissingValue indicates a field with no value following it.
	ErrMissingValue ParseErrorKind = "missing_value"
)

// ParseError is a structured query parse failure. It names the offending
// field or fragment and its position so the caller can self-correct. Parse
// failures are always surfaced synchronously; a silently mis-parsed filter
// would return wrong results without any signal.
type ParseError struct {
	Kind     ParseErrorKind
	Field    string
	Fragment string
	Pos      int
	Accepted []string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrUnknownField:
		return fmt.Sprintf("unknown field %q (accepted fields: %s)", e.Field, strings.Join(e.Accepted, ", "))
	case ErrUnknownOperator:
		return fmt.Sprintf("unknown operator %q for field %q", e.Fragment, e.Field)
	case ErrMissingValue:
		return fmt.Sprintf("value cannot be blank for field %q", e.Field)
	default:
		if e.Field != "" {
			return fmt.Sprintf("malformed value %q for field %q at position %d", e.Fragment, e.Field, e.Pos)
		}
		return fmt.Sprintf("failed to parse query: unconsumed text %q at position %d (did you forget to quote your query?)", e.Fragment, e.Pos)
	}
}

// Is matches ParseErrors by kind, so callers can test for a failure class
// with errors.Is without caring about the offending fragment.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && e.Kind == t.Kind
}

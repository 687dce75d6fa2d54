// Package apperr provides the categorised error type shared by every sqlcsv
// component. Each error carries a Kind that decides how the CLI reports it
// and which exit status it maps to.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by where in the pipeline it originated.
type Kind string

const (
	// KindConfiguration marks invalid or contradictory arguments. These are
	// always detected before any database I/O.
	KindConfiguration Kind = "CONFIGURATION"
	// KindValueConversion marks a raw field that could not be converted to
	// its declared column type.
	KindValueConversion Kind = "VALUE_CONVERSION"
	// KindIndexRange marks a row whose field count differs from the declared
	// column types.
	KindIndexRange Kind = "INDEX_RANGE"
	// KindEngine marks failures reported by the database driver.
	KindEngine Kind = "ENGINE"
)

// Error is the structured error type used throughout sqlcsv.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels usable with errors.Is.
var (
	ErrConfiguration   = &Error{Kind: KindConfiguration}
	ErrValueConversion = &Error{Kind: KindValueConversion}
	ErrIndexRange      = &Error{Kind: KindIndexRange}
	ErrEngine          = &Error{Kind: KindEngine}
)

// Config creates a configuration error.
func Config(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// ValueConversion creates a value conversion error wrapping the parse failure.
func ValueConversion(message string, cause error) *Error {
	return &Error{Kind: KindValueConversion, Message: message, Cause: cause}
}

// IndexRange creates an index range error.
func IndexRange(format string, args ...any) *Error {
	return &Error{Kind: KindIndexRange, Message: fmt.Sprintf(format, args...)}
}

// Engine wraps a database driver error. A nil cause yields nil so call sites
// can wrap unconditionally.
func Engine(message string, cause error) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if errors.As(cause, &ae) {
		return fmt.Errorf("%s: %w", message, cause)
	}
	return &Error{Kind: KindEngine, Message: message, Cause: cause}
}

// KindOf extracts the Kind from an error chain.
// Returns empty string if the error is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfiguration:
		return 2
	case KindValueConversion, KindIndexRange:
		return 3
	case KindEngine:
		return 4
	default:
		return 1
	}
}

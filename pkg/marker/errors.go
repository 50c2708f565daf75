package marker

import (
	"errors"
	"fmt"
)

// ErrMarkerFormat matches every error returned while decoding a marker from
// its persisted form.
var ErrMarkerFormat = errors.New("marker format error")

// ErrInvalidArgument is returned by constructors and setters that reject
// their input. The marker is left unchanged.
var ErrInvalidArgument = errors.New("invalid argument")

// FormatError describes malformed or out of range persisted marker data.
type FormatError struct {
	Field  string // node path relative to the marker node
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "failed to read " + e.Field + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes errors.Is(err, ErrMarkerFormat) hold for every FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrMarkerFormat
}

func formatError(field, reason string, err error) error {
	return &FormatError{Field: field, Reason: reason, Err: err}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

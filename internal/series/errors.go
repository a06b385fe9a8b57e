package series

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors for reshaping and sequencing.
var (
	// ErrSchema indicates a required column is missing or a cell is malformed.
	ErrSchema = errors.New("choromap: schema error")

	// ErrConfiguration indicates an invalid category, frame count or option.
	ErrConfiguration = errors.New("choromap: configuration error")

	// ErrDateRange indicates a date outside the matrix bounds or an unparsable date.
	ErrDateRange = errors.New("choromap: date range error")
)

// SchemaError reports a missing required column or a malformed value.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("schema: required column %q is missing", e.Column)
	}
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// ConfigurationError reports an invalid caller-supplied option.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// DateRangeError reports a date that cannot be parsed or lies outside [Min, Max].
type DateRangeError struct {
	Date   string
	Min    time.Time
	Max    time.Time
	Reason string
}

func (e *DateRangeError) Error() string {
	if e.Min.IsZero() && e.Max.IsZero() {
		return fmt.Sprintf("date range: %q: %s", e.Date, e.Reason)
	}
	return fmt.Sprintf("date range: %q: %s (range %s..%s)",
		e.Date, e.Reason, FormatDate(e.Min), FormatDate(e.Max))
}

func (e *DateRangeError) Unwrap() error {
	return ErrDateRange
}

// Package series provides the core data primitives for choromap.
//
// The package defines the dense location × date matrix that every other
// stage consumes, plus the calendar-day helpers and the error taxonomy:
//
//   - [Matrix]: immutable location × contiguous-date grid of values
//   - [ParseDate], [Day], [DaysBetween]: calendar-day arithmetic in UTC
//   - [SchemaError], [ConfigurationError], [DateRangeError]: typed errors
//
// # Example
//
//	m, _ := reshape.Reshape(tbl, opts)
//	for i, d := range m.Dates() {
//	    col := m.Column(i)
//	    ...
//	}
//
// # Thread Safety
//
// A Matrix is never mutated after construction, so it may be read from
// any number of goroutines.
package series

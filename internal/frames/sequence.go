package frames

import (
	"time"

	"github.com/san-kum/choromap/internal/series"
)

// Sequence returns the dates to render for m, one per frame, ascending.
// A zero begin starts at the matrix's first date; an explicit begin must
// lie within the matrix's date range. An explicit count may run past the
// last date of the matrix.
func Sequence(m *series.Matrix, count Count, begin time.Time) ([]time.Time, error) {
	if err := count.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Days() == 0 {
		return nil, &series.DateRangeError{Reason: "matrix has no dates"}
	}

	min, max := m.MinDate(), m.MaxDate()
	if begin.IsZero() {
		begin = min
	} else {
		begin = series.Day(begin)
		if begin.Before(min) || begin.After(max) {
			return nil, &series.DateRangeError{
				Date:   series.FormatDate(begin),
				Min:    min,
				Max:    max,
				Reason: "begin date outside matrix range",
			}
		}
	}

	n := count.Frames()
	if count.IsAll() {
		n = series.DaysBetween(begin, max) + 1
	}

	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = series.AddDays(begin, i)
	}
	return dates, nil
}

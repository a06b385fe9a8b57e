package series

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Matrix is a dense location × date grid. Dates form a contiguous daily
// range and every cell holds a defined value.
type Matrix struct {
	category  string
	locations []string
	start     time.Time
	values    [][]float64
	observed  []bool
	index     map[string]int
}

// NewMatrix builds a Matrix from per-location rows that all span the same
// contiguous range starting at start. observed may be nil.
func NewMatrix(category string, locations []string, start time.Time, values [][]float64, observed []bool) (*Matrix, error) {
	if len(locations) != len(values) {
		return nil, fmt.Errorf("series: %d locations but %d rows", len(locations), len(values))
	}
	if observed != nil && len(observed) != len(locations) {
		return nil, fmt.Errorf("series: %d locations but %d observed flags", len(locations), len(observed))
	}

	days := -1
	for i, row := range values {
		if days >= 0 && len(row) != days {
			return nil, fmt.Errorf("series: row %q has %d dates, want %d", locations[i], len(row), days)
		}
		days = len(row)
	}

	m := &Matrix{
		category:  category,
		locations: make([]string, len(locations)),
		start:     Day(start),
		values:    make([][]float64, len(values)),
		observed:  make([]bool, len(locations)),
		index:     make(map[string]int, len(locations)),
	}
	copy(m.locations, locations)
	for i, row := range values {
		m.values[i] = append([]float64(nil), row...)
		if observed != nil {
			m.observed[i] = observed[i]
		}
		if _, dup := m.index[locations[i]]; dup {
			return nil, fmt.Errorf("series: duplicate location %q", locations[i])
		}
		m.index[locations[i]] = i
	}
	if !sort.StringsAreSorted(m.locations) {
		m.sortLocations()
	}
	return m, nil
}

func (m *Matrix) sortLocations() {
	order := make([]int, len(m.locations))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return m.locations[order[a]] < m.locations[order[b]] })

	locs := make([]string, len(order))
	vals := make([][]float64, len(order))
	obs := make([]bool, len(order))
	for dst, src := range order {
		locs[dst] = m.locations[src]
		vals[dst] = m.values[src]
		obs[dst] = m.observed[src]
		m.index[locs[dst]] = dst
	}
	m.locations, m.values, m.observed = locs, vals, obs
}

func (m *Matrix) Category() string { return m.category }

// Len returns the number of locations.
func (m *Matrix) Len() int { return len(m.locations) }

// Days returns the number of dates in the contiguous range.
func (m *Matrix) Days() int {
	if len(m.values) == 0 {
		return 0
	}
	return len(m.values[0])
}

// Locations returns the sorted location identifiers.
func (m *Matrix) Locations() []string {
	return append([]string(nil), m.locations...)
}

// Dates returns every date of the range in ascending order.
func (m *Matrix) Dates() []time.Time {
	n := m.Days()
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = AddDays(m.start, i)
	}
	return dates
}

func (m *Matrix) MinDate() time.Time { return m.start }

func (m *Matrix) MaxDate() time.Time {
	if m.Days() == 0 {
		return m.start
	}
	return AddDays(m.start, m.Days()-1)
}

// DateIndex returns the column of d, or false if d is outside the range.
func (m *Matrix) DateIndex(d time.Time) (int, bool) {
	i := DaysBetween(m.start, d)
	if i < 0 || i >= m.Days() {
		return 0, false
	}
	return i, true
}

// Value returns the cell at (loc, d).
func (m *Matrix) Value(loc string, d time.Time) (float64, bool) {
	r, ok := m.index[loc]
	if !ok {
		return 0, false
	}
	c, ok := m.DateIndex(d)
	if !ok {
		return 0, false
	}
	return m.values[r][c], true
}

// Row returns a copy of loc's values along the date axis.
func (m *Matrix) Row(loc string) ([]float64, bool) {
	r, ok := m.index[loc]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), m.values[r]...), true
}

// Column returns a copy of the values for date column i, in location order.
func (m *Matrix) Column(i int) []float64 {
	col := make([]float64, len(m.values))
	if i < 0 || i >= m.Days() {
		return col
	}
	for r, row := range m.values {
		col[r] = row[i]
	}
	return col
}

// Observed reports whether loc had at least one observation in the source.
// A location that never reported is all zeros but unobserved.
func (m *Matrix) Observed(loc string) bool {
	r, ok := m.index[loc]
	return ok && m.observed[r]
}

// Max returns the largest value in the matrix, or 0 when empty.
func (m *Matrix) Max() float64 {
	if m.Days() == 0 {
		return 0
	}
	max := floats.Max(m.values[0])
	for _, row := range m.values[1:] {
		if v := floats.Max(row); v > max {
			max = v
		}
	}
	return max
}

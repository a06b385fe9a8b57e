// Package reshape turns raw long- or wide-form observation tables into a
// dense, gap-free location × date matrix.
package reshape

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/choromap/internal/series"
	"github.com/san-kum/choromap/internal/table"
	"gonum.org/v1/gonum/floats"
)

type observation struct {
	location string
	date     time.Time
	value    float64
	known    bool
}

// Reshape extracts opts.Category from t and returns its dense matrix.
func Reshape(t *table.Table, opts Options) (*series.Matrix, error) {
	obs, err := project(t, opts)
	if err != nil {
		return nil, err
	}
	return build(opts.Category, obs, opts.Smooth)
}

// Categories lists the categories available in t: the distinct values of
// the category column for long form, or every column other than the date
// and location columns for wide form.
func Categories(t *table.Table, opts Options) ([]string, error) {
	if missing := t.Missing(opts.required()...); len(missing) > 0 {
		return nil, &series.SchemaError{Column: missing[0]}
	}

	if opts.Form == FormWide {
		var cats []string
		for _, h := range t.Header() {
			if h != opts.DateField && h != opts.LocationField {
				cats = append(cats, h)
			}
		}
		return cats, nil
	}

	ci, _ := t.Index(opts.CategoryField)
	seen := make(map[string]bool)
	var cats []string
	for r := 0; r < t.Len(); r++ {
		c := strings.TrimSpace(t.Cell(r, ci))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, nil
}

// project normalizes the table form and keeps (location, date, value).
func project(t *table.Table, opts Options) ([]observation, error) {
	switch opts.Form {
	case FormWide, FormLong:
	default:
		return nil, &series.ConfigurationError{Field: "form", Value: opts.Form.String(), Reason: "must be 'wide' or 'long'"}
	}
	if missing := t.Missing(opts.required()...); len(missing) > 0 {
		return nil, &series.SchemaError{Column: missing[0]}
	}
	if opts.Category == "" {
		return nil, &series.ConfigurationError{Field: "category", Value: "", Reason: "category is required"}
	}

	li, _ := t.Index(opts.LocationField)
	di, _ := t.Index(opts.DateField)

	var vi, ci int
	var valueCol string
	if opts.Form == FormLong {
		ci, _ = t.Index(opts.CategoryField)
		vi, _ = t.Index(opts.ValueField)
		valueCol = opts.ValueField
	} else {
		var ok bool
		vi, ok = t.Index(opts.Category)
		if !ok {
			return nil, &series.ConfigurationError{Field: "category", Value: opts.Category, Reason: "not a column of the source table"}
		}
		valueCol = opts.Category
	}

	obs := make([]observation, 0, t.Len())
	matched := 0
	for r := 0; r < t.Len(); r++ {
		if opts.Form == FormLong && strings.TrimSpace(t.Cell(r, ci)) != opts.Category {
			continue
		}
		matched++

		loc := strings.TrimSpace(t.Cell(r, li))
		rawDate := strings.TrimSpace(t.Cell(r, di))
		if loc == "" || rawDate == "" {
			continue
		}

		d, err := series.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r+1, err)
		}

		v, known, err := parseValue(t.Cell(r, vi))
		if err != nil {
			return nil, &series.SchemaError{Column: valueCol, Reason: fmt.Sprintf("row %d: %v", r+1, err)}
		}
		obs = append(obs, observation{location: loc, date: d, value: v, known: known})
	}

	if opts.Form == FormLong && matched == 0 {
		return nil, &series.ConfigurationError{Field: "category", Value: opts.Category, Reason: "not present in column " + opts.CategoryField}
	}
	return obs, nil
}

func parseValue(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null", "none":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("non-numeric value %q", s)
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// build pivots observations into a grid over the contiguous date range,
// then interpolates, smooths and zero-fills.
func build(category string, obs []observation, smooth bool) (*series.Matrix, error) {
	if len(obs) == 0 {
		return nil, &series.DateRangeError{Date: "", Reason: "no observations for category " + category}
	}

	start, end := obs[0].date, obs[0].date
	rowOf := make(map[string]int)
	var locations []string
	for _, o := range obs {
		if o.date.Before(start) {
			start = o.date
		}
		if o.date.After(end) {
			end = o.date
		}
		if _, ok := rowOf[o.location]; !ok {
			rowOf[o.location] = len(locations)
			locations = append(locations, o.location)
		}
	}
	days := series.DaysBetween(start, end) + 1

	sums := make([][]float64, len(locations))
	counts := make([][]int, len(locations))
	for i := range sums {
		sums[i] = make([]float64, days)
		counts[i] = make([]int, days)
	}
	for _, o := range obs {
		if !o.known {
			continue
		}
		r, c := rowOf[o.location], series.DaysBetween(start, o.date)
		sums[r][c] += o.value
		counts[r][c]++
	}

	values := make([][]float64, len(locations))
	observed := make([]bool, len(locations))
	for r := range locations {
		row := make([]float64, days)
		for c := range row {
			if counts[r][c] == 0 {
				row[c] = math.NaN()
				continue
			}
			row[c] = sums[r][c] / float64(counts[r][c])
			observed[r] = true
		}
		interpolateForward(row)
		if smooth {
			row = trailingMean(row, SmoothWindow)
		}
		fillZero(row)
		values[r] = row
	}

	return series.NewMatrix(category, locations, start, values, observed)
}

// interpolateForward fills NaN gaps linearly between known values and
// carries the last known value to the end. Leading NaNs stay NaN.
func interpolateForward(row []float64) {
	prev := -1
	for i, v := range row {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				row[j] = row[prev] + (v-row[prev])*float64(j-prev)/span
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < len(row); j++ {
			row[j] = row[prev]
		}
	}
}

// trailingMean replaces each value with the mean of itself and the
// window-1 values before it. A window with fewer than window defined
// values is NaN.
func trailingMean(row []float64, window int) []float64 {
	out := make([]float64, len(row))
	for i := range row {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := row[i-window+1 : i+1]
		if floats.HasNaN(w) {
			out[i] = math.NaN()
			continue
		}
		out[i] = floats.Sum(w) / float64(window)
	}
	return out
}

func fillZero(row []float64) {
	for i, v := range row {
		if math.IsNaN(v) {
			row[i] = 0
		}
	}
}

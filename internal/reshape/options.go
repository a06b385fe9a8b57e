package reshape

import (
	"strings"

	"github.com/san-kum/choromap/internal/series"
)

// Form describes how categories are laid out in the source table.
type Form int

const (
	// FormWide has one row per (location, date) and one column per category.
	FormWide Form = iota
	// FormLong has one row per (location, date, category) with explicit
	// category and value columns.
	FormLong
)

func (f Form) String() string {
	switch f {
	case FormWide:
		return "wide"
	case FormLong:
		return "long"
	default:
		return "unknown"
	}
}

// ParseForm maps "wide" or "long" to a Form.
func ParseForm(s string) (Form, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wide":
		return FormWide, nil
	case "long":
		return FormLong, nil
	}
	return 0, &series.ConfigurationError{Field: "form", Value: s, Reason: "must be 'wide' or 'long'"}
}

// SmoothWindow is the length of the trailing moving average.
const SmoothWindow = 7

// Options selects the category to extract and how to read the table.
type Options struct {
	Category      string
	DateField     string
	LocationField string
	Form          Form

	// Long form only.
	CategoryField string
	ValueField    string

	Smooth bool
}

// DefaultOptions uses the column names of the common location/date layout.
func DefaultOptions(category string) Options {
	return Options{
		Category:      category,
		DateField:     "date",
		LocationField: "location",
		Form:          FormWide,
		CategoryField: "category",
		ValueField:    "value",
	}
}

func (o Options) required() []string {
	cols := []string{o.DateField, o.LocationField}
	if o.Form == FormLong {
		cols = append(cols, o.CategoryField, o.ValueField)
	}
	return cols
}

// Package frames turns a matrix's date range into the ordered list of
// dates to render, one per animation frame, and names the frame files.
package frames

import (
	"strconv"
	"strings"

	"github.com/san-kum/choromap/internal/series"
)

// Count is either "all" dates or an explicit number of frames.
type Count struct {
	all bool
	n   int
}

// All requests one frame per day through the matrix's last date.
func All() Count { return Count{all: true} }

// N requests exactly n consecutive frames.
func N(n int) Count { return Count{n: n} }

func (c Count) IsAll() bool { return c.all }

// Frames returns n for an explicit count, 0 for All.
func (c Count) Frames() int { return c.n }

func (c Count) String() string {
	if c.all {
		return "all"
	}
	return strconv.Itoa(c.n)
}

// Validate rejects anything other than All or an integer greater than 1.
func (c Count) Validate() error {
	if c.all || c.n > 1 {
		return nil
	}
	return &series.ConfigurationError{
		Field:  "frame count",
		Value:  c.String(),
		Reason: "must be 'all' or an integer greater than 1",
	}
}

// ParseCount parses "all" or a decimal integer greater than 1.
func ParseCount(s string) (Count, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") || s == "" {
		return All(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Count{}, &series.ConfigurationError{
			Field:  "frame count",
			Value:  s,
			Reason: "must be 'all' or an integer greater than 1",
		}
	}
	c := N(n)
	if err := c.Validate(); err != nil {
		return Count{}, err
	}
	return c, nil
}

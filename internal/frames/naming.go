package frames

import (
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/choromap/internal/series"
)

// Keying selects how frame files are named within one run.
type Keying int

const (
	// KeyDate names frames by ISO date, e.g. 2020-03-01.png.
	KeyDate Keying = iota
	// KeyIndex names frames by zero-padded ordinal, e.g. 0007.png.
	KeyIndex
)

func (k Keying) String() string {
	if k == KeyIndex {
		return "index"
	}
	return "date"
}

func ParseKeying(s string) (Keying, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "date":
		return KeyDate, nil
	case "index":
		return KeyIndex, nil
	}
	return 0, &series.ConfigurationError{Field: "frame keying", Value: s, Reason: "must be 'date' or 'index'"}
}

// Name returns the file name of frame i showing date d. ext excludes the dot.
func Name(k Keying, i int, d time.Time, ext string) string {
	if k == KeyIndex {
		return fmt.Sprintf("%04d.%s", i, ext)
	}
	return series.FormatDate(d) + "." + ext
}

// Names returns the file names for a whole sequence.
func Names(k Keying, dates []time.Time, ext string) []string {
	names := make([]string, len(dates))
	for i, d := range dates {
		names[i] = Name(k, i, d, ext)
	}
	return names
}

// PrettyDate formats d for display on a frame, e.g. "February 01, 2020".
func PrettyDate(d time.Time) string {
	return d.Format("January 02, 2006")
}

package storage

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/choromap/internal/series"
)

// WriteMatrixCSV writes m in wide form: one row per location, one column
// per ISO date.
func WriteMatrixCSV(w io.Writer, m *series.Matrix) error {
	cw := csv.NewWriter(w)

	header := []string{"location"}
	for _, d := range m.Dates() {
		header = append(header, series.FormatDate(d))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, loc := range m.Locations() {
		row, _ := m.Row(loc)
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, loc)
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func SaveMatrixCSV(path string, m *series.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMatrixCSV(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

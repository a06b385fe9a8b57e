package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadCSV reads a table from r. The first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table: csv has no header")
	}

	rows := records[1:]
	nonEmpty := rows[:0]
	for _, rec := range rows {
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		nonEmpty = append(nonEmpty, rec)
	}
	return New(records[0], nonEmpty)
}

// LoadCSV reads a table from the CSV file at path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// Package table holds raw observation tables as loaded from CSV files or
// SQLite queries, before any reshaping.
package table

import (
	"fmt"
	"strings"
)

// Table is an in-memory tabular structure of string cells.
type Table struct {
	header []string
	rows   [][]string
	cols   map[string]int
}

// New builds a table from a header and rows. Short rows are padded with
// empty cells.
func New(header []string, rows [][]string) (*Table, error) {
	t := &Table{
		header: make([]string, len(header)),
		cols:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := t.cols[name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", name)
		}
		t.header[i] = name
		t.cols[name] = i
	}

	t.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, len(header))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table has a column named name.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Index returns the position of column name.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.cols[name]
	return i, ok
}

// Cell returns the value at row r of column c.
func (t *Table) Cell(r, c int) string {
	return t.rows[r][c]
}

// Missing returns the names among required that the table lacks, in order.
func (t *Table) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

package table

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("\ufefflocation, date,cases\nA,2020-01-01,1\n\nB,2020-01-02\n"))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if tbl.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", tbl.Len())
	}
	for _, col := range []string{"location", "date", "cases"} {
		if !tbl.Has(col) {
			t.Errorf("missing column %q in %v", col, tbl.Header())
		}
	}

	ci, _ := tbl.Index("cases")
	if got := tbl.Cell(1, ci); got != "" {
		t.Errorf("short row should be padded, got %q", got)
	}

	if missing := tbl.Missing("location", "geometry", "value"); len(missing) != 2 || missing[0] != "geometry" {
		t.Errorf("unexpected missing columns %v", missing)
	}
}

func TestReadCSVDuplicateHeader(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,a\n1,2\n")); err == nil {
		t.Fatal("expected duplicate column error")
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte("location,date,v\nA,2020-01-01,3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("expected 1 row, got %d", tbl.Len())
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	stmts := []string{
		`CREATE TABLE observations (location TEXT, date TEXT, cases REAL, deaths INTEGER)`,
		`INSERT INTO observations VALUES ('A', '2020-01-01', 1.5, 0)`,
		`INSERT INTO observations VALUES ('B', '2020-01-02', NULL, 2)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	db.Close()

	tbl, err := LoadSQLite(context.Background(), path, TableQuery("observations"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}

	ci, _ := tbl.Index("cases")
	di, _ := tbl.Index("deaths")
	if got := tbl.Cell(0, ci); got != "1.5" {
		t.Errorf("cases[0] = %q, want 1.5", got)
	}
	if got := tbl.Cell(1, ci); got != "" {
		t.Errorf("NULL should load as empty, got %q", got)
	}
	if got := tbl.Cell(1, di); got != "2" {
		t.Errorf("deaths[1] = %q, want 2", got)
	}
}

func TestTableQuery(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"observations", `SELECT * FROM "observations"`},
		{`odd"name`, `SELECT * FROM "odd""name"`},
		{`back\slash`, `SELECT * FROM "back\slash"`},
	}
	for _, tt := range tests {
		if got := TableQuery(tt.name); got != tt.want {
			t.Errorf("TableQuery(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestLoadSQLiteQuotedTableName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	stmts := []string{
		`CREATE TABLE "daily ""cases""" (location TEXT, date TEXT, cases REAL)`,
		`INSERT INTO "daily ""cases""" VALUES ('A', '2020-01-01', 3)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	db.Close()

	tbl, err := LoadSQLite(context.Background(), path, TableQuery(`daily "cases"`))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tbl.Len() != 1 || tbl.Cell(0, 0) != "A" {
		t.Errorf("unexpected table: %d rows", tbl.Len())
	}
}

package pipeline

import (
	"context"
	"errors"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/choromap/internal/config"
	"github.com/san-kum/choromap/internal/logger"
	"github.com/san-kum/choromap/internal/series"
	"github.com/san-kum/choromap/internal/storage"
)

const casesCSV = `location,date,cases,deaths
A,2020-01-01,10,0
A,2020-01-03,30,1
B,2020-01-02,5,0
`

const shapesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "A"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]}},
    {"type": "Feature", "properties": {"name": "B"},
     "geometry": {"type": "Polygon", "coordinates": [[[2,0],[4,0],[4,2],[2,2],[2,0]]]}}
  ]
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "cases.csv")
	shapes := filepath.Join(dir, "shapes.geojson")
	if err := os.WriteFile(input, []byte(casesCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(shapes, []byte(shapesGeoJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Input.Path = input
	cfg.Geometry.Path = shapes
	cfg.Geometry.Property = "name"
	cfg.Reshape.Category = "cases"
	cfg.Render.Width = 200
	cfg.Render.Height = 200
	cfg.Output.FramesRoot = filepath.Join(dir, "maps")
	cfg.Output.ExportsDir = filepath.Join(dir, "exports")
	cfg.Workers = 2
	cfg.Finalize()
	return cfg
}

func TestRunAllFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.MatrixCSV = true

	rep, err := Run(context.Background(), cfg, logger.Discard())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(rep.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(rep.Frames))
	}
	want := []string{"2020-01-01.png", "2020-01-02.png", "2020-01-03.png"}
	for i, p := range rep.Frames {
		if filepath.Base(p) != want[i] {
			t.Errorf("frame %d = %s, want %s", i, filepath.Base(p), want[i])
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("frame %s missing: %v", p, err)
		}
	}
	if len(rep.Unmatched) != 0 {
		t.Errorf("unexpected unmatched locations %v", rep.Unmatched)
	}

	f, err := os.Open(filepath.Join(cfg.Output.ExportsDir, "cases.gif"))
	if err != nil {
		t.Fatalf("gif missing: %v", err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(anim.Image) != len(rep.Frames) {
		t.Errorf("gif has %d frames, want %d", len(anim.Image), len(rep.Frames))
	}

	if _, err := os.Stat(filepath.Join(cfg.Output.ExportsDir, "cases.csv")); err != nil {
		t.Errorf("matrix csv missing: %v", err)
	}

	meta, err := storage.New(cfg.Output.FramesRoot, cfg.Output.ExportsDir).LoadRun("cases")
	if err != nil {
		t.Fatalf("run metadata missing: %v", err)
	}
	if meta.ID != rep.RunID || meta.Frames != 3 || meta.FirstDate != "2020-01-01" || meta.LastDate != "2020-01-03" {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestRunIndexKeyingClearsPreviousFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.Animation.GIF = false

	if _, err := Run(context.Background(), cfg, logger.Discard()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	cfg.Frames.Count = "2"
	cfg.Frames.Begin = "2020-01-02"
	cfg.Frames.Keying = "index"
	rep, err := Run(context.Background(), cfg, logger.Discard())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	entries, err := os.ReadDir(rep.FrameDir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 2 || names[0] != "0000.png" || names[1] != "0001.png" {
		t.Errorf("expected only the new index frames, got %v", names)
	}
	if series.FormatDate(rep.Dates[0]) != "2020-01-02" || series.FormatDate(rep.Dates[1]) != "2020-01-03" {
		t.Errorf("unexpected dates %v", rep.Dates)
	}
	if len(rep.Artifacts) != 0 {
		t.Errorf("expected no artifacts, got %v", rep.Artifacts)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"no geometry", func(c *config.Config) { c.Geometry.Path = "" }, series.ErrConfiguration},
		{"unknown category", func(c *config.Config) { c.Reshape.Category = "recovered" }, series.ErrConfiguration},
		{"begin out of range", func(c *config.Config) { c.Frames.Begin = "2021-01-01" }, series.ErrDateRange},
		{"bad frame count", func(c *config.Config) { c.Frames.Count = "1" }, series.ErrConfiguration},
		{"missing date column", func(c *config.Config) { c.Reshape.DateField = "day" }, series.ErrSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			_, err := Run(context.Background(), cfg, logger.Discard())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, cfg, logger.Discard()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMatrixAndDates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reshape.Category = "deaths"

	m, err := Matrix(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if m.Category() != "deaths" || m.Days() != 3 {
		t.Errorf("unexpected matrix %s x %d", m.Category(), m.Days())
	}

	dates, err := Dates(cfg, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 3 {
		t.Errorf("expected 3 dates, got %d", len(dates))
	}
}

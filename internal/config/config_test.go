package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/reshape"
	"github.com/san-kum/choromap/internal/series"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Input.Path = "data/covid.csv"
	cfg.Reshape.Category = "cases"
	cfg.Finalize()
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output.FramesRoot != DefaultFramesRoot {
		t.Errorf("expected frames root %s, got %s", DefaultFramesRoot, cfg.Output.FramesRoot)
	}
	if cfg.Output.ExportsDir != DefaultExportsDir {
		t.Errorf("expected exports dir %s, got %s", DefaultExportsDir, cfg.Output.ExportsDir)
	}
	if cfg.Frames.Count != "all" {
		t.Errorf("expected count all, got %s", cfg.Frames.Count)
	}
	if cfg.Workers <= 0 {
		t.Error("workers should be positive")
	}
}

func TestFinalize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.Path = "data/records.sqlite"
	cfg.Input.Format = ""
	cfg.Reshape.Category = "cases"
	cfg.Finalize()

	if cfg.Input.Format != "sqlite" {
		t.Errorf("expected sqlite format, got %s", cfg.Input.Format)
	}
	if cfg.Output.SaveName != "cases" {
		t.Errorf("expected save name cases, got %s", cfg.Output.SaveName)
	}
	cfg.Reshape.Form = "LONG"
	cfg.Frames.Keying = " Index "
	cfg.Render.Norm = "Log"
	cfg.Finalize()
	if cfg.Reshape.Form != "long" || cfg.Frames.Keying != "index" || cfg.Render.Norm != "log" {
		t.Errorf("enumerated settings not normalized: %q %q %q", cfg.Reshape.Form, cfg.Frames.Keying, cfg.Render.Norm)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("normalized config rejected: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing input", func(c *Config) { c.Input.Path = "" }},
		{"missing category", func(c *Config) { c.Reshape.Category = "" }},
		{"bad form", func(c *Config) { c.Reshape.Form = "tall" }},
		{"bad keying", func(c *Config) { c.Frames.Keying = "ordinal" }},
		{"bad norm", func(c *Config) { c.Render.Norm = "sqrt" }},
		{"zero fps", func(c *Config) { c.Animation.FPS = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"save name with slash", func(c *Config) { c.Output.SaveName = "a/b" }},
		{"frame count one", func(c *Config) { c.Frames.Count = "1" }},
		{"frame count word", func(c *Config) { c.Frames.Count = "some" }},
		{"svg with gif", func(c *Config) { c.Render.Format = "svg" }},
		{"sqlite without table", func(c *Config) { c.Input.Format = "sqlite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, series.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestValidateBadBeginDate(t *testing.T) {
	cfg := validConfig()
	cfg.Frames.Begin = "soon"
	if err := cfg.Validate(); !errors.Is(err, series.ErrDateRange) {
		t.Errorf("expected date range error, got %v", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := validConfig()
	cfg.Reshape.Form = "long"
	cfg.Reshape.Smooth = true
	cfg.Frames.Count = "5"
	cfg.Frames.Begin = "2020-03-01"
	cfg.Frames.Keying = "index"

	opts, err := cfg.ReshapeOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Form != reshape.FormLong || !opts.Smooth || opts.Category != "cases" {
		t.Errorf("unexpected reshape options %+v", opts)
	}

	count, err := cfg.Count()
	if err != nil || count.Frames() != 5 {
		t.Errorf("Count() = %v, %v", count, err)
	}
	begin, err := cfg.Begin()
	if err != nil || series.FormatDate(begin) != "2020-03-01" {
		t.Errorf("Begin() = %v, %v", begin, err)
	}
	k, err := cfg.Keying()
	if err != nil || k != frames.KeyIndex {
		t.Errorf("Keying() = %v, %v", k, err)
	}

	ropts := cfg.RenderOptions()
	if ropts.Width != DefaultWidth || ropts.Ramp != "OrRd" {
		t.Errorf("unexpected render options %+v", ropts)
	}

	cfg.Frames.Begin = ""
	begin, err = cfg.Begin()
	if err != nil || !begin.IsZero() {
		t.Errorf("empty begin should be zero time, got %v, %v", begin, err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := validConfig()
	cfg.Render.Title = "Cases"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Render.Title != "Cases" || loaded.Input.Path != cfg.Input.Path {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("input:\n  path: data.csv\nreshape:\n  category: deaths\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reshape.Category != "deaths" {
		t.Errorf("expected category deaths, got %s", cfg.Reshape.Category)
	}
	if cfg.Animation.FPS != DefaultFPS || cfg.Reshape.DateField != "date" {
		t.Error("unset fields should keep their defaults")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CHOROMAP_FRAMES_DIR", "/tmp/maps")
	t.Setenv("CHOROMAP_EXPORTS_DIR", "/tmp/exports")
	t.Setenv("CHOROMAP_LOG_LEVEL", "")
	t.Setenv("CHOROMAP_LOG_FORMAT", "json")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.Output.FramesRoot != "/tmp/maps" || cfg.Output.ExportsDir != "/tmp/exports" {
		t.Errorf("env overrides not applied: %+v", cfg.Output)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CHOROMAP_TEST_VALUE=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHOROMAP_TEST_VALUE", "")
	os.Unsetenv("CHOROMAP_TEST_VALUE")

	LoadEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	if got := os.Getenv("CHOROMAP_TEST_VALUE"); got != "loaded" {
		t.Errorf("expected loaded, got %q", got)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("covid", "cases_smoothed")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.Reshape.Smooth {
		t.Error("expected smoothing enabled")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("covid", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "cases")
	if cfg != nil {
		t.Error("expected nil for nonexistent dataset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("covid")
	if len(presets) == 0 {
		t.Error("expected presets for covid")
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent dataset")
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := validConfig()
	cfg.Apply(GetPreset("long", "weekly"))

	if cfg.Reshape.Form != "long" || cfg.Frames.Count != "8" || cfg.Frames.Keying != "index" {
		t.Errorf("preset not applied: %+v %+v", cfg.Reshape, cfg.Frames)
	}
	if cfg.Reshape.Category != "cases" {
		t.Error("preset without a category should keep the configured one")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset produced invalid config: %v", err)
	}
}

func TestApplyPresetKeepsSmoothing(t *testing.T) {
	cfg := validConfig()
	cfg.Reshape.Smooth = true
	cfg.Apply(GetPreset("long", "weekly"))
	if !cfg.Reshape.Smooth {
		t.Error("preset without smoothing should not disable it")
	}

	cfg = validConfig()
	cfg.Apply(GetPreset("covid", "deaths"))
	if !cfg.Reshape.Smooth {
		t.Error("smoothing preset should enable it")
	}
}

// Package pipeline runs a whole render: source table to dense matrix, frame
// dates, one image per date, then the animation and run metadata.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/choromap/internal/animate"
	"github.com/san-kum/choromap/internal/config"
	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/geom"
	"github.com/san-kum/choromap/internal/render"
	"github.com/san-kum/choromap/internal/reshape"
	"github.com/san-kum/choromap/internal/series"
	"github.com/san-kum/choromap/internal/storage"
	"github.com/san-kum/choromap/internal/table"
)

// Report describes a finished run.
type Report struct {
	RunID     string
	SaveName  string
	FrameDir  string
	Dates     []time.Time
	Frames    []string
	Artifacts []string
	// Unmatched lists matrix locations without a shape.
	Unmatched []string
	Elapsed   time.Duration
}

// LoadTable reads the configured source table.
func LoadTable(ctx context.Context, cfg *config.Config) (*table.Table, error) {
	switch cfg.Input.Format {
	case "sqlite":
		query := cfg.Input.Query
		if query == "" {
			query = table.TableQuery(cfg.Input.Table)
		}
		return table.LoadSQLite(ctx, cfg.Input.Path, query)
	case "", "csv":
		return table.LoadCSV(cfg.Input.Path)
	}
	return nil, &series.ConfigurationError{Field: "input.format", Value: cfg.Input.Format, Reason: "must be 'csv' or 'sqlite'"}
}

// Matrix loads the source table and reshapes it into the configured
// category's dense matrix.
func Matrix(ctx context.Context, cfg *config.Config) (*series.Matrix, error) {
	opts, err := cfg.ReshapeOptions()
	if err != nil {
		return nil, err
	}
	tbl, err := LoadTable(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return reshape.Reshape(tbl, opts)
}

// Dates returns the frame dates the config selects from m.
func Dates(cfg *config.Config, m *series.Matrix) ([]time.Time, error) {
	count, err := cfg.Count()
	if err != nil {
		return nil, err
	}
	begin, err := cfg.Begin()
	if err != nil {
		return nil, err
	}
	return frames.Sequence(m, count, begin)
}

// Run executes the full pipeline. Frames are rendered by up to cfg.Workers
// goroutines; their names depend only on the date sequence.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Report, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Geometry.Path == "" {
		return nil, &series.ConfigurationError{Field: "geometry.path", Reason: "rendering needs a GeoJSON file"}
	}
	keying, err := cfg.Keying()
	if err != nil {
		return nil, err
	}

	log.Info("reshaping", "input", cfg.Input.Path, "category", cfg.Reshape.Category, "smooth", cfg.Reshape.Smooth)
	m, err := Matrix(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("matrix ready", "locations", m.Len(), "days", m.Days(),
		"from", series.FormatDate(m.MinDate()), "to", series.FormatDate(m.MaxDate()))

	dates, err := Dates(cfg, m)
	if err != nil {
		return nil, err
	}

	shapes, err := geom.LoadGeoJSON(cfg.Geometry.Path, cfg.Geometry.Property)
	if err != nil {
		return nil, err
	}
	joined := geom.Join(m, shapes)
	unmatched := joined.Unmatched()
	if len(unmatched) > 0 {
		log.Warn("locations without geometry", "count", len(unmatched))
	}

	r, err := render.New(m, joined, cfg.RenderOptions())
	if err != nil {
		return nil, err
	}

	store := storage.New(cfg.Output.FramesRoot, cfg.Output.ExportsDir)
	dir, err := store.PrepareFrameDir(cfg.Output.SaveName)
	if err != nil {
		return nil, err
	}

	names := frames.Names(keying, dates, r.Ext())
	paths, err := renderFrames(ctx, r, dir, names, dates, cfg.Workers, log)
	if err != nil {
		return nil, err
	}
	log.Info("frames rendered", "count", len(paths), "dir", dir)

	artifacts, err := export(ctx, cfg, store, m, paths, log)
	if err != nil {
		return nil, err
	}

	meta := &storage.RunMetadata{
		SaveName:  cfg.Output.SaveName,
		Category:  m.Category(),
		Smooth:    cfg.Reshape.Smooth,
		Keying:    keying.String(),
		FirstDate: series.FormatDate(dates[0]),
		LastDate:  series.FormatDate(dates[len(dates)-1]),
		Frames:    len(paths),
		FrameDir:  dir,
		Artifacts: artifacts,
	}
	if err := store.SaveRun(meta); err != nil {
		return nil, err
	}

	return &Report{
		RunID:     meta.ID,
		SaveName:  meta.SaveName,
		FrameDir:  dir,
		Dates:     dates,
		Frames:    paths,
		Artifacts: artifacts,
		Unmatched: unmatched,
		Elapsed:   time.Since(start),
	}, nil
}

func renderFrames(ctx context.Context, r *render.Renderer, dir string, names []string, dates []time.Time, workers int, log *slog.Logger) ([]string, error) {
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range dates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := r.WriteFrame(paths[i], dates[i]); err != nil {
				return fmt.Errorf("pipeline: frame %s: %w", names[i], err)
			}
			log.Debug("frame written", "frame", names[i], "date", series.FormatDate(dates[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

func export(ctx context.Context, cfg *config.Config, store *storage.Store, m *series.Matrix, paths []string, log *slog.Logger) ([]string, error) {
	var artifacts []string
	if !cfg.Animation.GIF && !cfg.Animation.Video && !cfg.Output.MatrixCSV {
		return artifacts, nil
	}
	if err := store.EnsureExports(); err != nil {
		return nil, err
	}
	save := cfg.Output.SaveName
	fps := cfg.Animation.FPS

	if cfg.Animation.GIF {
		out := store.GIFPath(save)
		var err error
		if cfg.Animation.Encoder == "gifski" {
			err = animate.Gifski(ctx, paths, out, fps)
		} else {
			err = animate.GIF(paths, out, fps)
		}
		if err != nil {
			return nil, err
		}
		log.Info("gif written", "path", out, "encoder", cfg.Animation.Encoder)
		artifacts = append(artifacts, out)
	}

	if cfg.Animation.Video {
		out := store.MP4Path(save)
		if err := animate.MP4(ctx, paths, out, fps); err != nil {
			return nil, err
		}
		log.Info("video written", "path", out)
		artifacts = append(artifacts, out)
	}

	if cfg.Output.MatrixCSV {
		out := filepath.Join(store.ExportsDir(), save+".csv")
		if err := storage.SaveMatrixCSV(out, m); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, out)
	}
	return artifacts, nil
}

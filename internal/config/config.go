package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/render"
	"github.com/san-kum/choromap/internal/reshape"
	"github.com/san-kum/choromap/internal/series"
)

const (
	DefaultFramesRoot = "charts/maps"
	DefaultExportsDir = "charts/exports"
	DefaultFPS        = 8
	DefaultWorkers    = 4
	DefaultWidth      = 1600
	DefaultHeight     = 800
)

var validate = validator.New()

type Config struct {
	Input     InputConfig     `yaml:"input"`
	Geometry  GeometryConfig  `yaml:"geometry"`
	Reshape   ReshapeConfig   `yaml:"reshape"`
	Frames    FramesConfig    `yaml:"frames"`
	Render    RenderConfig    `yaml:"render"`
	Output    OutputConfig    `yaml:"output"`
	Animation AnimationConfig `yaml:"animation"`
	Workers   int             `yaml:"workers" validate:"min=1,max=64"`
	Log       LogConfig       `yaml:"log"`
}

type InputConfig struct {
	Path   string `yaml:"path" validate:"required"`
	// Inferred from the path extension when empty.
	Format string `yaml:"format" validate:"omitempty,oneof=csv sqlite"`
	// SQLite only: a table name, or a full query when Query is set.
	Table string `yaml:"table"`
	Query string `yaml:"query"`
}

type GeometryConfig struct {
	Path     string `yaml:"path"`
	Property string `yaml:"property"`
}

type ReshapeConfig struct {
	Category      string `yaml:"category" validate:"required"`
	Form          string `yaml:"form" validate:"oneof=wide long"`
	DateField     string `yaml:"date_field" validate:"required"`
	LocationField string `yaml:"location_field" validate:"required"`
	CategoryField string `yaml:"category_field"`
	ValueField    string `yaml:"value_field"`
	Smooth        bool   `yaml:"smooth"`
}

type FramesConfig struct {
	Count  string `yaml:"count"`
	Begin  string `yaml:"begin"`
	Keying string `yaml:"keying" validate:"oneof=date index"`
}

type RenderConfig struct {
	Width  int    `yaml:"width" validate:"min=120"`
	Height int    `yaml:"height" validate:"min=160"`
	Title  string `yaml:"title"`
	Ramp   string `yaml:"ramp" validate:"required"`
	Norm   string `yaml:"norm" validate:"oneof=linear log"`
	Labels bool   `yaml:"labels"`
	Format string `yaml:"format" validate:"oneof=png svg"`
}

type OutputConfig struct {
	FramesRoot string `yaml:"frames_root" validate:"required"`
	ExportsDir string `yaml:"exports_dir" validate:"required"`
	SaveName   string `yaml:"save_name" validate:"required,excludesall=/\\"`
	MatrixCSV  bool   `yaml:"matrix_csv"`
}

type AnimationConfig struct {
	FPS     int    `yaml:"fps" validate:"min=1,max=100"`
	GIF     bool   `yaml:"gif"`
	Video   bool   `yaml:"video"`
	Encoder string `yaml:"encoder" validate:"oneof=builtin gifski"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Reshape: ReshapeConfig{
			Form:          "wide",
			DateField:     "date",
			LocationField: "location",
			CategoryField: "category",
			ValueField:    "value",
		},
		Frames: FramesConfig{Count: "all", Keying: "date"},
		Render: RenderConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Ramp:   "OrRd",
			Norm:   "log",
			Format: "png",
		},
		Output: OutputConfig{
			FramesRoot: DefaultFramesRoot,
			ExportsDir: DefaultExportsDir,
		},
		Animation: AnimationConfig{FPS: DefaultFPS, GIF: true, Encoder: "builtin"},
		Workers:   DefaultWorkers,
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv reads the given .env files (".env" when none are named) into the
// process environment. Missing files are ignored.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides the output directories and log settings from
// CHOROMAP_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CHOROMAP_FRAMES_DIR"); v != "" {
		c.Output.FramesRoot = v
	}
	if v := os.Getenv("CHOROMAP_EXPORTS_DIR"); v != "" {
		c.Output.ExportsDir = v
	}
	if v := os.Getenv("CHOROMAP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CHOROMAP_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Finalize fills fields derived from others: the save name defaults to the
// category, and the input format is inferred from the path extension.
// Enumerated settings are lower-cased.
func (c *Config) Finalize() {
	for _, f := range []*string{
		&c.Input.Format, &c.Reshape.Form, &c.Frames.Keying,
		&c.Render.Norm, &c.Render.Format, &c.Animation.Encoder,
	} {
		*f = strings.ToLower(strings.TrimSpace(*f))
	}

	if c.Output.SaveName == "" {
		c.Output.SaveName = strings.ReplaceAll(c.Reshape.Category, string(filepath.Separator), "_")
	}
	if c.Input.Format == "" {
		switch strings.ToLower(filepath.Ext(c.Input.Path)) {
		case ".db", ".sqlite", ".sqlite3":
			c.Input.Format = "sqlite"
		default:
			c.Input.Format = "csv"
		}
	}
}

// Validate checks struct constraints and the values only the frames and
// series packages can parse. Failures are *series.ConfigurationError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &series.ConfigurationError{
				Field:  fieldName(fe.Namespace()),
				Value:  fmt.Sprint(fe.Value()),
				Reason: "failed " + fe.Tag() + " constraint",
			}
		}
		return err
	}
	if c.Render.Format == "svg" && (c.Animation.GIF || c.Animation.Video) {
		return &series.ConfigurationError{Field: "render.format", Value: "svg", Reason: "animation needs png frames"}
	}
	if c.Input.Format == "sqlite" && c.Input.Table == "" && c.Input.Query == "" {
		return &series.ConfigurationError{Field: "input.table", Reason: "sqlite input needs a table or query"}
	}
	if _, err := c.Count(); err != nil {
		return err
	}
	if _, err := c.Begin(); err != nil {
		return err
	}
	return nil
}

func fieldName(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

func (c *Config) ReshapeOptions() (reshape.Options, error) {
	form, err := reshape.ParseForm(c.Reshape.Form)
	if err != nil {
		return reshape.Options{}, err
	}
	return reshape.Options{
		Category:      c.Reshape.Category,
		DateField:     c.Reshape.DateField,
		LocationField: c.Reshape.LocationField,
		Form:          form,
		CategoryField: c.Reshape.CategoryField,
		ValueField:    c.Reshape.ValueField,
		Smooth:        c.Reshape.Smooth,
	}, nil
}

func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Width:  c.Render.Width,
		Height: c.Render.Height,
		Title:  c.Render.Title,
		Ramp:   c.Render.Ramp,
		Norm:   c.Render.Norm,
		Labels: c.Render.Labels,
		Format: c.Render.Format,
	}
}

func (c *Config) Count() (frames.Count, error) {
	return frames.ParseCount(c.Frames.Count)
}

// Begin returns the configured first frame date, or the zero time when the
// sequence should start at the matrix's first date.
func (c *Config) Begin() (time.Time, error) {
	if strings.TrimSpace(c.Frames.Begin) == "" {
		return time.Time{}, nil
	}
	return series.ParseDate(c.Frames.Begin)
}

func (c *Config) Keying() (frames.Keying, error) {
	return frames.ParseKeying(c.Frames.Keying)
}

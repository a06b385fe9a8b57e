// Package render draws one choropleth frame per date from a joined matrix.
//
// A Renderer holds only read-only state once built, so frames may be
// rendered from several goroutines at once.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/geom"
	"github.com/san-kum/choromap/internal/series"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	titleBand    = 32
	colorbarBand = 56
	margin       = 12
)

var (
	background  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	edgeColor   = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	noDataColor = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	textColor   = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
)

// Options controls frame appearance.
type Options struct {
	Width  int
	Height int
	Title  string
	Ramp   string
	Norm   string
	Labels bool
	Format string
}

func DefaultOptions() Options {
	return Options{
		Width:  1600,
		Height: 800,
		Ramp:   "OrRd",
		Norm:   "log",
		Format: "png",
	}
}

// Renderer draws frames for one matrix and geometry join.
type Renderer struct {
	opts   Options
	m      *series.Matrix
	joined *geom.Joined
	ramp   Ramp
	norm   Norm
	proj   projection
}

func New(m *series.Matrix, j *geom.Joined, opts Options) (*Renderer, error) {
	if opts.Width <= 2*margin || opts.Height <= titleBand+colorbarBand+2*margin {
		return nil, fmt.Errorf("render: frame size %dx%d too small", opts.Width, opts.Height)
	}
	switch strings.ToLower(opts.Format) {
	case "", "png":
		opts.Format = "png"
	case "svg":
		opts.Format = "svg"
	default:
		return nil, fmt.Errorf("render: unknown format %q (want png or svg)", opts.Format)
	}

	ramp, err := LookupRamp(opts.Ramp)
	if err != nil {
		return nil, err
	}
	norm, err := NewNorm(opts.Norm, m.Max())
	if err != nil {
		return nil, err
	}

	proj := newProjection(j.Bound(),
		margin, titleBand,
		float64(opts.Width-2*margin), float64(opts.Height-titleBand-colorbarBand))

	return &Renderer{opts: opts, m: m, joined: j, ramp: ramp, norm: norm, proj: proj}, nil
}

// Ext is the file extension of rendered frames.
func (r *Renderer) Ext() string { return r.opts.Format }

// Norm returns the normalization shared by every frame of the run.
func (r *Renderer) Norm() Norm { return r.norm }

// values returns the matrix column for date, or nil past the matrix range.
func (r *Renderer) values(date time.Time) []float64 {
	col, ok := r.m.DateIndex(date)
	if !ok {
		return nil
	}
	return r.m.Column(col)
}

func (r *Renderer) fill(reg geom.Region, vals []float64) color.NRGBA {
	if vals == nil || reg.Row < 0 {
		return noDataColor
	}
	return r.ramp.RGBA(r.norm.Scale(vals[reg.Row]))
}

// WriteFrame renders the frame for date into path.
func (r *Renderer) WriteFrame(path string, date time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(f, date); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Render writes the frame for date to w in the configured format.
func (r *Renderer) Render(w io.Writer, date time.Time) error {
	if r.opts.Format == "svg" {
		_, err := io.WriteString(w, r.SVG(date))
		return err
	}
	return png.Encode(w, r.Image(date))
}

// Image rasterizes the frame for date.
func (r *Renderer) Image(date time.Time) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	vals := r.values(date)
	ras := vector.NewRasterizer(r.opts.Width, r.opts.Height)

	for _, reg := range r.joined.NoData {
		r.drawRegion(img, ras, reg, noDataColor)
	}
	for _, reg := range r.joined.Regions {
		r.drawRegion(img, ras, reg, r.fill(reg, vals))
	}

	if r.opts.Labels {
		for _, reg := range r.joined.Regions {
			if reg.Geometry == nil {
				continue
			}
			x, y := r.proj.apply(geom.Centroid(reg.Geometry))
			w := font.MeasureString(basicfont.Face7x13, reg.Location).Round()
			drawText(img, int(x)-w/2, int(y)+4, reg.Location)
		}
	}

	if r.opts.Title != "" {
		w := font.MeasureString(basicfont.Face7x13, r.opts.Title).Round()
		drawText(img, (r.opts.Width-w)/2, titleBand-10, r.opts.Title)
	}
	drawText(img, margin, r.opts.Height-colorbarBand+14, frames.PrettyDate(date))
	r.drawColorbar(img)
	return img
}

func (r *Renderer) drawRegion(img *image.NRGBA, ras *vector.Rasterizer, reg geom.Region, c color.NRGBA) {
	rs := rings(reg.Geometry)
	if len(rs) == 0 {
		return
	}

	ras.Reset(r.opts.Width, r.opts.Height)
	for _, ring := range rs {
		if len(ring) < 3 {
			continue
		}
		x, y := r.proj.apply(ring[0])
		ras.MoveTo(float32(x), float32(y))
		for _, pt := range ring[1:] {
			x, y = r.proj.apply(pt)
			ras.LineTo(float32(x), float32(y))
		}
		ras.ClosePath()
	}
	ras.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})

	for _, ring := range rs {
		for i := 1; i < len(ring); i++ {
			x0, y0 := r.proj.apply(ring[i-1])
			x1, y1 := r.proj.apply(ring[i])
			line(img, int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)), edgeColor)
		}
	}
}

func (r *Renderer) drawColorbar(img *image.NRGBA) {
	barW := r.opts.Width * 3 / 5
	left := (r.opts.Width - barW) / 2
	top := r.opts.Height - colorbarBand + 22
	barH := 10

	for x := 0; x < barW; x++ {
		c := r.ramp.RGBA(float64(x) / float64(barW-1))
		for y := 0; y < barH; y++ {
			img.SetNRGBA(left+x, top+y, c)
		}
	}

	vmin, vmax := r.norm.Bounds()
	drawText(img, left, top+barH+14, formatTick(vmin))
	hi := formatTick(vmax)
	drawText(img, left+barW-font.MeasureString(basicfont.Face7x13, hi).Round(), top+barH+14, hi)
}

func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3g", v)
}

func drawText(img draw.Image, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// line draws a Bresenham segment, clipped to the image.
func line(img *image.NRGBA, x1, y1, x2, y2 int, c color.NRGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	b := img.Bounds()
	err := dx - dy
	for {
		if image.Pt(x1, y1).In(b) {
			img.SetNRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

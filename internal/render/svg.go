package render

import (
	"fmt"
	"html"
	"image/color"
	"strings"
	"time"

	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/geom"
)

// SVG renders the frame for date as an SVG document.
func (r *Renderer) SVG(date time.Time) string {
	w, h := r.opts.Width, r.opts.Height
	vals := r.values(date)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g stroke="%s" stroke-width="0.5" fill-rule="nonzero">
`, w, h, w, h, hexColor(background), hexColor(edgeColor)))

	for _, reg := range r.joined.NoData {
		r.writePath(&sb, reg, noDataColor)
	}
	for _, reg := range r.joined.Regions {
		r.writePath(&sb, reg, r.fill(reg, vals))
	}
	sb.WriteString("</g>\n")

	if r.opts.Labels {
		sb.WriteString(`<g font-family="sans-serif" font-size="10" text-anchor="middle">` + "\n")
		for _, reg := range r.joined.Regions {
			if reg.Geometry == nil {
				continue
			}
			x, y := r.proj.apply(geom.Centroid(reg.Geometry))
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f">%s</text>
`, x, y, html.EscapeString(reg.Location)))
		}
		sb.WriteString("</g>\n")
	}

	if r.opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-family="sans-serif" font-size="15" text-anchor="middle">%s</text>
`, w/2, titleBand-10, html.EscapeString(r.opts.Title)))
	}
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-family="sans-serif" font-size="12">%s</text>
`, margin, h-colorbarBand+14, frames.PrettyDate(date)))

	r.writeColorbar(&sb)
	sb.WriteString("</svg>")
	return sb.String()
}

func (r *Renderer) writePath(sb *strings.Builder, reg geom.Region, c color.NRGBA) {
	rs := rings(reg.Geometry)
	if len(rs) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf(`<path fill="%s" d="`, hexColor(c)))
	for _, ring := range rs {
		for i, pt := range ring {
			x, y := r.proj.apply(pt)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(" Z ")
	}
	sb.WriteString(fmt.Sprintf(`"><title>%s</title></path>
`, html.EscapeString(reg.Location)))
}

func (r *Renderer) writeColorbar(sb *strings.Builder) {
	barW := r.opts.Width * 3 / 5
	left := (r.opts.Width - barW) / 2
	top := r.opts.Height - colorbarBand + 22

	sb.WriteString(`<defs><linearGradient id="ramp">`)
	const stops = 10
	for i := 0; i <= stops; i++ {
		t := float64(i) / stops
		sb.WriteString(fmt.Sprintf(`<stop offset="%.2f" stop-color="%s"/>`, t, hexColor(r.ramp.RGBA(t))))
	}
	sb.WriteString("</linearGradient></defs>\n")
	sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="10" fill="url(#ramp)"/>
`, left, top, barW))

	vmin, vmax := r.norm.Bounds()
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-family="sans-serif" font-size="10">%s</text>
<text x="%d" y="%d" font-family="sans-serif" font-size="10" text-anchor="end">%s</text>
`, left, top+24, formatTick(vmin), left+barW, top+24, formatTick(vmax)))
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

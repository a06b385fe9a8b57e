package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Ramp maps [0, 1] onto a sequence of colour stops blended in Lab space.
type Ramp struct {
	Name  string
	stops []colorful.Color
}

var rampStops = map[string][]string{
	"OrRd":     {"#fff7ec", "#fee8c8", "#fdd49e", "#fdbb84", "#fc8d59", "#ef6548", "#d7301f", "#b30000", "#7f0000"},
	"Blues":    {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"Greys":    {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"heat_r":   {"#ffffff", "#ffff80", "#ff8000", "#800000", "#000000"},
	"copper_r": {"#ffc77f", "#a07d50", "#000000"},
}

// RampNames lists the built-in ramps.
func RampNames() []string {
	names := make([]string, 0, len(rampStops))
	for name := range rampStops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupRamp returns a built-in ramp by case-insensitive name.
func LookupRamp(name string) (Ramp, error) {
	for key, hexes := range rampStops {
		if !strings.EqualFold(key, name) {
			continue
		}
		r := Ramp{Name: key, stops: make([]colorful.Color, len(hexes))}
		for i, h := range hexes {
			c, err := colorful.Hex(h)
			if err != nil {
				panic("render: bad ramp stop " + h + ": " + err.Error())
			}
			r.stops[i] = c
		}
		return r, nil
	}
	return Ramp{}, fmt.Errorf("render: unknown colour ramp %q (available: %v)", name, RampNames())
}

// At returns the ramp colour at t, clamped to [0, 1].
func (r Ramp) At(t float64) colorful.Color {
	if len(r.stops) == 0 {
		return colorful.Color{}
	}
	if math.IsNaN(t) || t <= 0 {
		return r.stops[0]
	}
	if t >= 1 {
		return r.stops[len(r.stops)-1]
	}
	pos := t * float64(len(r.stops)-1)
	i := int(pos)
	return r.stops[i].BlendLab(r.stops[i+1], pos-float64(i)).Clamped()
}

// RGBA returns the ramp colour at t as an opaque image colour.
func (r Ramp) RGBA(t float64) color.NRGBA {
	return toNRGBA(r.At(t))
}

func toNRGBA(c colorful.Color) color.NRGBA {
	cr, cg, cb := c.Clamped().RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: 0xff}
}

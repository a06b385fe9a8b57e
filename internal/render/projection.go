package render

import (
	"math"

	"github.com/paulmach/orb"
)

// projection fits a lon/lat bound into a pixel rectangle, keeping aspect
// ratio and flipping the y axis.
type projection struct {
	bound       orb.Bound
	scale       float64
	offX, offY  float64
	height, top float64
}

func newProjection(b orb.Bound, left, top, width, height float64) projection {
	bw := b.Max[0] - b.Min[0]
	bh := b.Max[1] - b.Min[1]
	if bw <= 0 {
		bw = 1
	}
	if bh <= 0 {
		bh = 1
	}
	scale := math.Min(width/bw, height/bh)
	return projection{
		bound:  b,
		scale:  scale,
		offX:   left + (width-bw*scale)/2,
		offY:   (height - bh*scale) / 2,
		height: height,
		top:    top,
	}
}

func (p projection) apply(pt orb.Point) (float64, float64) {
	x := p.offX + (pt[0]-p.bound.Min[0])*p.scale
	y := p.top + p.height - p.offY - (pt[1]-p.bound.Min[1])*p.scale
	return x, y
}

// rings flattens any areal geometry into its rings.
func rings(g orb.Geometry) []orb.Ring {
	switch v := g.(type) {
	case orb.Ring:
		return []orb.Ring{v}
	case orb.Polygon:
		return []orb.Ring(v)
	case orb.MultiPolygon:
		var out []orb.Ring
		for _, poly := range v {
			out = append(out, poly...)
		}
		return out
	case orb.Bound:
		return []orb.Ring{v.ToRing()}
	case orb.Collection:
		var out []orb.Ring
		for _, c := range v {
			out = append(out, rings(c)...)
		}
		return out
	}
	return nil
}

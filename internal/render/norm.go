package render

import (
	"fmt"
	"math"
	"strings"
)

// Norm maps a data value onto [0, 1] for colour lookup.
type Norm interface {
	Scale(v float64) float64
	Bounds() (vmin, vmax float64)
}

type linearNorm struct{ min, max float64 }

func (n linearNorm) Scale(v float64) float64 {
	return clamp01((v - n.min) / (n.max - n.min))
}

func (n linearNorm) Bounds() (float64, float64) { return n.min, n.max }

type logNorm struct{ min, max float64 }

func (n logNorm) Scale(v float64) float64 {
	if v <= n.min {
		return 0
	}
	return clamp01(math.Log10(v/n.min) / math.Log10(n.max/n.min))
}

func (n logNorm) Bounds() (float64, float64) { return n.min, n.max }

// NewNorm builds a "linear" (vmin 0) or "log" (vmin 1) normalization up to vmax.
func NewNorm(kind string, vmax float64) (Norm, error) {
	switch strings.ToLower(kind) {
	case "", "linear":
		if vmax <= 0 {
			vmax = 1
		}
		return linearNorm{min: 0, max: vmax}, nil
	case "log":
		if vmax <= 1 {
			vmax = 10
		}
		return logNorm{min: 1, max: vmax}, nil
	}
	return nil, fmt.Errorf("render: unknown normalization %q (want linear or log)", kind)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

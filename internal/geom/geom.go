// Package geom loads location shapes and joins them onto a dense matrix.
package geom

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Table maps location identifiers to drawable shapes.
type Table struct {
	keys   []string
	shapes map[string]orb.Geometry
}

func NewTable() *Table {
	return &Table{shapes: make(map[string]orb.Geometry)}
}

// Add stores g under loc, replacing any earlier shape.
func (t *Table) Add(loc string, g orb.Geometry) {
	if _, ok := t.shapes[loc]; !ok {
		i := sort.SearchStrings(t.keys, loc)
		t.keys = append(t.keys, "")
		copy(t.keys[i+1:], t.keys[i:])
		t.keys[i] = loc
	}
	t.shapes[loc] = g
}

func (t *Table) Get(loc string) (orb.Geometry, bool) {
	g, ok := t.shapes[loc]
	return g, ok
}

func (t *Table) Len() int { return len(t.keys) }

// Locations returns the keys in ascending order.
func (t *Table) Locations() []string {
	return append([]string(nil), t.keys...)
}

// Bound returns the bounding box of every shape.
func (t *Table) Bound() orb.Bound {
	var b orb.Bound
	first := true
	for _, k := range t.keys {
		g := t.shapes[k]
		if g == nil {
			continue
		}
		if first {
			b = g.Bound()
			first = false
			continue
		}
		b = b.Union(g.Bound())
	}
	return b
}

// LoadGeoJSON reads a FeatureCollection and keys each feature by the
// property named locationProperty. An empty property name uses the
// feature ID.
func LoadGeoJSON(path, locationProperty string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGeoJSON(data, locationProperty)
}

func ParseGeoJSON(data []byte, locationProperty string) (*Table, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geom: decode geojson: %w", err)
	}

	t := NewTable()
	for i, f := range fc.Features {
		var raw interface{}
		if locationProperty == "" {
			raw = f.ID
		} else {
			raw = f.Properties[locationProperty]
		}
		loc := keyString(raw)
		if loc == "" {
			return nil, fmt.Errorf("geom: feature %d has no %q property", i, locationProperty)
		}
		t.Add(loc, f.Geometry)
	}
	return t, nil
}

func keyString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Centroid returns the area-weighted centroid of g, used for labels.
func Centroid(g orb.Geometry) orb.Point {
	if g == nil {
		return orb.Point{}
	}
	c, _ := planar.CentroidArea(g)
	return c
}

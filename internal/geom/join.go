package geom

import (
	"github.com/paulmach/orb"
	"github.com/san-kum/choromap/internal/series"
)

// Region is one matrix location with its shape. Geometry is nil when the
// geometry table has no entry for the location.
type Region struct {
	Location string
	Row      int
	Geometry orb.Geometry
}

// Joined is the matrix left-joined with a geometry table.
type Joined struct {
	Regions []Region
	// NoData lists geometry locations absent from the matrix.
	NoData []Region
}

// Join attaches a shape to every matrix location by identifier.
func Join(m *series.Matrix, t *Table) *Joined {
	j := &Joined{}
	inMatrix := make(map[string]bool, m.Len())
	for i, loc := range m.Locations() {
		inMatrix[loc] = true
		g, _ := t.Get(loc)
		j.Regions = append(j.Regions, Region{Location: loc, Row: i, Geometry: g})
	}
	for _, loc := range t.Locations() {
		if inMatrix[loc] {
			continue
		}
		g, _ := t.Get(loc)
		j.NoData = append(j.NoData, Region{Location: loc, Row: -1, Geometry: g})
	}
	return j
}

// Unmatched returns the matrix locations that have no shape.
func (j *Joined) Unmatched() []string {
	var out []string
	for _, r := range j.Regions {
		if r.Geometry == nil {
			out = append(out, r.Location)
		}
	}
	return out
}

// Bound covers every drawable region, matched or not.
func (j *Joined) Bound() orb.Bound {
	t := NewTable()
	for _, r := range j.Regions {
		if r.Geometry != nil {
			t.Add(r.Location, r.Geometry)
		}
	}
	for _, r := range j.NoData {
		if r.Geometry != nil {
			t.Add(r.Location, r.Geometry)
		}
	}
	return t.Bound()
}

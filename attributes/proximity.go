package attributes

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/readfiles"
	"github.com/notargets/geodeform/utils"
)

type segment [2]r3.Vec

/*
ProximitySource labels half-edges by matching them against auxiliary curve
meshes: a half-edge whose two endpoints coincide with the endpoints of an edge
of horizon mesh h, in either direction, gets horizon id h (the last matching
horizon wins), and one matching an edge of the fault mesh is a fault. Fault
sides are then paired with PairFaults.
*/
type ProximitySource struct {
	Horizons         []*readfiles.Geometry
	Faults           *readfiles.Geometry // may be nil
	SquaredTolerance float64             // DefaultSquaredTolerance when zero
}

// LoadProximitySource reads horizon1.obj, horizon2.obj, ... until the next
// file is missing, and faults.obj when present
func LoadProximitySource(dir string) (ps *ProximitySource, err error) {
	ps = &ProximitySource{}
	for i := 1; ; i++ {
		filename := filepath.Join(dir, fmt.Sprintf("horizon%d.obj", i))
		if _, statErr := os.Stat(filename); statErr != nil {
			break
		}
		var g *readfiles.Geometry
		if g, err = readfiles.ReadOBJ(filename); err != nil {
			return nil, err
		}
		ps.Horizons = append(ps.Horizons, g)
	}
	filename := filepath.Join(dir, "faults.obj")
	if _, statErr := os.Stat(filename); statErr == nil {
		if ps.Faults, err = readfiles.ReadOBJ(filename); err != nil {
			return nil, err
		}
	}
	return
}

func (ps ProximitySource) Label(m *halfedge.Mesh) (s *Set, err error) {
	var (
		tol2     = ps.SquaredTolerance
		horizons = make([][]segment, len(ps.Horizons))
		faults   []segment
	)
	if tol2 <= 0 {
		tol2 = DefaultSquaredTolerance
	}
	for h, g := range ps.Horizons {
		horizons[h] = segments(g)
	}
	if ps.Faults != nil {
		faults = segments(ps.Faults)
	}
	s = NewSet(m.NCorners())
	utils.ParallelRange(m.NCorners(), func(cMin, cMax int) {
		for c := cMin; c < cMax; c++ {
			a, b := m.Point(m.Org(c)), m.Point(m.Dst(c))
			for h, segs := range horizons {
				if edgePresent(a, b, segs, tol2) {
					s.HorizonID[c] = h
				}
			}
			if edgePresent(a, b, faults, tol2) {
				s.IsFault[c] = true
			}
		}
	})
	PairFaults(m, s, tol2)
	return
}

func segments(g *readfiles.Geometry) (segs []segment) {
	segs = make([]segment, 0, 3*len(g.T))
	for _, t := range g.T {
		for i := 0; i < 3; i++ {
			i0, i1 := t[i], t[(i+1)%3]
			if i0 < 0 || i0 >= len(g.V) || i1 < 0 || i1 >= len(g.V) {
				continue
			}
			segs = append(segs, segment{g.V[i0], g.V[i1]})
		}
	}
	return
}

func edgePresent(a, b r3.Vec, segs []segment, tol2 float64) bool {
	near := func(p, q r3.Vec) bool { return r3.Norm2(r3.Sub(p, q)) < tol2 }
	for _, sg := range segs {
		if (near(sg[0], a) && near(sg[1], b)) || (near(sg[1], a) && near(sg[0], b)) {
			return true
		}
	}
	return false
}

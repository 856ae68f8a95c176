package attributes

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/halfedge"
)

// DefaultSquaredTolerance is the squared distance under which two points are
// taken to coincide when matching edges by position
const DefaultSquaredTolerance = 1e-6

/*
PairFaults fills FaultOpposite for fault corners that have none. A fault is cut
open in the mesh, so each side carries its own copy of the fault vertices; the
partner of corner c is the fault corner d running the other way over the same
points: Org(d) sits on Dst(c) and Dst(d) sits on Org(c).

When several corners match, one without a topological opposite is preferred,
as the duplicated sides of a cut are open edges. It returns the number of
corners paired.
*/
func PairFaults(m *halfedge.Mesh, s *Set, tol2 float64) (paired int) {
	var faults []int
	for c, f := range s.IsFault {
		if f {
			faults = append(faults, c)
		}
	}
	near := func(p, q r3.Vec) bool { return r3.Norm2(r3.Sub(p, q)) < tol2 }
	for _, c := range faults {
		if s.FaultOpposite[c] != halfedge.NoCorner {
			continue
		}
		var (
			org, dst = m.Point(m.Org(c)), m.Point(m.Dst(c))
			best     = halfedge.NoCorner
		)
		for _, d := range faults {
			if d == c || !near(m.Point(m.Org(d)), dst) || !near(m.Point(m.Dst(d)), org) {
				continue
			}
			if best == halfedge.NoCorner ||
				(m.Opposite(best) != halfedge.NoCorner && m.Opposite(d) == halfedge.NoCorner) {
				best = d
			}
		}
		if best != halfedge.NoCorner {
			s.FaultOpposite[c] = best
			paired++
		}
	}
	return
}

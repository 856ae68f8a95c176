package halfedge

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/types"
)

// NoCorner marks a missing corner: an open boundary edge in Opposite, a vertex
// with no incident triangle in the ring head table.
const NoCorner = -1

/*
Mesh is a triangulated surface with corner (half-edge) adjacency.

Corner c belongs to triangle c/3 at local slot c%3 and runs from Org(c) to Dst(c).
All adjacency lives in flat index tables, built once by New:

	v2c[v]   one corner whose origin is v, the head of v's ring
	c2c[c]   the next corner in the ring of corners sharing Org(c)
	opp[c]   the corner running Dst(c) -> Org(c), or NoCorner
	boundary true when a corner of v's ring has no opposite

Topology is immutable after New. Vertex positions are updated in place once the
solved coordinates are applied.
*/
type Mesh struct {
	V []r3.Vec // Vertex coordinates
	T [][3]int // Triangle to vertex connectivity, consistent winding

	v2c      []int
	c2c      []int
	opp      []int
	valence  []int // Corners in the ring of each vertex
	boundary []bool
}

// New validates the face list and builds corner adjacency. Any error wraps
// types.ErrMalformedMesh and no mesh is returned.
func New(V []r3.Vec, T [][3]int) (m *Mesh, err error) {
	m = &Mesh{V: V, T: T}
	if err = m.checkTriangles(); err != nil {
		return nil, err
	}
	m.buildRings()
	if err = m.checkRings(); err != nil {
		return nil, err
	}
	if err = m.buildOpposites(); err != nil {
		return nil, err
	}
	m.buildBoundary()
	return
}

func (m *Mesh) NVerts() int     { return len(m.V) }
func (m *Mesh) NTriangles() int { return len(m.T) }
func (m *Mesh) NCorners() int   { return 3 * len(m.T) }

func (m *Mesh) Org(c int) int  { return m.T[c/3][c%3] }
func (m *Mesh) Dst(c int) int  { return m.T[c/3][(c%3+1)%3] }
func (m *Mesh) Next(c int) int { return c/3*3 + (c%3+1)%3 }
func (m *Mesh) Prev(c int) int { return c/3*3 + (c%3+2)%3 }

// Opposite returns the corner on the adjacent triangle running the other way
// along the same edge, NoCorner on an open boundary edge
func (m *Mesh) Opposite(c int) int { return m.opp[c] }

func (m *Mesh) OnBorder(v int) bool { return m.boundary[v] }

// Valence is the number of corners with origin v
func (m *Mesh) Valence(v int) int { return m.valence[v] }

func (m *Mesh) Point(v int) r3.Vec       { return m.V[v] }
func (m *Mesh) SetPoint(v int, p r3.Vec) { m.V[v] = p }

func (m *Mesh) Triangle(t int) [3]int { return m.T[t] }

// EdgeVector is Dst(c) - Org(c)
func (m *Mesh) EdgeVector(c int) r3.Vec {
	return r3.Sub(m.V[m.Dst(c)], m.V[m.Org(c)])
}

// NBoundary counts the boundary vertices
func (m *Mesh) NBoundary() (n int) {
	for _, b := range m.boundary {
		if b {
			n++
		}
	}
	return
}

// Corners returns the ring of corners with origin v, starting at the ring head
func (m *Mesh) Corners(v int) (ring []int) {
	ring = make([]int, 0, m.valence[v])
	m.walkRing(v, func(c int) bool {
		ring = append(ring, c)
		return true
	})
	return
}

// Neighbors returns the destination of every corner in the ring of v, in ring
// order. A vertex with no incident triangle has no neighbors.
func (m *Mesh) Neighbors(v int) (out []int) {
	out = make([]int, 0, m.valence[v])
	m.walkRing(v, func(c int) bool {
		out = append(out, m.Dst(c))
		return true
	})
	return
}

// walkRing visits the corners around v until fn returns false. The walk is
// bounded by the valence, which checkRings has verified to close the ring.
func (m *Mesh) walkRing(v int, fn func(c int) bool) {
	cir := m.v2c[v]
	if cir == NoCorner {
		return
	}
	for n := 0; n < m.valence[v]; n++ {
		if !fn(cir) {
			return
		}
		cir = m.c2c[cir]
	}
}

func (m *Mesh) checkTriangles() (err error) {
	var (
		nv       = m.NVerts()
		edgeUse  = make(map[types.EdgeKey]int, 3*len(m.T)/2)
		halfEdge = make(map[types.EdgeInt]int, 3*len(m.T))
	)
	for t, tri := range m.T {
		for i, v := range tri {
			if v < 0 || v >= nv {
				return fmt.Errorf("triangle %d references vertex %d, have %d vertices: %w",
					t, v, nv, types.ErrMalformedMesh)
			}
			if tri[(i+1)%3] == v {
				return fmt.Errorf("triangle %d is degenerate %v: %w", t, tri, types.ErrMalformedMesh)
			}
		}
		for i := 0; i < 3; i++ {
			verts := [2]int{tri[i], tri[(i+1)%3]}
			he := types.NewEdgeInt(verts)
			ek := he.GetKey()
			if edgeUse[ek]++; edgeUse[ek] > 2 {
				return fmt.Errorf("edge %v is shared by more than two triangles: %w",
					ek.GetVertices(false), types.ErrMalformedMesh)
			}
			if prior, found := halfEdge[he]; found {
				return fmt.Errorf("half-edge %v appears in triangles %d and %d, winding is inconsistent: %w",
					verts, prior, t, types.ErrMalformedMesh)
			}
			halfEdge[he] = t
		}
	}
	return
}

// buildRings links the corners sharing an origin into one cyclic ring per
// vertex. The seeding pass points each head at the last corner of its vertex,
// so the first corner linked closes the ring back onto the last one.
func (m *Mesh) buildRings() {
	var (
		nv, nc = m.NVerts(), m.NCorners()
	)
	m.v2c = make([]int, nv)
	m.c2c = make([]int, nc)
	m.valence = make([]int, nv)
	for v := range m.v2c {
		m.v2c[v] = NoCorner
	}
	for c := 0; c < nc; c++ {
		m.v2c[m.Org(c)] = c
	}
	for c := 0; c < nc; c++ {
		v := m.Org(c)
		m.c2c[c] = m.v2c[v]
		m.v2c[v] = c
		m.valence[v]++
	}
}

// checkRings walks every ring and requires it to return to its head after
// exactly valence steps, visiting only corners of that vertex.
func (m *Mesh) checkRings() (err error) {
	for v, head := range m.v2c {
		if head == NoCorner {
			continue
		}
		var (
			cir   = head
			steps int
		)
		for {
			if m.Org(cir) != v {
				return fmt.Errorf("ring of vertex %d reaches corner %d with origin %d: %w",
					v, cir, m.Org(cir), types.ErrMalformedMesh)
			}
			cir = m.c2c[cir]
			steps++
			if cir == head {
				break
			}
			if steps >= m.valence[v] {
				return fmt.Errorf("ring of vertex %d does not close within %d steps: %w",
					v, m.valence[v], types.ErrMalformedMesh)
			}
		}
		if steps != m.valence[v] {
			return fmt.Errorf("ring of vertex %d closes after %d of %d corners: %w",
				v, steps, m.valence[v], types.ErrMalformedMesh)
		}
	}
	return
}

// buildOpposites searches the ring around Org(c): the corner preceding each
// ring member ends at Org(c), and it is the opposite when it starts at Dst(c).
func (m *Mesh) buildOpposites() (err error) {
	nc := m.NCorners()
	m.opp = make([]int, nc)
	for c := 0; c < nc; c++ {
		var (
			org, dst = m.Org(c), m.Dst(c)
			opp      = NoCorner
		)
		m.walkRing(org, func(cir int) bool {
			cand := m.Prev(cir)
			if m.Org(cand) == dst && m.Dst(cand) == org {
				opp = cand
				return false
			}
			return true
		})
		m.opp[c] = opp
	}
	for c, o := range m.opp {
		if o != NoCorner && m.opp[o] != c {
			return fmt.Errorf("corner %d has opposite %d whose opposite is %d: %w",
				c, o, m.opp[o], types.ErrMalformedMesh)
		}
	}
	return
}

func (m *Mesh) buildBoundary() {
	m.boundary = make([]bool, m.NVerts())
	for v := range m.boundary {
		m.walkRing(v, func(cir int) bool {
			if m.opp[cir] == NoCorner {
				m.boundary[v] = true
				return false
			}
			return true
		})
	}
}

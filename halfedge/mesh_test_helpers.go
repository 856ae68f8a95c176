package halfedge

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TestMeshes provides small standard meshes shared by tests across packages.
// Each call returns fresh slices, so callers may move vertices freely.

// UnitSquareGeometry is the square (0,0),(1,0),(1,1),(0,1) split along its
// diagonal into two counter-clockwise triangles.
//
//	corner 0: 0->1 bottom   corner 3: 0->2 diagonal
//	corner 1: 1->2 right    corner 4: 2->3 top
//	corner 2: 2->0 diagonal corner 5: 3->0 left
func UnitSquareGeometry() (V []r3.Vec, T [][3]int) {
	V = []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	T = [][3]int{{0, 1, 2}, {0, 2, 3}}
	return
}

// TetrahedronGeometry is a closed, outward oriented tetrahedron surface
func TetrahedronGeometry() (V []r3.Vec, T [][3]int) {
	V = []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}}
	T = [][3]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}}
	return
}

// HexFanGeometry is a hexagon of six triangles around an interior vertex 0;
// triangle i is (0, i+1, (i+1)%6+1)
func HexFanGeometry() (V []r3.Vec, T [][3]int) {
	V = make([]r3.Vec, 7)
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		V[i+1] = r3.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	T = make([][3]int, 6)
	for i := 0; i < 6; i++ {
		T[i] = [3]int{0, i + 1, (i+1)%6 + 1}
	}
	return
}

// FaultedSquaresGeometry is two unit squares side by side, cut along the
// shared edge x=1 so each block owns its own copy of the fault vertices. The
// right block is shifted by gap along x.
//
//	left block  vertices 0..3: (0,0) (1,0) (1,1) (0,1)
//	right block vertices 4..7: (1,0) (2,0) (2,1) (1,1) shifted by gap
//
// The fault half-edges are corner 1 (1->2, left side running up) and
// corner 11 (7->4, right side running down).
func FaultedSquaresGeometry(gap float64) (V []r3.Vec, T [][3]int) {
	V = []r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		{X: 1 + gap, Y: 0}, {X: 2 + gap, Y: 0}, {X: 2 + gap, Y: 1}, {X: 1 + gap, Y: 1},
	}
	T = [][3]int{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}, {4, 6, 7}}
	return
}

// MustNew builds a mesh from a fixture and panics on error
func MustNew(V []r3.Vec, T [][3]int) *Mesh {
	m, err := New(V, T)
	if err != nil {
		panic(err)
	}
	return m
}

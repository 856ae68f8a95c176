package halfedge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/types"
)

// checkInvariants verifies the adjacency properties every valid mesh must hold
func checkInvariants(t *testing.T, m *Mesh) {
	t.Helper()
	for c := 0; c < m.NCorners(); c++ {
		assert.Equal(t, c, m.Next(m.Prev(c)), "next(prev(%d))", c)
		assert.Equal(t, m.Dst(c), m.Org(m.Next(c)), "dst(%d) must be org(next)", c)
		if o := m.Opposite(c); o != NoCorner {
			assert.Equal(t, c, m.Opposite(o), "opposite(opposite(%d))", c)
			assert.Equal(t, m.Org(c), m.Dst(o))
			assert.Equal(t, m.Dst(c), m.Org(o))
		}
	}
	for v := 0; v < m.NVerts(); v++ {
		ring := m.Corners(v)
		assert.Len(t, ring, m.Valence(v))
		hasOpen := false
		for _, c := range ring {
			assert.Equal(t, v, m.Org(c))
			if m.Opposite(c) == NoCorner {
				hasOpen = true
			}
		}
		assert.Equal(t, hasOpen, m.OnBorder(v), "boundary flag of vertex %d", v)
	}
}

func TestMesh_UnitSquare(t *testing.T) {
	m, err := New(UnitSquareGeometry())
	require.NoError(t, err)
	checkInvariants(t, m)

	assert.Equal(t, 4, m.NVerts())
	assert.Equal(t, 2, m.NTriangles())
	assert.Equal(t, 6, m.NCorners())

	// corner 4 is the top edge 2->3
	assert.Equal(t, 2, m.Org(4))
	assert.Equal(t, 3, m.Dst(4))
	assert.Equal(t, 5, m.Next(4))
	assert.Equal(t, 3, m.Prev(4))
	assert.Equal(t, 3, m.Next(5))
	assert.Equal(t, 2, m.Prev(0))

	// only the diagonal has an opposite
	assert.Equal(t, 3, m.Opposite(2))
	assert.Equal(t, 2, m.Opposite(3))
	for _, c := range []int{0, 1, 4, 5} {
		assert.Equal(t, NoCorner, m.Opposite(c))
	}
	for v := 0; v < 4; v++ {
		assert.True(t, m.OnBorder(v))
	}
	assert.Equal(t, 4, m.NBoundary())

	assert.Equal(t, r3.Vec{X: -1}, m.EdgeVector(4))
	assert.ElementsMatch(t, []int{1, 2}, m.Neighbors(0))
	assert.Equal(t, []int{3, 0}, m.Neighbors(2))
}

func TestMesh_ClosedSurfaceHasNoBorder(t *testing.T) {
	m, err := New(TetrahedronGeometry())
	require.NoError(t, err)
	checkInvariants(t, m)
	for c := 0; c < m.NCorners(); c++ {
		assert.NotEqual(t, NoCorner, m.Opposite(c))
	}
	for v := 0; v < m.NVerts(); v++ {
		assert.False(t, m.OnBorder(v))
		assert.Equal(t, 3, m.Valence(v))
		assert.Len(t, m.Neighbors(v), 3)
	}
	assert.Equal(t, 0, m.NBoundary())
}

func TestMesh_FanNeighbors(t *testing.T) {
	m, err := New(HexFanGeometry())
	require.NoError(t, err)
	checkInvariants(t, m)

	assert.False(t, m.OnBorder(0))
	for v := 1; v <= 6; v++ {
		assert.True(t, m.OnBorder(v))
	}
	// the ring head is the last corner seen, the walk runs back through the
	// earlier ones
	assert.Equal(t, []int{15, 12, 9, 6, 3, 0}, m.Corners(0))
	assert.Equal(t, []int{6, 5, 4, 3, 2, 1}, m.Neighbors(0))

	// each rim vertex starts two half-edges: to the next rim vertex and back to the center
	for v := 1; v <= 6; v++ {
		assert.Equal(t, 2, m.Valence(v))
		assert.ElementsMatch(t, []int{0, v%6 + 1}, m.Neighbors(v))
	}
}

func TestMesh_IsolatedVertex(t *testing.T) {
	V, T := UnitSquareGeometry()
	V = append(V, r3.Vec{X: 5, Y: 5})
	m, err := New(V, T)
	require.NoError(t, err)
	assert.Empty(t, m.Neighbors(4))
	assert.Empty(t, m.Corners(4))
	assert.False(t, m.OnBorder(4))
}

func TestMesh_FaultedSquares(t *testing.T) {
	m, err := New(FaultedSquaresGeometry(0))
	require.NoError(t, err)
	checkInvariants(t, m)
	// the cut leaves both fault sides open
	assert.Equal(t, NoCorner, m.Opposite(1))
	assert.Equal(t, NoCorner, m.Opposite(11))
	assert.Equal(t, 8, m.NBoundary())
}

func TestMesh_Malformed(t *testing.T) {
	square := func() []r3.Vec {
		V, _ := UnitSquareGeometry()
		return V
	}
	tests := []struct {
		name string
		V    []r3.Vec
		T    [][3]int
	}{
		{"index out of range", square(), [][3]int{{0, 1, 4}}},
		{"negative index", square(), [][3]int{{0, -1, 2}}},
		{"degenerate triangle", square(), [][3]int{{0, 1, 1}}},
		{"edge shared by three triangles", append(square(), r3.Vec{X: 2}),
			[][3]int{{0, 1, 2}, {1, 0, 3}, {0, 4, 1}}},
		{"inconsistent winding", square(), [][3]int{{0, 1, 2}, {0, 1, 3}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.V, tc.T)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrMalformedMesh), "got %v", err)
		})
	}
}

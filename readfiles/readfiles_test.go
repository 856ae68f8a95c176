package readfiles

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/types"
)

const squareOBJ = `# unit square
o square
v 0 0 0
v 1.0 0 0
v 1 1 0

v 0 1 0.5
vn 0 0 1
f 1 2 3
f 1/1/1 3/3/3 4/4/4
l 1 2
`

func TestParseOBJ(t *testing.T) {
	g, err := ParseOBJ(strings.NewReader(squareOBJ))
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1, Z: 0.5}}, g.V)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, g.T)
}

func TestParseOBJ_Malformed(t *testing.T) {
	for _, text := range []string{
		"v 0 0\n",
		"v 0 zero 0\n",
		"v 0 0 0\nf 1 2\n",
		"v 0 0 0\nf 1 two 3\n",
	} {
		_, err := ParseOBJ(strings.NewReader(text))
		require.Error(t, err, text)
		assert.True(t, errors.Is(err, types.ErrMalformedMesh), "got %v", err)
	}
}

func TestOBJ_RoundTrip(t *testing.T) {
	var (
		V = []r3.Vec{{X: 0.125, Y: -3.5, Z: 2}, {X: 10, Y: 0.000001}, {X: -7.25, Y: 4, Z: 1e3}, {X: 1, Y: 1, Z: 1}}
		T = [][3]int{{0, 1, 2}, {0, 2, 3}}
	)
	filename := filepath.Join(t.TempDir(), "roundtrip.obj")
	require.NoError(t, WriteOBJFile(filename, V, T))
	g, err := ReadOBJ(filename)
	require.NoError(t, err)
	require.Len(t, g.V, len(V))
	for i := range V {
		assert.InDelta(t, V[i].X, g.V[i].X, 1e-6)
		assert.InDelta(t, V[i].Y, g.V[i].Y, 1e-6)
		assert.InDelta(t, V[i].Z, g.V[i].Z, 1e-6)
	}
	assert.Equal(t, T, g.T)
}

func TestReadOBJ_MissingFile(t *testing.T) {
	_, err := ReadOBJ(filepath.Join(t.TempDir(), "nope.obj"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteVTK(t *testing.T) {
	var (
		buf bytes.Buffer
		V   = []r3.Vec{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
		T   = [][3]int{{0, 1, 2}, {0, 2, 3}}
	)
	require.NoError(t, WriteVTK(&buf, V, T, []float64{0, 0.5, 1, 1.5}))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "# vtk DataFile Version 3.0", lines[0])
	assert.Equal(t, "ASCII", lines[2])
	assert.Equal(t, "DATASET UNSTRUCTURED_GRID", lines[3])
	assert.Equal(t, "POINTS 4 double", lines[5])
	assert.Equal(t, "1.000000 1.000000 0.000000", lines[8])
	assert.Equal(t, "CELLS 2 8", lines[11])
	assert.Equal(t, "3 0 1 2", lines[12])
	assert.Equal(t, "3 0 2 3", lines[13])
	assert.Equal(t, "CELL_TYPES 2", lines[15])
	assert.Equal(t, "5", lines[16])
	assert.Equal(t, "5", lines[17])
	assert.Equal(t, "POINT_DATA 4", lines[19])
	assert.Equal(t, "SCALARS f double 1", lines[20])
	assert.Equal(t, "LOOKUP_TABLE default", lines[21])
	assert.Equal(t, "1.500000", lines[25])

	buf.Reset()
	require.NoError(t, WriteVTK(&buf, V, T, nil))
	assert.NotContains(t, buf.String(), "POINT_DATA")

	err := WriteVTK(&buf, V, T, []float64{1})
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

// Package system assembles the least squares systems solved to flatten and to
// deform a cross-section mesh.
package system

import (
	"fmt"

	"github.com/notargets/geodeform/attributes"
	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/lsq"
	"github.com/notargets/geodeform/types"
	"github.com/notargets/geodeform/utils"
)

// DefaultPinWeight is the quadratic penalty locking boundary vertices in place
// while flattening
const DefaultPinWeight = 100.

type RowKind uint8

const (
	ShapeRow RowKind = iota
	PinRow
	HorizonRow
	FaultRow
	CouplingYRow
	CouplingXRow
)

func (rk RowKind) String() string {
	switch rk {
	case ShapeRow:
		return "Shape"
	case PinRow:
		return "Pin"
	case HorizonRow:
		return "Horizon"
	case FaultRow:
		return "Fault"
	case CouplingYRow:
		return "CouplingY"
	case CouplingXRow:
		return "CouplingX"
	}
	return fmt.Sprintf("RowKind(%d)", uint8(rk))
}

// RowInfo describes a constraint row appended after the shape rows. Corner is
// halfedge.NoCorner for pin rows. Vertex is the pinned vertex of a pin row and
// Dst(Corner) for the other kinds.
type RowInfo struct {
	Kind   RowKind
	Corner int
	Vertex int
}

// Layout lists the appended rows in row order
type Layout []RowInfo

// Count returns the number of rows of kind rk
func (l Layout) Count(rk RowKind) (n int) {
	for _, ri := range l {
		if ri.Kind == rk {
			n++
		}
	}
	return
}

/*
BuildLaplacian assembles the flattening system for one coordinate axis. The
columns are the vertex coordinates along axis. Row c, one per corner, asks for a
zero difference along the half-edge:

	x[Dst(c)] - x[Org(c)] = 0

Each boundary vertex, in ascending vertex order, then gets a row pinning it to
its current coordinate with the given weight:

	weight * x[v] = weight * V[v][axis]
*/
func BuildLaplacian(m *halfedge.Mesh, axis int, weight float64) (s *lsq.System, layout Layout, err error) {
	if axis < 0 || axis > 2 {
		panic(fmt.Errorf("axis %d is not a coordinate axis", axis))
	}
	var (
		nv, nc = m.NVerts(), m.NCorners()
		nb     = m.NBoundary()
	)
	if nc == 0 {
		return nil, nil, fmt.Errorf("mesh has no triangles: %w", types.ErrMalformedMesh)
	}
	ra := utils.NewRowAssembler(nv, nc+nb, "Laplacian")
	for c := 0; c < nc; c++ {
		row := ra.AppendRow(0)
		ra.Set(row, m.Dst(c), 1)
		ra.Set(row, m.Org(c), -1)
	}
	layout = make(Layout, 0, nb)
	for v := 0; v < nv; v++ {
		if !m.OnBorder(v) {
			continue
		}
		row := ra.AppendRow(weight * coord(m, v, axis))
		ra.Set(row, v, weight)
		layout = append(layout, RowInfo{Kind: PinRow, Corner: halfedge.NoCorner, Vertex: v})
	}
	A, b := ra.ToCSR()
	if s, err = lsq.NewSystem(A, b); err != nil {
		return nil, nil, err
	}
	return
}

// Constants weight the horizon and fault rows of the deformation system
type Constants struct {
	Horizon float64
	Fault   float64
}

// Col is the column of the deformation system holding coordinate axis of v
func Col(v, axis int) int { return 2*v + axis }

/*
BuildDeformation assembles the system straightening horizons and faults. The
unknowns are the x and y of every vertex, in column Col(v, axis).

Rows 2c+axis keep the edge vector of corner c:

	P[Dst(c)][axis] - P[Org(c)][axis] = V[Dst(c)][axis] - V[Org(c)][axis]

A single pass over the corners then appends, in this order and only when the
labels call for it:

	horizon row     k.Horizon * (y[Dst(c)] - y[Org(c)]) = 0
	fault row       k.Fault   * (x[Dst(c)] - x[Org(c)]) = 0
	coupling y row  y[Dst(c)] - y[Org(o)] = 0,  o = FaultOpposite[c]
	coupling x row  x[Dst(c)] - x[Org(o)] = 0

Coupling rows are only emitted for fault corners with a known opposite whose
stitched endpoints are distinct vertices.
*/
func BuildDeformation(m *halfedge.Mesh, attr *attributes.Set, k Constants) (s *lsq.System, layout Layout, err error) {
	var (
		nv, nc = m.NVerts(), m.NCorners()
	)
	if nc == 0 {
		return nil, nil, fmt.Errorf("mesh has no triangles: %w", types.ErrMalformedMesh)
	}
	if err = attr.Validate(nc); err != nil {
		return nil, nil, err
	}
	ra := utils.NewRowAssembler(2*nv, 3*nc, "Deformation")
	for c := 0; c < nc; c++ {
		org, dst := m.Org(c), m.Dst(c)
		for axis := 0; axis < 2; axis++ {
			row := ra.AppendRow(coord(m, dst, axis) - coord(m, org, axis))
			ra.Set(row, Col(dst, axis), 1)
			ra.Set(row, Col(org, axis), -1)
		}
	}
	difference := func(kind RowKind, c, i, j, axis int, scale float64) {
		row := ra.AppendRow(0)
		ra.Set(row, Col(i, axis), scale)
		ra.Set(row, Col(j, axis), -scale)
		layout = append(layout, RowInfo{Kind: kind, Corner: c, Vertex: i})
	}
	for c := 0; c < nc; c++ {
		org, dst := m.Org(c), m.Dst(c)
		if attr.HorizonID[c] >= 0 {
			difference(HorizonRow, c, dst, org, 1, k.Horizon)
		}
		if !attr.IsFault[c] {
			continue
		}
		difference(FaultRow, c, dst, org, 0, k.Fault)
		o := attr.FaultOpposite[c]
		if o == halfedge.NoCorner || m.Org(o) == dst {
			continue
		}
		difference(CouplingYRow, c, dst, m.Org(o), 1, 1)
		difference(CouplingXRow, c, dst, m.Org(o), 0, 1)
	}
	A, b := ra.ToCSR()
	if s, err = lsq.NewSystem(A, b); err != nil {
		return nil, nil, err
	}
	return
}

func coord(m *halfedge.Mesh, v, axis int) float64 {
	p := m.Point(v)
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}

// Package deform writes solved systems back into meshes and runs the flatten,
// deform and label pipelines end to end.
package deform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/geodeform/attributes"
	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/system"
	"github.com/notargets/geodeform/types"
)

/*
LiftParameters place the deformed section in z for display. Horizon h is lifted
to

	z = (1 + h) / HorizonDivisor * HorizonScale

and every fault corner lowers both of its endpoints by FaultDrop. The values are
visual tuning only and take no part in the solve.
*/
type LiftParameters struct {
	HorizonDivisor float64 `json:"horizon_divisor"`
	HorizonScale   float64 `json:"horizon_scale"`
	FaultDrop      float64 `json:"fault_drop"`
}

var DefaultLift = LiftParameters{
	HorizonDivisor: 37.76,
	HorizonScale:   0.1,
	FaultDrop:      0.01,
}

func (lp LiftParameters) HorizonHeight(h int) float64 {
	return float64(1+h) / lp.HorizonDivisor * lp.HorizonScale
}

// ApplyAxis writes one solved coordinate per vertex into the given axis
func ApplyAxis(m *halfedge.Mesh, axis int, x []float64) (err error) {
	if len(x) != m.NVerts() {
		return fmt.Errorf("solution has %d values for %d vertices: %w",
			len(x), m.NVerts(), types.ErrInvalidArgument)
	}
	for v, val := range x {
		p := m.Point(v)
		switch axis {
		case 0:
			p.X = val
		case 1:
			p.Y = val
		case 2:
			p.Z = val
		default:
			panic(fmt.Errorf("axis %d is not a coordinate axis", axis))
		}
		m.SetPoint(v, p)
	}
	return
}

/*
ApplyDeformation writes the x and y of every vertex from the solution of the
deformation system, then applies the lift rules in corner order: horizons
first, faults second. A vertex shared by several fault corners is lowered once
per corner.
*/
func ApplyDeformation(m *halfedge.Mesh, attr *attributes.Set, x []float64, lp LiftParameters) (err error) {
	if len(x) != 2*m.NVerts() {
		return fmt.Errorf("solution has %d values for %d vertices: %w",
			len(x), m.NVerts(), types.ErrInvalidArgument)
	}
	if err = attr.Validate(m.NCorners()); err != nil {
		return
	}
	for v := 0; v < m.NVerts(); v++ {
		p := m.Point(v)
		p.X, p.Y = x[system.Col(v, 0)], x[system.Col(v, 1)]
		m.SetPoint(v, p)
	}
	setZ := func(v int, z float64) {
		p := m.Point(v)
		p.Z = z
		m.SetPoint(v, p)
	}
	for c, h := range attr.HorizonID {
		if h < 0 {
			continue
		}
		z := lp.HorizonHeight(h)
		setZ(m.Org(c), z)
		setZ(m.Dst(c), z)
	}
	for c, f := range attr.IsFault {
		if !f {
			continue
		}
		setZ(m.Org(c), m.Point(m.Org(c)).Z-lp.FaultDrop)
		setZ(m.Dst(c), m.Point(m.Dst(c)).Z-lp.FaultDrop)
	}
	return
}

// Displacement returns, per vertex, the in-plane distance moved from orig
func Displacement(orig []r3.Vec, m *halfedge.Mesh) (d []float64) {
	d = make([]float64, m.NVerts())
	for v := range d {
		p := m.Point(v)
		d[v] = math.Hypot(p.X-orig[v].X, p.Y-orig[v].Y)
	}
	return
}

// Package attributes labels the half-edges of a cross-section mesh as horizon
// or fault edges. Labels are indexed by corner id and consumed read-only by the
// system builders.
package attributes

import (
	"fmt"

	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/types"
)

// NoHorizon is the HorizonID of a corner that lies on no horizon
const NoHorizon = -1

// Set holds one entry per corner of the mesh it was computed for
type Set struct {
	HorizonID     []int  `json:"horizon_id"`
	IsFault       []bool `json:"is_fault"`
	FaultOpposite []int  `json:"fault_opposite,omitempty"` // halfedge.NoCorner when unpaired
}

// Source computes the labels of a mesh
type Source interface {
	Label(m *halfedge.Mesh) (*Set, error)
}

func NewSet(ncorners int) (s *Set) {
	s = &Set{
		HorizonID:     make([]int, ncorners),
		IsFault:       make([]bool, ncorners),
		FaultOpposite: make([]int, ncorners),
	}
	for c := 0; c < ncorners; c++ {
		s.HorizonID[c] = NoHorizon
		s.FaultOpposite[c] = halfedge.NoCorner
	}
	return
}

// Validate checks that every array has one entry per corner and that fault
// pairings reference existing corners
func (s *Set) Validate(ncorners int) (err error) {
	for _, l := range []struct {
		name string
		n    int
	}{
		{"horizon_id", len(s.HorizonID)},
		{"is_fault", len(s.IsFault)},
		{"fault_opposite", len(s.FaultOpposite)},
	} {
		if l.n != ncorners {
			return fmt.Errorf("%s has %d entries for %d corners: %w",
				l.name, l.n, ncorners, types.ErrInvalidAttribute)
		}
	}
	for c, o := range s.FaultOpposite {
		if o != halfedge.NoCorner && (o < 0 || o >= ncorners) {
			return fmt.Errorf("fault_opposite[%d] = %d is not a corner: %w",
				c, o, types.ErrInvalidAttribute)
		}
	}
	return
}

type Counts struct {
	HorizonCorners, FaultCorners, FaultPairs, Horizons int
}

func (s *Set) Count() (cnt Counts) {
	ids := make(map[int]struct{})
	for c, h := range s.HorizonID {
		if h >= 0 {
			cnt.HorizonCorners++
			ids[h] = struct{}{}
		}
		if s.IsFault[c] {
			cnt.FaultCorners++
			if s.FaultOpposite[c] != halfedge.NoCorner {
				cnt.FaultPairs++
			}
		}
	}
	cnt.Horizons = len(ids)
	return
}

// Static is a Source returning a fixed set, validated against the mesh
type Static struct {
	Set *Set
}

func (st Static) Label(m *halfedge.Mesh) (s *Set, err error) {
	if err = st.Set.Validate(m.NCorners()); err != nil {
		return nil, err
	}
	return st.Set, nil
}

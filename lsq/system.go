// Package lsq holds sparse least squares systems and the solvers that minimize
// ||Ax - b||². Solvers are a capability: anything with a Solve method can be
// handed to the pipelines.
package lsq

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/geodeform/types"
)

// System is an overdetermined sparse system A x ≈ B
type System struct {
	A *sparse.CSR
	B []float64
}

func NewSystem(A *sparse.CSR, b []float64) (s *System, err error) {
	nr, _ := A.Dims()
	if nr != len(b) {
		return nil, fmt.Errorf("matrix has %d rows, right hand side has %d: %w",
			nr, len(b), types.ErrInvalidArgument)
	}
	return &System{A: A, B: b}, nil
}

func (s *System) Dims() (m, n int) { return s.A.Dims() }

// MulVec computes dst = A x
func (s *System) MulVec(dst, x []float64) {
	var (
		raw  = s.A.RawMatrix()
		m, _ = s.Dims()
	)
	for i := 0; i < m; i++ {
		var sum float64
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			sum += raw.Data[k] * x[raw.Ind[k]]
		}
		dst[i] = sum
	}
}

// MulTransVec computes dst = Aᵀ y
func (s *System) MulTransVec(dst, y []float64) {
	var (
		raw  = s.A.RawMatrix()
		m, _ = s.Dims()
	)
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < m; i++ {
		yi := y[i]
		if yi == 0 {
			continue
		}
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			dst[raw.Ind[k]] += raw.Data[k] * yi
		}
	}
}

// Residual returns ||A x - B||
func (s *System) Residual(x []float64) float64 {
	r := make([]float64, len(s.B))
	s.MulVec(r, x)
	floats.Sub(r, s.B)
	return floats.Norm(r, 2)
}

// NonZeros returns the stored entries of row i as column -> value
func (s *System) NonZeros(i int) (row map[int]float64) {
	raw := s.A.RawMatrix()
	row = make(map[int]float64, raw.Indptr[i+1]-raw.Indptr[i])
	for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
		row[raw.Ind[k]] = raw.Data[k]
	}
	return
}

// Dense copies A into a gonum dense matrix
func (s *System) Dense() (D *mat.Dense) {
	var (
		raw  = s.A.RawMatrix()
		m, n = s.Dims()
	)
	D = mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			D.Set(i, raw.Ind[k], raw.Data[k])
		}
	}
	return
}

func checkFinite(x []float64) (err error) {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("solution component %d is %v", i, v)
		}
	}
	return
}

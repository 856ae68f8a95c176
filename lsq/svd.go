package lsq

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DenseSVD solves the system through a thin SVD of the densified matrix and
// returns the minimum norm least squares solution. Memory grows as m*n, so it
// suits small meshes and reference checks of the iterative solver.
type DenseSVD struct {
	RCond float64 // singular values below RCond*σmax are treated as zero, default 1e-10
}

func (d DenseSVD) Solve(s *System) (x []float64, err error) {
	var (
		m, n  = s.Dims()
		rcond = d.RCond
		svd   mat.SVD
	)
	if rcond <= 0 {
		rcond = 1e-10
	}
	x = make([]float64, n)
	if m == 0 || n == 0 {
		return
	}
	if ok := svd.Factorize(s.Dense(), mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return
	}
	var xv mat.VecDense
	svd.SolveVecTo(&xv, mat.NewVecDense(m, s.B), rank)
	mat.Col(x, 0, &xv)
	if err = checkFinite(x); err != nil {
		return nil, fmt.Errorf("svd rank %d: %w", rank, err)
	}
	return
}

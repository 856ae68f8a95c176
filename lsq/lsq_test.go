package lsq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/geodeform/types"
	"github.com/notargets/geodeform/utils"
)

// newTestSystem builds a system from dense rows
func newTestSystem(t *testing.T, rows [][]float64, b []float64) *System {
	t.Helper()
	ra := utils.NewRowAssembler(len(rows[0]), len(rows), "test")
	for i, row := range rows {
		r := ra.AppendRow(b[i])
		for j, val := range row {
			if val != 0 {
				ra.Set(r, j, val)
			}
		}
	}
	A, rhs := ra.ToCSR()
	s, err := NewSystem(A, rhs)
	require.NoError(t, err)
	return s
}

func testSolvers() map[string]Solver {
	return map[string]Solver{
		"lsmr": LSMR{ATol: 1e-12, BTol: 1e-12, MaxIter: 200},
		"svd":  DenseSVD{},
	}
}

func TestSystem_Products(t *testing.T) {
	s := newTestSystem(t, [][]float64{
		{1, 2, 0},
		{0, -1, 4},
	}, []float64{1, 2})
	m, n := s.Dims()
	assert.Equal(t, 2, m)
	assert.Equal(t, 3, n)

	ax := make([]float64, 2)
	s.MulVec(ax, []float64{1, 1, 1})
	assert.Equal(t, []float64{3, 3}, ax)

	aty := []float64{7, 7, 7} // overwritten
	s.MulTransVec(aty, []float64{1, 2})
	assert.Equal(t, []float64{1, 0, 8}, aty)

	assert.InDelta(t, 2.2360679775, s.Residual([]float64{1, 1, 1}), 1e-9)
	assert.Equal(t, map[int]float64{1: -1, 2: 4}, s.NonZeros(1))
	assert.Equal(t, 4.0, s.Dense().At(1, 2))
}

func TestSolvers_FullRankFit(t *testing.T) {
	// y = 2 + 3t sampled exactly
	var (
		rows [][]float64
		b    []float64
	)
	for _, tt := range []float64{0, 0.5, 1, 2, 3} {
		rows = append(rows, []float64{1, tt})
		b = append(b, 2+3*tt)
	}
	s := newTestSystem(t, rows, b)
	for name, solver := range testSolvers() {
		x, err := solver.Solve(s)
		require.NoError(t, err, name)
		assert.InDelta(t, 2, x[0], 1e-8, name)
		assert.InDelta(t, 3, x[1], 1e-8, name)
		assert.InDelta(t, 0, s.Residual(x), 1e-8, name)
	}
}

func TestSolvers_RankDeficientMinimumNorm(t *testing.T) {
	// only differences are constrained, the constant shift is free
	s := newTestSystem(t, [][]float64{
		{-1, 1, 0},
		{0, -1, 1},
	}, []float64{1, 1})
	for name, solver := range testSolvers() {
		x, err := solver.Solve(s)
		require.NoError(t, err, name)
		assert.InDelta(t, -1, x[0], 1e-8, name)
		assert.InDelta(t, 0, x[1], 1e-8, name)
		assert.InDelta(t, 1, x[2], 1e-8, name)
	}
}

func TestSolvers_Inconsistent(t *testing.T) {
	s := newTestSystem(t, [][]float64{{1}, {1}}, []float64{1, 3})
	for name, solver := range testSolvers() {
		x, err := solver.Solve(s)
		require.NoError(t, err, name)
		assert.InDelta(t, 2, x[0], 1e-8, name)
	}
}

func TestLSMR_Info(t *testing.T) {
	zero := newTestSystem(t, [][]float64{{1, 0}, {0, 1}}, []float64{0, 0})
	res, err := LSMR{}.SolveWithInfo(zero)
	require.NoError(t, err)
	assert.Equal(t, StopZeroSolution, res.Stop)
	assert.Equal(t, []float64{0, 0}, res.X)
	assert.Equal(t, 0, res.Iterations)

	s := newTestSystem(t, [][]float64{{2, 0}, {0, 4}}, []float64{2, 4})
	res, err = LSMR{ATol: 1e-12, BTol: 1e-12, MaxIter: 10}.SolveWithInfo(s)
	require.NoError(t, err)
	assert.InDelta(t, 1, res.X[0], 1e-10)
	assert.InDelta(t, 1, res.X[1], 1e-10)
	assert.LessOrEqual(t, res.Iterations, 3)
	assert.NotEqual(t, StopIterationLimit, res.Stop)
	assert.InDelta(t, 0, res.NormR, 1e-10)
	assert.NotEmpty(t, res.Stop.String())
}

func TestNewSolver(t *testing.T) {
	s, err := NewSolver("LSMR", Options{MaxIter: 10})
	require.NoError(t, err)
	assert.Equal(t, LSMR{MaxIter: 10}, s)

	s, err = NewSolver("svd", Options{RCond: 1e-8})
	require.NoError(t, err)
	assert.Equal(t, DenseSVD{RCond: 1e-8}, s)

	_, err = NewSolver("cholesky", Options{})
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
	assert.Equal(t, "svd", SolverSVD.String())
}

func TestSolverFunc(t *testing.T) {
	var called bool
	var solver Solver = SolverFunc(func(s *System) ([]float64, error) {
		called = true
		_, n := s.Dims()
		return make([]float64, n), nil
	})
	x, err := solver.Solve(newTestSystem(t, [][]float64{{1, 1}}, []float64{1}))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, x, 2)
}

func TestNewSystem_Mismatch(t *testing.T) {
	s := newTestSystem(t, [][]float64{{1}}, []float64{1})
	_, err := NewSystem(s.A, []float64{1, 2})
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

package lsq

import (
	"fmt"
	"strings"

	"github.com/notargets/geodeform/types"
)

// Solver returns x minimizing ||A x - b||². No convergence guarantee is
// implied; iterative solvers return their best estimate.
type Solver interface {
	Solve(s *System) (x []float64, err error)
}

// SolverFunc adapts a plain function to the Solver interface
type SolverFunc func(s *System) ([]float64, error)

func (f SolverFunc) Solve(s *System) ([]float64, error) { return f(s) }

type SolverType uint8

const (
	SolverLSMR SolverType = iota
	SolverSVD
)

func (st SolverType) String() string {
	return [...]string{"lsmr", "svd"}[st]
}

var SolverNameMap = map[string]SolverType{
	"lsmr":  SolverLSMR,
	"svd":   SolverSVD,
	"dense": SolverSVD,
}

func ParseSolverType(name string) (st SolverType, err error) {
	var ok bool
	if st, ok = SolverNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown solver %q, want lsmr or svd: %w", name, types.ErrInvalidArgument)
	}
	return
}

// Options configures NewSolver; zero values select each solver's defaults
type Options struct {
	ATol, BTol, ConLim float64
	MaxIter            int
	RCond              float64
}

func NewSolver(name string, opts Options) (s Solver, err error) {
	var st SolverType
	if st, err = ParseSolverType(name); err != nil {
		return
	}
	switch st {
	case SolverSVD:
		s = DenseSVD{RCond: opts.RCond}
	default:
		s = LSMR{ATol: opts.ATol, BTol: opts.BTol, ConLim: opts.ConLim, MaxIter: opts.MaxIter}
	}
	return
}

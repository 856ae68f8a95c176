package lsq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type StopReason uint8

const (
	StopZeroSolution StopReason = iota // b = 0 or Aᵀb = 0, x = 0 is exact
	StopCompatible                     // ||Ax - b|| small enough given ATol, BTol
	StopLeastSquares                   // least squares solution within ATol
	StopConditionLimit                 // cond(A) estimate exceeds ConLim
	StopCompatibleEps                  // as StopCompatible at machine precision
	StopLeastSquaresEps                // as StopLeastSquares at machine precision
	StopConditionEps                   // cond(A) estimate exceeds 1/eps
	StopIterationLimit
)

func (sr StopReason) String() string {
	return [...]string{
		"zero solution",
		"compatible system",
		"least squares solution",
		"condition limit",
		"compatible system at machine precision",
		"least squares solution at machine precision",
		"condition at machine precision",
		"iteration limit",
	}[sr]
}

/*
LSMR is the iterative least squares method of Fong and Saunders, equivalent to
MINRES on the normal equations AᵀA x = Aᵀb but applied to A directly. Starting
from x = 0 it converges to the minimum norm solution of rank deficient systems,
which is what the deformation system needs: its shape rows leave a rigid
translation undetermined.
*/
type LSMR struct {
	ATol, BTol float64 // defaults 1e-6
	ConLim     float64 // default 1e8
	MaxIter    int     // default min(m, n)
}

type Result struct {
	X          []float64
	Stop       StopReason
	Iterations int
	NormR      float64 // ||b - Ax||
	NormAR     float64 // ||Aᵀ(b - Ax)||
	NormA      float64 // Frobenius norm estimate
	CondA      float64
	NormX      float64
}

func (l LSMR) Solve(s *System) (x []float64, err error) {
	var res *Result
	if res, err = l.SolveWithInfo(s); err != nil {
		return
	}
	return res.X, nil
}

func (l LSMR) withDefaults(m, n int) LSMR {
	if l.ATol <= 0 {
		l.ATol = 1e-6
	}
	if l.BTol <= 0 {
		l.BTol = 1e-6
	}
	if l.ConLim <= 0 {
		l.ConLim = 1e8
	}
	if l.MaxIter <= 0 {
		l.MaxIter = min(m, n)
	}
	return l
}

func (l LSMR) SolveWithInfo(s *System) (res *Result, err error) {
	var (
		m, n = s.Dims()
		p    = l.withDefaults(m, n)
		ctol float64
	)
	if p.ConLim > 0 {
		ctol = 1 / p.ConLim
	}
	var (
		u     = make([]float64, m)
		v     = make([]float64, n)
		au    = make([]float64, m)
		atv   = make([]float64, n)
		x     = make([]float64, n)
		normb = floats.Norm(s.B, 2)
		beta  = normb
		alpha float64
	)
	res = &Result{X: x}
	copy(u, s.B)
	if beta > 0 {
		floats.Scale(1/beta, u)
		s.MulTransVec(v, u)
		alpha = floats.Norm(v, 2)
	}
	if alpha > 0 {
		floats.Scale(1/alpha, v)
	}
	if normb == 0 || alpha*beta == 0 {
		res.Stop = StopZeroSolution
		res.NormR = beta
		return
	}

	var (
		zetabar  = alpha * beta
		alphabar = alpha
		rho      = 1.0
		rhobar   = 1.0
		cbar     = 1.0
		sbar     = 0.0

		h    = make([]float64, n)
		hbar = make([]float64, n)

		// ||r|| estimation
		betadd      = beta
		betad       = 0.0
		rhodold     = 1.0
		tautildeold = 0.0
		thetatilde  = 0.0
		zeta        = 0.0
		d           = 0.0

		// ||A|| and cond(A) estimation
		normA2  = alpha * alpha
		maxrbar = 0.0
		minrbar = 1e100
		normA   = math.Sqrt(normA2)
		condA   = 1.0
		normx   = 0.0
		normr   = beta
		normar  = alpha * beta
		itn     int
		istop   StopReason
		stopped bool
	)
	copy(h, v)

	for itn < p.MaxIter {
		itn++

		// Next step of the Golub-Kahan bidiagonalization
		s.MulVec(au, v)
		floats.AddScaledTo(u, au, -alpha, u)
		beta = floats.Norm(u, 2)
		if beta > 0 {
			floats.Scale(1/beta, u)
			s.MulTransVec(atv, u)
			floats.AddScaledTo(v, atv, -beta, v)
			alpha = floats.Norm(v, 2)
			if alpha > 0 {
				floats.Scale(1/alpha, v)
			}
		}

		// Undamped, so the rotation Qhat reduces to a sign
		chat, shat, alphahat := symOrtho(alphabar, 0)

		// Plane rotation Q_i turning B_i into R_i
		rhoold := rho
		c, sn, rhoNew := symOrtho(alphahat, beta)
		rho = rhoNew
		thetanew := sn * alpha
		alphabar = c * alpha

		// Plane rotation Qbar_i turning R_iᵀ into Rbar_i
		rhobarold := rhobar
		zetaold := zeta
		thetabar := sbar * rho
		rhotemp := cbar * rho
		cbar, sbar, rhobar = symOrtho(cbar*rho, thetanew)
		zeta = cbar * zetabar
		zetabar = -sbar * zetabar

		// Update h, hbar and x
		floats.AddScaledTo(hbar, h, -thetabar*rho/(rhoold*rhobarold), hbar)
		floats.AddScaled(x, zeta/(rho*rhobar), hbar)
		floats.AddScaledTo(h, v, -thetanew/rho, h)

		// Estimate ||r||
		betaacute := chat * betadd
		betacheck := -shat * betadd
		betahat := c * betaacute
		betadd = -sn * betaacute

		thetatildeold := thetatilde
		ctildeold, stildeold, rhotildeold := symOrtho(rhodold, thetabar)
		thetatilde = stildeold * rhobar
		rhodold = ctildeold * rhobar
		betad = -stildeold*betad + ctildeold*betahat

		tautildeold = (zetaold - thetatildeold*tautildeold) / rhotildeold
		taud := (zeta - thetatilde*tautildeold) / rhodold
		d += betacheck * betacheck
		normr = math.Sqrt(d + (betad-taud)*(betad-taud) + betadd*betadd)

		// Estimate ||A|| and cond(A)
		normA2 += beta * beta
		normA = math.Sqrt(normA2)
		normA2 += alpha * alpha
		maxrbar = math.Max(maxrbar, rhobarold)
		if itn > 1 {
			minrbar = math.Min(minrbar, rhobarold)
		}
		condA = math.Max(maxrbar, rhotemp) / math.Min(minrbar, rhotemp)

		// Convergence tests
		normar = math.Abs(zetabar)
		normx = floats.Norm(x, 2)

		test1 := normr / normb
		test2 := math.Inf(1)
		if normA*normr != 0 {
			test2 = normar / (normA * normr)
		}
		test3 := 1 / condA
		t1 := test1 / (1 + normA*normx/normb)
		rtol := p.BTol + p.ATol*normA*normx/normb

		switch {
		case test1 <= rtol:
			istop, stopped = StopCompatible, true
		case test2 <= p.ATol:
			istop, stopped = StopLeastSquares, true
		case test3 <= ctol:
			istop, stopped = StopConditionLimit, true
		case 1+t1 <= 1:
			istop, stopped = StopCompatibleEps, true
		case 1+test2 <= 1:
			istop, stopped = StopLeastSquaresEps, true
		case 1+test3 <= 1:
			istop, stopped = StopConditionEps, true
		case itn >= p.MaxIter:
			istop, stopped = StopIterationLimit, true
		}
		if stopped {
			break
		}
	}
	if !stopped {
		istop = StopIterationLimit
	}
	res.Stop = istop
	res.Iterations = itn
	res.NormR = normr
	res.NormAR = normar
	res.NormA = normA
	res.CondA = condA
	res.NormX = normx
	if err = checkFinite(x); err != nil {
		return nil, fmt.Errorf("lsmr after %d iterations: %w", itn, err)
	}
	return
}

// symOrtho is a stable construction of the Givens rotation [c s; -s c] with
// c*a + s*b = r
func symOrtho(a, b float64) (c, s, r float64) {
	switch {
	case b == 0:
		return sign(a), 0, math.Abs(a)
	case a == 0:
		return 0, sign(b), math.Abs(b)
	case math.Abs(b) > math.Abs(a):
		tau := a / b
		s = sign(b) / math.Sqrt(1+tau*tau)
		c = s * tau
		r = b / s
	default:
		tau := b / a
		c = sign(a) / math.Sqrt(1+tau*tau)
		s = c * tau
		r = a / c
	}
	return
}

func sign(a float64) float64 {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}

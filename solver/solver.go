// Package solver implements bounded nonlinear least squares.
//
// LeastSquares minimises 0.5*||r(x)||^2 subject to lower <= x <= upper with a
// projected Levenberg-Marquardt iteration. The Jacobian of r is taken by forward
// differences.
package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ResidualFunc writes r(x) into dst. A returned error aborts the solve.
type ResidualFunc func(dst, x []float64) error

// ErrInvalidInput is returned for inconsistent dimensions or bounds.
var ErrInvalidInput = errors.New("solver: invalid input")

// Status records why the iteration stopped.
type Status int

const (
	StatusResidualTolerance Status = iota + 1
	StatusGradientTolerance
	StatusStepTolerance
	StatusCostTolerance
	StatusMaxIterations
	StatusMaxEvaluations
	StatusDampingOverflow
)

func (s Status) String() string {
	switch s {
	case StatusResidualTolerance:
		return "residuals below tolerance"
	case StatusGradientTolerance:
		return "projected gradient below gtol"
	case StatusStepTolerance:
		return "step below xtol"
	case StatusCostTolerance:
		return "cost reduction below ftol"
	case StatusMaxIterations:
		return "maximum iterations reached"
	case StatusMaxEvaluations:
		return "maximum residual evaluations reached"
	case StatusDampingOverflow:
		return "damping overflow, no descent step found"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Converged reports whether s is a tolerance stop. A step, cost or gradient stop
// says nothing about the size of the residuals left.
func (s Status) Converged() bool {
	return s >= StatusResidualTolerance && s <= StatusCostTolerance
}

// Settings controls the iteration. Zero values take the defaults of DefaultSettings.
type Settings struct {
	MaxIterations     int
	MaxEvaluations    int
	ResidualTolerance float64
	XTol              float64
	FTol              float64
	GTol              float64
	InitialDamping    float64
	JacobianStep      float64
}

// DefaultSettings returns the settings used for curve calibration.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:     200,
		MaxEvaluations:    0,
		ResidualTolerance: 1e-12,
		XTol:              1e-12,
		FTol:              1e-15,
		GTol:              1e-15,
		InitialDamping:    1e-3,
		JacobianStep:      1.4901161193847656e-08, // sqrt(machine epsilon)
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.ResidualTolerance <= 0 {
		s.ResidualTolerance = d.ResidualTolerance
	}
	if s.XTol <= 0 {
		s.XTol = d.XTol
	}
	if s.FTol <= 0 {
		s.FTol = d.FTol
	}
	if s.GTol <= 0 {
		s.GTol = d.GTol
	}
	if s.InitialDamping <= 0 {
		s.InitialDamping = d.InitialDamping
	}
	if s.JacobianStep <= 0 {
		s.JacobianStep = d.JacobianStep
	}
	return s
}

// Result is the solver outcome. X and Residuals are the best point found.
type Result struct {
	X           []float64
	Residuals   []float64
	Cost        float64
	Iterations  int
	Evaluations int
	Success     bool
	Status      Status
	Message     string
}

const (
	minDiagonal = 1e-12
	maxDamping  = 1e16
	minDamping  = 1e-15
)

type problem struct {
	fn    ResidualFunc
	m, n  int
	lower []float64
	upper []float64
	evals int
	err   error
}

func (p *problem) eval(dst, x []float64) error {
	p.evals++
	return p.fn(dst, x)
}

func (p *problem) clip(x []float64) {
	for i := range x {
		x[i] = math.Min(math.Max(x[i], p.lower[i]), p.upper[i])
	}
}

// jacobian fills jac with forward differences around x, reusing r0 = r(x).
func (p *problem) jacobian(jac *mat.Dense, x, r0 []float64, step float64) error {
	p.err = nil
	fd.Jacobian(jac, func(y, xx []float64) {
		if p.err != nil {
			return
		}
		if err := p.eval(y, xx); err != nil {
			p.err = err
		}
	}, x, &fd.JacobianSettings{
		Formula:     fd.Forward,
		Step:        step,
		OriginValue: r0,
	})
	return p.err
}

// projectedGradientNorm zeroes gradient components that point out of an active bound.
func (p *problem) projectedGradientNorm(g, x []float64) float64 {
	worst := 0.0
	for i, gi := range g {
		if x[i] <= p.lower[i] && gi > 0 {
			continue
		}
		if x[i] >= p.upper[i] && gi < 0 {
			continue
		}
		worst = math.Max(worst, math.Abs(gi))
	}
	return worst
}

func cost(r []float64) float64 {
	n := floats.Norm(r, 2)
	return 0.5 * n * n
}

// LeastSquares minimises 0.5*||fn(x)||^2 over the box [lower, upper] starting from x0.
// m is the number of residuals. A non-converged run returns a Result with Success false
// and a nil error; errors are reserved for invalid input and failures of fn.
func LeastSquares(fn ResidualFunc, m int, x0, lower, upper []float64, settings Settings) (*Result, error) {
	n := len(x0)
	if n == 0 || m <= 0 {
		return nil, fmt.Errorf("%w: %d unknowns, %d residuals", ErrInvalidInput, n, m)
	}
	if len(lower) != n || len(upper) != n {
		return nil, fmt.Errorf("%w: bounds have %d/%d entries for %d unknowns", ErrInvalidInput, len(lower), len(upper), n)
	}
	for i := range lower {
		if !(lower[i] <= upper[i]) {
			return nil, fmt.Errorf("%w: lower[%d]=%v above upper[%d]=%v", ErrInvalidInput, i, lower[i], i, upper[i])
		}
	}
	s := settings.withDefaults()
	p := &problem{fn: fn, m: m, n: n, lower: lower, upper: upper}

	x := append([]float64(nil), x0...)
	p.clip(x)
	r := make([]float64, m)
	if err := p.eval(r, x); err != nil {
		return nil, err
	}
	c := cost(r)

	res := &Result{}
	finish := func(status Status, iter int) *Result {
		res.X = x
		res.Residuals = r
		res.Cost = c
		res.Iterations = iter
		res.Evaluations = p.evals
		res.Status = status
		res.Success = status.Converged()
		res.Message = status.String()
		return res
	}

	jac := mat.NewDense(m, n, nil)
	var jtj mat.SymDense
	var chol mat.Cholesky
	g := mat.NewVecDense(n, nil)
	delta := mat.NewVecDense(n, nil)
	a := mat.NewSymDense(n, nil)
	xt := make([]float64, n)
	rt := make([]float64, m)
	step := make([]float64, n)
	lambda := s.InitialDamping

	for iter := 0; iter < s.MaxIterations; iter++ {
		if !math.IsNaN(c) && floats.Norm(r, math.Inf(1)) <= s.ResidualTolerance {
			return finish(StatusResidualTolerance, iter), nil
		}
		if s.MaxEvaluations > 0 && p.evals+n > s.MaxEvaluations {
			return finish(StatusMaxEvaluations, iter), nil
		}

		if err := p.jacobian(jac, x, r, s.JacobianStep); err != nil {
			return nil, err
		}
		g.MulVec(jac.T(), mat.NewVecDense(m, r))
		if p.projectedGradientNorm(g.RawVector().Data, x) <= s.GTol {
			return finish(StatusGradientTolerance, iter+1), nil
		}
		jtj.SymOuterK(1, jac.T())

		for {
			a.CopySym(&jtj)
			for i := 0; i < n; i++ {
				d := math.Max(jtj.At(i, i), minDiagonal)
				a.SetSym(i, i, jtj.At(i, i)+lambda*d)
			}
			if ok := chol.Factorize(a); !ok {
				lambda *= 10
				if lambda > maxDamping {
					return finish(StatusDampingOverflow, iter+1), nil
				}
				continue
			}
			if err := chol.SolveVecTo(delta, g); err != nil {
				lambda *= 10
				if lambda > maxDamping {
					return finish(StatusDampingOverflow, iter+1), nil
				}
				continue
			}

			for i := 0; i < n; i++ {
				xt[i] = x[i] - delta.AtVec(i)
			}
			p.clip(xt)
			floats.SubTo(step, xt, x)
			stepNorm := floats.Norm(step, 2)
			small := stepNorm <= s.XTol*(s.XTol+floats.Norm(x, 2))

			if s.MaxEvaluations > 0 && p.evals >= s.MaxEvaluations {
				return finish(StatusMaxEvaluations, iter+1), nil
			}
			if err := p.eval(rt, xt); err != nil {
				return nil, err
			}
			ct := cost(rt)

			if !math.IsNaN(ct) && !math.IsInf(ct, 0) && ct < c {
				reduction := c - ct
				copy(x, xt)
				copy(r, rt)
				c = ct
				lambda = math.Max(lambda/10, minDamping)
				switch {
				case floats.Norm(r, math.Inf(1)) <= s.ResidualTolerance:
					return finish(StatusResidualTolerance, iter+1), nil
				case small:
					return finish(StatusStepTolerance, iter+1), nil
				case reduction <= s.FTol*c:
					return finish(StatusCostTolerance, iter+1), nil
				}
				break
			}
			if small {
				return finish(StatusStepTolerance, iter+1), nil
			}
			lambda *= 10
			if lambda > maxDamping {
				return finish(StatusDampingOverflow, iter+1), nil
			}
		}
	}
	return finish(StatusMaxIterations, s.MaxIterations), nil
}

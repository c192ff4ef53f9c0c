// Package lsq is a box-constrained nonlinear least-squares solver. It uses
// Levenberg-Marquardt steps with Marquardt diagonal scaling, a forward
// difference Jacobian and projection onto the bounds.
package lsq

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrBadProblem = errors.New("lsq: malformed problem")

const (
	minLambda   = 1e-15
	maxLambda   = 1e16
	maxAttempts = 30
)

// Problem describes sum_i r_i(x)^2 to be minimised.
type Problem struct {
	// Residuals writes the M residuals at x into dst. It must not keep
	// either slice.
	Residuals func(dst, x []float64)
	M         int
	// Optional box constraints. A nil slice leaves that side unbounded.
	Lower []float64
	Upper []float64
}

// Settings tune the solver. Zero values are replaced by the defaults.
type Settings struct {
	MaxIterations int
	// Stop when the relative cost decrease of an accepted step is below FTol.
	FTol float64
	// Stop when an accepted step is shorter than XTol*(XTol+|x|).
	XTol float64
	// Stop when the gradient infinity norm is below GTol.
	GTol float64
	// Starting damping.
	InitialLambda float64
	// Forward difference step for the Jacobian.
	Step float64
}

func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 100,
		FTol:          1e-12,
		XTol:          1e-10,
		GTol:          1e-12,
		InitialLambda: 1e-3,
		Step:          1e-7,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.FTol <= 0 {
		s.FTol = d.FTol
	}
	if s.XTol <= 0 {
		s.XTol = d.XTol
	}
	if s.GTol <= 0 {
		s.GTol = d.GTol
	}
	if s.InitialLambda <= 0 {
		s.InitialLambda = d.InitialLambda
	}
	if s.Step <= 0 {
		s.Step = d.Step
	}
	return s
}

type Result struct {
	X         []float64
	Residuals []float64
	// Cost is half the residual sum of squares.
	Cost        float64
	Iterations  int
	Evaluations int
	Converged   bool
	Status      string
}

// RSS is the residual sum of squares.
func (r Result) RSS() float64 {
	return 2 * r.Cost
}

func (p Problem) check(n int) error {
	if p.Residuals == nil || p.M <= 0 || n == 0 {
		return fmt.Errorf("%w: need a residual function, M > 0 and a start point", ErrBadProblem)
	}
	if (p.Lower != nil && len(p.Lower) != n) || (p.Upper != nil && len(p.Upper) != n) {
		return fmt.Errorf("%w: bounds do not match %d parameters", ErrBadProblem, n)
	}
	for i := 0; i < n && p.Lower != nil && p.Upper != nil; i++ {
		if p.Lower[i] > p.Upper[i] {
			return fmt.Errorf("%w: lower bound %v above upper %v", ErrBadProblem, p.Lower[i], p.Upper[i])
		}
	}
	return nil
}

func (p Problem) project(x []float64) {
	for i := range x {
		if p.Lower != nil && x[i] < p.Lower[i] {
			x[i] = p.Lower[i]
		}
		if p.Upper != nil && x[i] > p.Upper[i] {
			x[i] = p.Upper[i]
		}
	}
}

func halfSquares(r []float64) float64 {
	c := 0.5 * floats.Dot(r, r)
	if math.IsNaN(c) {
		return math.Inf(1)
	}
	return c
}

// Minimize runs Levenberg-Marquardt from x0 (projected onto the bounds).
// An error is returned only for a malformed problem. A run that stops on
// the iteration cap, or where no damped step lowers the cost, returns its
// best point with Converged false.
func Minimize(p Problem, x0 []float64, settings Settings) (Result, error) {
	n := len(x0)
	if err := p.check(n); err != nil {
		return Result{}, err
	}
	s := settings.withDefaults()

	evals := 0
	residuals := func(dst, x []float64) {
		evals++
		p.Residuals(dst, x)
	}

	x := append([]float64(nil), x0...)
	p.project(x)
	r := make([]float64, p.M)
	residuals(r, x)
	cost := halfSquares(r)

	res := Result{Status: "iteration limit"}
	lambda := s.InitialLambda
	jac := mat.NewDense(p.M, n, nil)
	xNew := make([]float64, n)
	rNew := make([]float64, p.M)

	iter := 0
	for iter = 1; iter <= s.MaxIterations; iter++ {
		fd.Jacobian(jac, residuals, x, &fd.JacobianSettings{
			Formula:     fd.Forward,
			OriginValue: r,
			Step:        s.Step,
		})

		var jtj mat.SymDense
		jtj.SymOuterK(1, jac.T())
		var grad mat.VecDense
		grad.MulVec(jac.T(), mat.NewVecDense(p.M, r))
		if mat.Norm(&grad, math.Inf(1)) <= s.GTol {
			res.Converged, res.Status = true, "gradient below tolerance"
			break
		}

		accepted := false
		stop := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			a := mat.NewSymDense(n, nil)
			a.CopySym(&jtj)
			for i := 0; i < n; i++ {
				d := jtj.At(i, i)
				a.SetSym(i, i, d+lambda*math.Max(d, 1e-12))
			}
			var chol mat.Cholesky
			if !chol.Factorize(a) {
				lambda = math.Min(lambda*10, maxLambda)
				continue
			}
			var delta mat.VecDense
			if err := chol.SolveVecTo(&delta, &grad); err != nil {
				lambda = math.Min(lambda*10, maxLambda)
				continue
			}

			for i := range xNew {
				xNew[i] = x[i] - delta.AtVec(i)
			}
			p.project(xNew)
			residuals(rNew, xNew)
			costNew := halfSquares(rNew)

			if costNew < cost {
				step := floats.Distance(xNew, x, 2)
				decrease := cost - costNew
				copy(x, xNew)
				copy(r, rNew)
				cost = costNew
				lambda = math.Max(lambda/3, minLambda)
				accepted = true
				if decrease <= s.FTol*cost || step <= s.XTol*(s.XTol+floats.Norm(x, 2)) {
					res.Converged, res.Status = true, "step below tolerance"
					stop = true
				}
				break
			}
			if lambda >= maxLambda {
				break
			}
			lambda = math.Min(lambda*4, maxLambda)
		}
		glog.V(2).Infof("lsq: iteration %d cost %.6g lambda %.3g", iter, cost, lambda)
		if !accepted {
			res.Converged, res.Status = false, "no step decreases the cost"
			break
		}
		if stop {
			break
		}
	}
	if iter > s.MaxIterations {
		iter = s.MaxIterations
	}

	res.X = x
	res.Residuals = r
	res.Cost = cost
	res.Iterations = iter
	res.Evaluations = evals
	return res, nil
}

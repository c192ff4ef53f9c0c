// Package rootfind holds the scalar root finder used for implied
// volatilities.
package rootfind

import (
	"errors"
	"math"
)

var (
	ErrNoBracket     = errors.New("rootfind: interval does not bracket a root")
	ErrMaxIterations = errors.New("rootfind: maximum iterations reached")
)

const (
	DefaultXTol    = 2e-12
	DefaultMaxIter = 100
	relTol         = 4 * 2.220446049250313e-16
)

// Brent finds a root of f in [a, b] with Brent's method. f(a) and f(b) must
// have opposite signs (or one of them must be zero).
func Brent(f func(float64) float64, a, b, xtol float64, maxIter int) (float64, error) {
	if xtol <= 0 {
		xtol = DefaultXTol
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return math.NaN(), ErrNoBracket
	}
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return math.NaN(), ErrNoBracket
	}

	// b is the best estimate, c the previous one, a the contrapoint.
	c, fc := a, fa
	d := b - a
	e := d
	for i := 0; i < maxIter; i++ {
		if fb*fc > 0 {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol := 2*relTol*math.Abs(b) + 0.5*xtol
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s := fb / fa
			if a == c {
				// secant
				p = 2 * m * s
				q = 1 - s
			} else {
				// inverse quadratic
				q = fa / fc
				r := fb / fc
				p = s * (2*m*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = m
			}
		} else {
			d = m
			e = m
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else if m > 0 {
			b += tol
		} else {
			b -= tol
		}
		fb = f(b)
		if math.IsNaN(fb) {
			return math.NaN(), ErrNoBracket
		}
	}
	return b, ErrMaxIterations
}

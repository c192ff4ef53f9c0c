// Package svi implements the raw SVI parameterisation of total implied
// variance in log-moneyness.
package svi

import (
	"fmt"
	"math"

	"github.com/joshi-prasad/quant"
)

// Params of w(k) = a + b (rho (k - m) + sqrt((k - m)^2 + sigma^2)).
type Params struct {
	A     float64
	B     float64
	Rho   float64
	M     float64
	Sigma float64
}

// NewParams checks b > 0, |rho| < 1 and sigma > 0.
func NewParams(a, b, rho, m, sigma float64) (Params, error) {
	p := Params{A: a, B: b, Rho: rho, M: m, Sigma: sigma}
	return p, p.Validate()
}

func (p Params) Validate() error {
	if !quant.AllFinite([]float64{p.A, p.B, p.Rho, p.M, p.Sigma}) {
		return fmt.Errorf("%w: svi params not finite: %+v", quant.ErrDomain, p)
	}
	if p.B <= 0 || p.Sigma <= 0 {
		return fmt.Errorf("%w: svi b and sigma must be positive: %+v", quant.ErrDomain, p)
	}
	if math.Abs(p.Rho) >= 1 {
		return fmt.Errorf("%w: svi rho %v outside (-1, 1)", quant.ErrDomain, p.Rho)
	}
	return nil
}

// TotalVariance returns w(k) for log-moneyness k = ln(K/F).
func TotalVariance(k float64, p Params) float64 {
	d := k - p.M
	return p.A + p.B*(p.Rho*d+math.Sqrt(d*d+p.Sigma*p.Sigma))
}

// ImpliedVol is sqrt(max(w(k), 0) / T).
func ImpliedVol(k, maturity float64, p Params) float64 {
	if maturity <= 0 {
		return math.NaN()
	}
	return math.Sqrt(math.Max(TotalVariance(k, p), 0) / maturity)
}

// MinTotalVariance is the smallest w over all k,
// a + b sigma sqrt(1 - rho^2). A negative value means the slice has
// negative variance somewhere.
func (p Params) MinTotalVariance() float64 {
	return p.A + p.B*p.Sigma*math.Sqrt(1-p.Rho*p.Rho)
}

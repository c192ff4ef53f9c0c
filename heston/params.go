// Package heston implements the Heston stochastic volatility model: an
// Euler / full truncation CIR Monte Carlo simulator and a semi-analytic call
// pricer based on the characteristic function.
package heston

import (
	"fmt"
	"math"

	"github.com/joshi-prasad/quant"
)

// Params are the five Heston parameters.
type Params struct {
	// Mean reversion speed of the variance.
	Kappa float64
	// Long run variance.
	Theta float64
	// Volatility of variance.
	Sigma float64
	// Correlation between the price and variance shocks.
	Rho float64
	// Initial variance.
	V0 float64
}

// NewParams validates and returns a parameter set.
func NewParams(kappa, theta, sigma, rho, v0 float64) (Params, error) {
	p := Params{Kappa: kappa, Theta: theta, Sigma: sigma, Rho: rho, V0: v0}
	return p, p.Validate()
}

// Validate checks kappa, theta, sigma, v0 > 0 and |rho| < 1.
func (p Params) Validate() error {
	vals := []float64{p.Kappa, p.Theta, p.Sigma, p.Rho, p.V0}
	if !quant.AllFinite(vals) {
		return fmt.Errorf("%w: heston params not finite: %+v", quant.ErrDomain, p)
	}
	if p.Kappa <= 0 || p.Theta <= 0 || p.Sigma <= 0 || p.V0 <= 0 {
		return fmt.Errorf("%w: heston kappa, theta, sigma and v0 must be positive: %+v", quant.ErrDomain, p)
	}
	if math.Abs(p.Rho) >= 1 {
		return fmt.Errorf("%w: heston rho %v outside (-1, 1)", quant.ErrDomain, p.Rho)
	}
	return nil
}

// FellerSatisfied reports whether 2*kappa*theta > sigma^2, in which case
// the variance process stays strictly positive.
func (p Params) FellerSatisfied() bool {
	return 2*p.Kappa*p.Theta > p.Sigma*p.Sigma
}

func (p Params) String() string {
	return fmt.Sprintf("kappa=%.4f theta=%.4f sigma=%.4f rho=%.4f v0=%.4f",
		p.Kappa, p.Theta, p.Sigma, p.Rho, p.V0)
}

// Package sabr implements Hagan's lognormal implied volatility expansion for
// the SABR model.
package sabr

import (
	"fmt"
	"math"

	"github.com/joshi-prasad/quant"
)

// atmThreshold is the |F-K| below which the at-the-money limit is used.
const atmThreshold = 1e-7

type Params struct {
	Alpha float64
	Beta  float64
	Rho   float64
	Nu    float64
}

// NewParams checks alpha > 0, beta in [0, 1], |rho| < 1 and nu > 0.
func NewParams(alpha, beta, rho, nu float64) (Params, error) {
	p := Params{Alpha: alpha, Beta: beta, Rho: rho, Nu: nu}
	return p, p.Validate()
}

func (p Params) Validate() error {
	if !quant.AllFinite([]float64{p.Alpha, p.Beta, p.Rho, p.Nu}) {
		return fmt.Errorf("%w: sabr params not finite: %+v", quant.ErrDomain, p)
	}
	if p.Alpha <= 0 || p.Nu <= 0 {
		return fmt.Errorf("%w: sabr alpha and nu must be positive: %+v", quant.ErrDomain, p)
	}
	if p.Beta < 0 || p.Beta > 1 {
		return fmt.Errorf("%w: sabr beta %v outside [0, 1]", quant.ErrDomain, p.Beta)
	}
	if math.Abs(p.Rho) >= 1 {
		return fmt.Errorf("%w: sabr rho %v outside (-1, 1)", quant.ErrDomain, p.Rho)
	}
	return nil
}

// ImpliedVol returns the Black volatility of a strike under SABR, or NaN
// when forward, strike or maturity is not positive.
func ImpliedVol(forward, strike, maturity float64, p Params) float64 {
	if forward <= 0 || strike <= 0 || maturity <= 0 {
		return math.NaN()
	}
	a, b, r, n := p.Alpha, p.Beta, p.Rho, p.Nu
	omb := 1 - b

	if math.Abs(forward-strike) < atmThreshold {
		fb := math.Pow(forward, omb)
		term := omb*omb/24*a*a/(fb*fb) + r*b*n*a/(4*fb) + (2-3*r*r)/24*n*n
		return a / fb * (1 + term*maturity)
	}

	logFK := math.Log(forward / strike)
	fkb := math.Pow(forward*strike, omb/2)
	z := n / a * fkb * logFK
	x := math.Log((math.Sqrt(1-2*r*z+z*z) + z - r) / (1 - r))
	zOverX := 1.0
	if math.Abs(z) > 1e-12 {
		zOverX = z / x
	}

	denom := fkb * (1 + omb*omb/24*logFK*logFK + math.Pow(omb, 4)/1920*math.Pow(logFK, 4))
	term := omb*omb/24*a*a/(fkb*fkb) + r*b*n*a/(4*fkb) + (2-3*r*r)/24*n*n
	return a / denom * zOverX * (1 + term*maturity)
}

package heston

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"gonum.org/v1/gonum/integrate/quad"
)

const (
	DefaultUMax  = 100.0
	DefaultNodes = 256
)

// CFSettings control the Gauss-Legendre quadrature of the inversion
// integrals over [0, UMax].
type CFSettings struct {
	UMax  float64
	Nodes int
}

func DefaultCFSettings() CFSettings {
	return CFSettings{UMax: DefaultUMax, Nodes: DefaultNodes}
}

// CallPriceCF prices a European call semi-analytically:
//
//	C = S0 e^{-qT} P1 - K e^{-rT} P2
//
// where each Pj is a Gil-Pelaez inversion of the Heston characteristic
// function, integrated numerically over [0, uMax] with DefaultNodes nodes.
// A non-positive uMax selects DefaultUMax.
func CallPriceCF(s0, strike, maturity, rate, dividendYield float64, p Params, uMax float64) (float64, error) {
	return callPriceCF(s0, strike, maturity, rate, dividendYield, p, CFSettings{UMax: uMax, Nodes: DefaultNodes})
}

func (m *Model) CallPriceCF(strike, maturity float64) (float64, error) {
	return callPriceCF(m.Spot, strike, maturity, m.Rate, m.DividendYield, m.Params, m.CF)
}

// PutPriceCF is the call price adjusted by put-call parity.
func (m *Model) PutPriceCF(strike, maturity float64) (float64, error) {
	call, err := m.CallPriceCF(strike, maturity)
	if err != nil {
		return 0, err
	}
	return call - m.Spot*math.Exp(-m.DividendYield*maturity) + strike*math.Exp(-m.Rate*maturity), nil
}

func (m *Model) PriceCF(strike, maturity float64, typ quant.OptionType) (float64, error) {
	if typ == quant.Put {
		return m.PutPriceCF(strike, maturity)
	}
	return m.CallPriceCF(strike, maturity)
}

func callPriceCF(s0, strike, maturity, rate, dividendYield float64, p Params, cfg CFSettings) (float64, error) {
	if s0 <= 0 || strike <= 0 || maturity <= 0 {
		glog.Errorf("CallPriceCF: S0=%v K=%v T=%v", s0, strike, maturity)
		return 0, fmt.Errorf("%w: need positive spot, strike and maturity", quant.ErrDomain)
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if cfg.UMax <= 0 {
		cfg.UMax = DefaultUMax
	}
	if cfg.Nodes <= 0 {
		cfg.Nodes = DefaultNodes
	}

	cf := characteristic{
		x:        math.Log(s0),
		logK:     math.Log(strike),
		maturity: maturity,
		carry:    rate - dividendYield,
		p:        p,
	}
	p1 := cf.probability(1, cfg)
	p2 := cf.probability(2, cfg)
	price := s0*math.Exp(-dividendYield*maturity)*p1 - strike*math.Exp(-rate*maturity)*p2
	if !quant.IsFinite(price) {
		glog.V(1).Infof("CallPriceCF: non-finite price for %v K=%v T=%v", p, strike, maturity)
		return math.NaN(), nil
	}
	return price, nil
}

type characteristic struct {
	x, logK  float64
	maturity float64
	carry    float64
	p        Params
}

// probability returns Pj = 1/2 + 1/pi * int_0^uMax Re[e^{-iu lnK} f_j(u) / (iu)] du.
func (c characteristic) probability(j int, cfg CFSettings) float64 {
	integrand := func(u float64) float64 {
		iu := complex(0, u)
		v := cmplx.Exp(-iu*complex(c.logK, 0)) * c.f(j, u) / iu
		return real(v)
	}
	return 0.5 + quad.Fixed(integrand, 0, cfg.UMax, cfg.Nodes, quad.Legendre{}, 0)/math.Pi
}

// f is the characteristic function of ln S_T under the j-th measure in the
// form that keeps the complex logarithm on its principal branch:
//
//	d = sqrt((rho sigma iu - b)^2 - sigma^2 (2 uj iu - u^2))
//	g = (b - rho sigma iu - d) / (b - rho sigma iu + d)
//	C = (r-q) iu T + kappa theta / sigma^2 [(b - rho sigma iu - d) T - 2 ln((1 - g e^{-dT}) / (1 - g))]
//	D = (b - rho sigma iu - d) / sigma^2 (1 - e^{-dT}) / (1 - g e^{-dT})
func (c characteristic) f(j int, u float64) complex128 {
	p := c.p
	uj, b := 0.5, p.Kappa-p.Rho*p.Sigma
	if j == 2 {
		uj, b = -0.5, p.Kappa
	}

	iu := complex(0, u)
	sigma2 := complex(p.Sigma*p.Sigma, 0)
	bMinus := complex(b, 0) - complex(p.Rho*p.Sigma, 0)*iu
	d := cmplx.Sqrt(bMinus*bMinus - sigma2*(complex(2*uj, 0)*iu-complex(u*u, 0)))
	g := (bMinus - d) / (bMinus + d)
	edt := cmplx.Exp(-d * complex(c.maturity, 0))
	t := complex(c.maturity, 0)

	C := complex(c.carry, 0)*iu*t +
		complex(p.Kappa*p.Theta, 0)/sigma2*((bMinus-d)*t-2*cmplx.Log((1-g*edt)/(1-g)))
	D := (bMinus - d) / sigma2 * (1 - edt) / (1 - g*edt)
	return cmplx.Exp(C + D*complex(p.V0, 0) + iu*complex(c.x, 0))
}

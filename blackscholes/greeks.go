package blackscholes

import (
	"math"

	"github.com/joshi-prasad/quant"
	"gonum.org/v1/gonum/stat/distuv"
)

// Greeks are raw partial derivatives of the price: vega per unit of vol,
// theta per year and rho per unit of rate. Scale them for display.
type Greeks struct {
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
	Rho   float64
}

// Delta is e^{-qT} N(d1) for a call and e^{-qT} (N(d1) - 1) for a put.
func (m Model) Delta(strike, maturity float64, typ quant.OptionType) (float64, error) {
	d1, _, err := m.D1D2(strike, maturity)
	if err != nil {
		return 0, err
	}
	dq := math.Exp(-m.DividendYield * maturity)
	if typ == quant.Put {
		return dq * (distuv.UnitNormal.CDF(d1) - 1), nil
	}
	return dq * distuv.UnitNormal.CDF(d1), nil
}

// Gamma is the same for calls and puts.
func (m Model) Gamma(strike, maturity float64) (float64, error) {
	d1, _, err := m.D1D2(strike, maturity)
	if err != nil {
		return 0, err
	}
	return math.Exp(-m.DividendYield*maturity) * distuv.UnitNormal.Prob(d1) /
		(m.Spot * m.Vol * math.Sqrt(maturity)), nil
}

// Vega is the same for calls and puts.
func (m Model) Vega(strike, maturity float64) (float64, error) {
	d1, _, err := m.D1D2(strike, maturity)
	if err != nil {
		return 0, err
	}
	return m.Spot * math.Exp(-m.DividendYield*maturity) * distuv.UnitNormal.Prob(d1) * math.Sqrt(maturity), nil
}

// Theta is dV/dt in calendar time (the negative of dV/dT).
func (m Model) Theta(strike, maturity float64, typ quant.OptionType) (float64, error) {
	d1, d2, err := m.D1D2(strike, maturity)
	if err != nil {
		return 0, err
	}
	dq := math.Exp(-m.DividendYield * maturity)
	dr := math.Exp(-m.Rate * maturity)
	decay := -m.Spot * dq * distuv.UnitNormal.Prob(d1) * m.Vol / (2 * math.Sqrt(maturity))
	if typ == quant.Put {
		return decay + m.Rate*strike*dr*distuv.UnitNormal.CDF(-d2) -
			m.DividendYield*m.Spot*dq*distuv.UnitNormal.CDF(-d1), nil
	}
	return decay - m.Rate*strike*dr*distuv.UnitNormal.CDF(d2) +
		m.DividendYield*m.Spot*dq*distuv.UnitNormal.CDF(d1), nil
}

func (m Model) Rho(strike, maturity float64, typ quant.OptionType) (float64, error) {
	_, d2, err := m.D1D2(strike, maturity)
	if err != nil {
		return 0, err
	}
	kdr := strike * maturity * math.Exp(-m.Rate*maturity)
	if typ == quant.Put {
		return -kdr * distuv.UnitNormal.CDF(-d2), nil
	}
	return kdr * distuv.UnitNormal.CDF(d2), nil
}

// Greeks computes all five sensitivities in one call.
func (m Model) Greeks(strike, maturity float64, typ quant.OptionType) (Greeks, error) {
	var g Greeks
	var err error
	if g.Delta, err = m.Delta(strike, maturity, typ); err != nil {
		return Greeks{}, err
	}
	if g.Gamma, err = m.Gamma(strike, maturity); err != nil {
		return Greeks{}, err
	}
	if g.Vega, err = m.Vega(strike, maturity); err != nil {
		return Greeks{}, err
	}
	if g.Theta, err = m.Theta(strike, maturity, typ); err != nil {
		return Greeks{}, err
	}
	if g.Rho, err = m.Rho(strike, maturity, typ); err != nil {
		return Greeks{}, err
	}
	return g, nil
}

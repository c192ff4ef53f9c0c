// Package blackscholes prices European options under Black-Scholes with a
// continuous dividend yield. It also provides the closed-form Greeks, the
// implied volatility solver and a GBM path simulator.
package blackscholes

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model holds the market inputs shared by every strike and maturity.
type Model struct {
	Spot          float64
	Rate          float64
	Vol           float64
	DividendYield float64
}

func New(spot, rate, vol, dividendYield float64) Model {
	return Model{Spot: spot, Rate: rate, Vol: vol, DividendYield: dividendYield}
}

// WithVol returns a copy of the model with a different volatility.
func (m Model) WithVol(vol float64) Model {
	m.Vol = vol
	return m
}

func (m Model) check(strike, maturity float64) error {
	if m.Vol <= 0 || maturity <= 0 || m.Spot <= 0 || strike <= 0 ||
		!quant.IsFinite(m.Vol) || !quant.IsFinite(maturity) {
		glog.V(2).Infof("blackscholes: out of domain spot=%v strike=%v vol=%v T=%v",
			m.Spot, strike, m.Vol, maturity)
		return fmt.Errorf("%w: black-scholes needs positive spot, strike, vol and maturity "+
			"(S=%v K=%v vol=%v T=%v)", quant.ErrDomain, m.Spot, strike, m.Vol, maturity)
	}
	return nil
}

// D1 and D2 are the two standardised moneyness terms of the formula:
//
//	d1 = (ln(S/K) + (r - q + vol^2/2) T) / (vol sqrt(T))
//	d2 = d1 - vol sqrt(T)
func (m Model) D1D2(strike, maturity float64) (d1, d2 float64, err error) {
	if err := m.check(strike, maturity); err != nil {
		return 0, 0, err
	}
	volSqrtT := m.Vol * math.Sqrt(maturity)
	d1 = (math.Log(m.Spot/strike) + (m.Rate-m.DividendYield+0.5*m.Vol*m.Vol)*maturity) / volSqrtT
	return d1, d1 - volSqrtT, nil
}

// CallPrice is S e^{-qT} N(d1) - K e^{-rT} N(d2).
func (m Model) CallPrice(strike, maturity float64) (float64, error) {
	d1, d2, err := m.D1D2(strike, maturity)
	if err != nil {
		return 0, err
	}
	return m.Spot*math.Exp(-m.DividendYield*maturity)*distuv.UnitNormal.CDF(d1) -
		strike*math.Exp(-m.Rate*maturity)*distuv.UnitNormal.CDF(d2), nil
}

// PutPrice is K e^{-rT} N(-d2) - S e^{-qT} N(-d1).
func (m Model) PutPrice(strike, maturity float64) (float64, error) {
	d1, d2, err := m.D1D2(strike, maturity)
	if err != nil {
		return 0, err
	}
	return strike*math.Exp(-m.Rate*maturity)*distuv.UnitNormal.CDF(-d2) -
		m.Spot*math.Exp(-m.DividendYield*maturity)*distuv.UnitNormal.CDF(-d1), nil
}

func (m Model) Price(strike, maturity float64, typ quant.OptionType) (float64, error) {
	if typ == quant.Put {
		return m.PutPrice(strike, maturity)
	}
	return m.CallPrice(strike, maturity)
}

// ForwardPrice is the dividend adjusted forward S e^{(r-q)T}.
func (m Model) ForwardPrice(maturity float64) float64 {
	return m.Spot * math.Exp((m.Rate-m.DividendYield)*maturity)
}

package blackscholes

import (
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/internal/rootfind"
)

// Volatility brackets for the implied vol search. The narrow one is used
// when inverting model prices during calibration, the wide one when
// inverting quoted market prices.
const (
	VolLow      = 1e-6
	VolHigh     = 3.0
	WideVolLow  = 1e-6
	WideVolHigh = 5.0
)

// ImpliedVol returns the volatility that reproduces a call price, searched
// in [VolLow, VolHigh]. It returns NaN when no volatility in the bracket
// matches, e.g. for a price outside the no-arbitrage bounds.
func (m Model) ImpliedVol(price, strike, maturity float64) float64 {
	return m.ImpliedVolWithin(price, strike, maturity, quant.Call, VolLow, VolHigh)
}

// ImpliedVolWithin is ImpliedVol for either option type and an explicit
// bracket. NaN signals that the search failed.
func (m Model) ImpliedVolWithin(price, strike, maturity float64, typ quant.OptionType, lo, hi float64) float64 {
	if !quant.IsFinite(price) || maturity <= 0 || strike <= 0 || m.Spot <= 0 {
		return math.NaN()
	}
	objective := func(vol float64) float64 {
		p, err := m.WithVol(vol).Price(strike, maturity, typ)
		if err != nil {
			return math.NaN()
		}
		return p - price
	}
	vol, err := rootfind.Brent(objective, lo, hi, 0, 0)
	if err != nil && err != rootfind.ErrMaxIterations {
		glog.V(2).Infof("ImpliedVol: no root for price=%v K=%v T=%v: %v", price, strike, maturity, err)
		return math.NaN()
	}
	return vol
}

// Package curve builds discount curves from zero-rate tables and reads
// discount factors, zero rates and forward rates off them.
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
)

// DiscountCurve is an immutable set of (maturity, discount factor) pillars
// with log-linear interpolation between them and flat extrapolation outside.
type DiscountCurve struct {
	maturities []float64
	dfs        []float64
	logDFs     []float64
}

// New builds a curve directly from discount factors. Maturities must be
// positive and strictly increasing and every factor must lie in (0, 1].
func New(maturities, dfs []float64) (*DiscountCurve, error) {
	if len(maturities) == 0 || len(maturities) != len(dfs) {
		glog.Errorf("curve.New: %d maturities, %d discount factors", len(maturities), len(dfs))
		return nil, fmt.Errorf("%w: need matching non-empty maturities and discount factors (got %d and %d)",
			quant.ErrInvalidCurveInput, len(maturities), len(dfs))
	}
	for i, t := range maturities {
		if !quant.IsFinite(t) || t <= 0 {
			glog.Errorf("curve.New: maturity %v at %d is not positive", t, i)
			return nil, fmt.Errorf("%w: maturity %v is not positive", quant.ErrInvalidCurveInput, t)
		}
		if i > 0 && t <= maturities[i-1] {
			glog.Errorf("curve.New: maturity %v follows %v", t, maturities[i-1])
			return nil, fmt.Errorf("%w: maturities not strictly increasing at %v", quant.ErrInvalidCurveInput, t)
		}
		if df := dfs[i]; !quant.IsFinite(df) || df <= 0 || df > 1 {
			glog.Errorf("curve.New: discount factor %v at maturity %v", df, t)
			return nil, fmt.Errorf("%w: discount factor %v at %v outside (0, 1]", quant.ErrInvalidCurveInput, df, t)
		}
	}

	c := &DiscountCurve{
		maturities: append([]float64(nil), maturities...),
		dfs:        append([]float64(nil), dfs...),
		logDFs:     make([]float64, len(dfs)),
	}
	for i, df := range c.dfs {
		c.logDFs[i] = math.Log(df)
	}
	return c, nil
}

func (c *DiscountCurve) Len() int {
	return len(c.maturities)
}

// Maturities returns a copy of the pillar maturities.
func (c *DiscountCurve) Maturities() []float64 {
	return append([]float64(nil), c.maturities...)
}

// DiscountFactors returns a copy of the pillar discount factors.
func (c *DiscountCurve) DiscountFactors() []float64 {
	return append([]float64(nil), c.dfs...)
}

// DiscountFactor returns DF(t). Pillars are returned exactly, anything
// before the first or after the last pillar gets the boundary factor, and
// ln(DF) is linear in t in between.
func (c *DiscountCurve) DiscountFactor(t float64) float64 {
	if math.IsNaN(t) {
		return math.NaN()
	}
	n := len(c.maturities)
	if t <= c.maturities[0] {
		return c.dfs[0]
	}
	if t >= c.maturities[n-1] {
		return c.dfs[n-1]
	}

	// first pillar >= t
	idx := sort.SearchFloat64s(c.maturities, t)
	if c.maturities[idx] == t {
		return c.dfs[idx]
	}
	t1, t2 := c.maturities[idx-1], c.maturities[idx]
	w := (t - t1) / (t2 - t1)
	return math.Exp(c.logDFs[idx-1] + w*(c.logDFs[idx]-c.logDFs[idx-1]))
}

// ZeroRate returns the continuously compounded zero rate -ln(DF(t))/t.
func (c *DiscountCurve) ZeroRate(t float64) (float64, error) {
	if t <= 0 || math.IsNaN(t) {
		return 0, fmt.Errorf("%w: zero rate undefined for t=%v", quant.ErrDomain, t)
	}
	return -math.Log(c.DiscountFactor(t)) / t, nil
}

// ForwardRate returns the continuously compounded forward rate between t1
// and t2.
func (c *DiscountCurve) ForwardRate(t1, t2 float64) (float64, error) {
	if !(t2 > t1) {
		return 0, fmt.Errorf("%w: forward rate needs t2 > t1 (got %v, %v)", quant.ErrDomain, t1, t2)
	}
	return (math.Log(c.DiscountFactor(t1)) - math.Log(c.DiscountFactor(t2))) / (t2 - t1), nil
}

// SimpleForwardRate converts the continuous forward between t1 and t2 into
// the simple (money-market) rate over the same period.
func (c *DiscountCurve) SimpleForwardRate(t1, t2 float64) (float64, error) {
	f, err := c.ForwardRate(t1, t2)
	if err != nil {
		return 0, err
	}
	tau := t2 - t1
	return (math.Exp(f*tau) - 1) / tau, nil
}

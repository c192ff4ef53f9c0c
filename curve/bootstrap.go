package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
)

// Point is one row of a zero-rate table. Maturity is in years, Rate is a
// decimal (0.03 for 3%).
type Point struct {
	Maturity float64
	Rate     float64
}

// Bootstrap converts a zero-rate table into a DiscountCurve. Points are
// sorted by maturity first. When rateIsContinuous is false the rates are
// treated as simple annual rates and converted with ln(1+rT)/T.
func Bootstrap(points []Point, rateIsContinuous bool) (*DiscountCurve, error) {
	if len(points) == 0 {
		glog.Error("curve.Bootstrap: empty rate table")
		return nil, fmt.Errorf("%w: empty rate table", quant.ErrInvalidCurveInput)
	}

	sorted := append([]Point(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Maturity < sorted[j].Maturity
	})

	maturities := make([]float64, len(sorted))
	dfs := make([]float64, len(sorted))
	for i, p := range sorted {
		if !quant.IsFinite(p.Maturity) || p.Maturity <= 0 {
			glog.Errorf("curve.Bootstrap: maturity %v is not positive", p.Maturity)
			return nil, fmt.Errorf("%w: maturity %v is not positive", quant.ErrInvalidCurveInput, p.Maturity)
		}
		if i > 0 && p.Maturity == sorted[i-1].Maturity {
			glog.Errorf("curve.Bootstrap: duplicate maturity %v", p.Maturity)
			return nil, fmt.Errorf("%w: duplicate maturity %v", quant.ErrInvalidCurveInput, p.Maturity)
		}
		if !quant.IsFinite(p.Rate) {
			glog.Errorf("curve.Bootstrap: rate %v at maturity %v", p.Rate, p.Maturity)
			return nil, fmt.Errorf("%w: rate %v at maturity %v", quant.ErrInvalidCurveInput, p.Rate, p.Maturity)
		}

		r := p.Rate
		if !rateIsContinuous {
			if 1+r*p.Maturity <= 0 {
				glog.Errorf("curve.Bootstrap: simple rate %v at maturity %v has no continuous equivalent", r, p.Maturity)
				return nil, fmt.Errorf("%w: simple rate %v at %v has no continuous equivalent",
					quant.ErrInvalidCurveInput, r, p.Maturity)
			}
			r = math.Log(1+r*p.Maturity) / p.Maturity
		}
		maturities[i] = p.Maturity
		dfs[i] = math.Exp(-r * p.Maturity)
	}

	c, err := New(maturities, dfs)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("curve.Bootstrap: %d pillars from %v to %v", c.Len(), maturities[0], maturities[len(maturities)-1])
	return c, nil
}

package volsurface

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/blackscholes"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultLocalVolMaturities = 20
	DefaultLocalVolStrikes    = 40

	localVolEpsT    = 1e-3
	localVolEpsKRel = 0.01
)

// LocalVolGrid holds Dupire local volatilities on an evenly spaced (T, K)
// grid. Sigmas[i][j] belongs to Ts[i] and Ks[j] and is NaN where the
// strike convexity of the call price is not positive.
type LocalVolGrid struct {
	Ts     []float64
	Ks     []float64
	Sigmas [][]float64
}

// Valid counts the finite cells of the grid.
func (g *LocalVolGrid) Valid() int {
	n := 0
	for _, row := range g.Sigmas {
		for _, v := range row {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// LocalVol approximates Dupire local volatility
//
//	sigma_loc^2 = dC/dT / (0.5 K^2 d2C/dK2)
//
// from call prices obtained by pricing the interpolated implied vol with
// Black-Scholes. Derivatives are central differences with a maturity step of
// 1e-3 and a strike step of 1% of the strike. nT or nK below 2 select the
// defaults.
func LocalVol(s *Surface, spot, rate, dividendYield float64, nT, nK int) (*LocalVolGrid, error) {
	if spot <= 0 {
		return nil, fmt.Errorf("%w: spot %v is not positive", quant.ErrDomain, spot)
	}
	if nT < 2 {
		nT = DefaultLocalVolMaturities
	}
	if nK < 2 {
		nK = DefaultLocalVolStrikes
	}

	kMin, kMax := math.Inf(1), math.Inf(-1)
	for _, p := range s.points {
		kMin = math.Min(kMin, p.K)
		kMax = math.Max(kMax, p.K)
	}
	g := &LocalVolGrid{
		Ts:     floats.Span(make([]float64, nT), s.maturities[0], s.maturities[len(s.maturities)-1]),
		Ks:     floats.Span(make([]float64, nK), kMin, kMax),
		Sigmas: make([][]float64, nT),
	}

	call := func(k, t, vol float64) float64 {
		c, err := blackscholes.New(spot, rate, vol, dividendYield).CallPrice(k, t)
		if err != nil {
			return math.NaN()
		}
		return c
	}

	for i, t := range g.Ts {
		g.Sigmas[i] = make([]float64, nK)
		for j, k := range g.Ks {
			iv := s.IVAt(k, t)
			c := call(k, t, iv)

			cUp := call(k, t+localVolEpsT, s.IVAt(k, t+localVolEpsT))
			cDown := call(k, t-localVolEpsT, s.IVAt(k, t-localVolEpsT))
			dCdT := (cUp - cDown) / (2 * localVolEpsT)

			epsK := localVolEpsKRel * k
			d2CdK2 := (call(k+epsK, t, iv) - 2*c + call(k-epsK, t, iv)) / (epsK * epsK)

			denom := 0.5 * k * k * d2CdK2
			if math.IsNaN(denom) || math.IsNaN(dCdT) || denom <= 0 {
				g.Sigmas[i][j] = math.NaN()
				continue
			}
			g.Sigmas[i][j] = math.Sqrt(math.Max(dCdT/denom, 0))
		}
	}
	glog.V(1).Infof("volsurface: local vol grid %dx%d, %d valid cells", nT, nK, g.Valid())
	return g, nil
}

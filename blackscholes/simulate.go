package blackscholes

import (
	"fmt"
	"math"

	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/montecarlo"
)

// SimulatePaths draws GBM paths with the exact log-normal step. The result
// has one row per path and steps+1 columns starting at Spot. The output is
// a pure function of the arguments and the seed.
func (m Model) SimulatePaths(maturity float64, steps, paths int, seed uint64) (montecarlo.Paths, error) {
	if steps <= 0 || paths <= 0 || maturity <= 0 || m.Vol <= 0 {
		return nil, fmt.Errorf("%w: need positive steps, paths, maturity and vol", quant.ErrDomain)
	}
	dt := maturity / float64(steps)
	drift := (m.Rate - m.DividendYield - 0.5*m.Vol*m.Vol) * dt
	diffusion := m.Vol * math.Sqrt(dt)

	out := make(montecarlo.Paths, paths)
	for i := range out {
		out[i] = make([]float64, steps+1)
		out[i][0] = m.Spot
	}
	normals := montecarlo.NewNormals(seed)
	z := make([]float64, paths)
	for step := 1; step <= steps; step++ {
		normals.Fill(z)
		montecarlo.ParallelFor(paths, 0, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				out[i][step] = out[i][step-1] * math.Exp(drift+diffusion*z[i])
			}
		})
	}
	return out, nil
}

// PriceMC prices a vanilla option on simulated paths.
func (m Model) PriceMC(strike, maturity float64, typ quant.OptionType, steps, paths int, seed uint64) (montecarlo.Result, error) {
	sim, err := m.SimulatePaths(maturity, steps, paths, seed)
	if err != nil {
		return montecarlo.Result{}, err
	}
	return montecarlo.Price(sim.Terminal(), montecarlo.European(typ, strike), m.Rate, maturity)
}

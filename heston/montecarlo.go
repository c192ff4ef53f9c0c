package heston

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/montecarlo"
)

// VarianceFloor keeps the simulated variance strictly positive.
const VarianceFloor = 1e-8

// Model is a Heston market: spot, flat rate and dividend yield plus the
// variance dynamics.
type Model struct {
	Spot          float64
	Rate          float64
	DividendYield float64
	Params        Params

	// Workers stepping paths in parallel. Zero means GOMAXPROCS. The worker
	// count never changes simulated values.
	Workers int
	// Quadrature settings for the characteristic function pricer.
	CF CFSettings
}

func New(spot, rate, dividendYield float64, p Params) *Model {
	return &Model{
		Spot:          spot,
		Rate:          rate,
		DividendYield: dividendYield,
		Params:        p,
		CF:            DefaultCFSettings(),
	}
}

func (m *Model) checkSimulation(maturity float64, steps, paths int) error {
	if steps <= 0 || paths <= 0 || maturity <= 0 || m.Spot <= 0 {
		glog.Errorf("heston: steps=%d paths=%d T=%v spot=%v", steps, paths, maturity, m.Spot)
		return fmt.Errorf("%w: need positive steps, paths, maturity and spot", quant.ErrDomain)
	}
	return m.Params.Validate()
}

// simulate runs the scheme and calls record after every step with the
// current price and variance vectors.
//
//	v_t = max(v + kappa(theta - v)dt + sigma sqrt(max(v,0) dt) Z2, eps)
//	S_t = S exp((r - q - v/2)dt + sqrt(v dt) Z1)
//	Z2  = rho Z1 + sqrt(1 - rho^2) Z1'
//
// Both draw vectors of a step are filled from one seeded stream before any
// path moves.
func (m *Model) simulate(maturity float64, steps, paths int, seed uint64, record func(step int, s, v []float64)) []float64 {
	p := m.Params
	dt := maturity / float64(steps)
	rhoBar := math.Sqrt(1 - p.Rho*p.Rho)
	carry := m.Rate - m.DividendYield

	s := make([]float64, paths)
	v := make([]float64, paths)
	for i := range s {
		s[i] = m.Spot
		v[i] = p.V0
	}
	if record != nil {
		record(0, s, v)
	}

	normals := montecarlo.NewNormals(seed)
	z1 := make([]float64, paths)
	z2 := make([]float64, paths)
	for step := 1; step <= steps; step++ {
		normals.Fill(z1)
		normals.Fill(z2)
		montecarlo.ParallelFor(paths, m.Workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				prev := math.Max(v[i], 0)
				w := p.Rho*z1[i] + rhoBar*z2[i]
				next := v[i] + p.Kappa*(p.Theta-v[i])*dt + p.Sigma*math.Sqrt(prev*dt)*w
				s[i] *= math.Exp((carry-0.5*prev)*dt + math.Sqrt(prev*dt)*z1[i])
				v[i] = math.Max(next, VarianceFloor)
			}
		})
		if record != nil {
			record(step, s, v)
		}
	}
	return s
}

// SimulatePaths returns price and variance paths, one row per path with
// steps+1 columns. Identical arguments and seed give identical paths.
func (m *Model) SimulatePaths(maturity float64, steps, paths int, seed uint64) (prices, variances montecarlo.Paths, err error) {
	if err := m.checkSimulation(maturity, steps, paths); err != nil {
		return nil, nil, err
	}
	prices = make(montecarlo.Paths, paths)
	variances = make(montecarlo.Paths, paths)
	for i := 0; i < paths; i++ {
		prices[i] = make([]float64, steps+1)
		variances[i] = make([]float64, steps+1)
	}
	m.simulate(maturity, steps, paths, seed, func(step int, s, v []float64) {
		for i := range s {
			prices[i][step] = s[i]
			variances[i][step] = v[i]
		}
	})
	return prices, variances, nil
}

// SimulateTerminal returns only the terminal prices, which is all a
// European payoff needs.
func (m *Model) SimulateTerminal(maturity float64, steps, paths int, seed uint64) ([]float64, error) {
	if err := m.checkSimulation(maturity, steps, paths); err != nil {
		return nil, err
	}
	return m.simulate(maturity, steps, paths, seed, nil), nil
}

// PriceMC prices a European option as the discounted mean terminal payoff.
func (m *Model) PriceMC(strike, maturity float64, typ quant.OptionType, steps, paths int, seed uint64) (montecarlo.Result, error) {
	terminal, err := m.SimulateTerminal(maturity, steps, paths, seed)
	if err != nil {
		return montecarlo.Result{}, err
	}
	return montecarlo.Price(terminal, montecarlo.European(typ, strike), m.Rate, maturity)
}

func (m *Model) PriceCallMC(strike, maturity float64, steps, paths int, seed uint64) (montecarlo.Result, error) {
	return m.PriceMC(strike, maturity, quant.Call, steps, paths, seed)
}

func (m *Model) PricePutMC(strike, maturity float64, steps, paths int, seed uint64) (montecarlo.Result, error) {
	return m.PriceMC(strike, maturity, quant.Put, steps, paths, seed)
}

package calibrate

import (
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/blackscholes"
	"github.com/joshi-prasad/quant/heston"
	"github.com/joshi-prasad/quant/internal/lsq"
	"github.com/joshi-prasad/quant/montecarlo"
	"github.com/joshi-prasad/quant/volsurface"
)

// HestonPricer selects how model prices are produced during a Heston fit.
type HestonPricer int

const (
	// PricerMC simulates a Monte Carlo batch with a fixed seed, so every
	// iterate sees the same random numbers.
	PricerMC HestonPricer = iota
	// PricerCF uses the characteristic function pricer.
	PricerCF
)

func (p HestonPricer) String() string {
	if p == PricerCF {
		return "cf"
	}
	return "mc"
}

type HestonOptions struct {
	Initial heston.Params
	Pricer  HestonPricer
	Steps   int
	Paths   int
	Seed    uint64
	Workers int
	CF      heston.CFSettings
	Solver  lsq.Settings
}

func DefaultHestonOptions() HestonOptions {
	s := lsq.DefaultSettings()
	s.MaxIterations = 50
	return HestonOptions{
		Initial: heston.Params{Kappa: 1, Theta: 0.04, Sigma: 0.5, Rho: -0.5, V0: 0.04},
		Pricer:  PricerMC,
		Steps:   100,
		Paths:   5000,
		CF:      heston.DefaultCFSettings(),
		Solver:  s,
	}
}

// Solver space is (kappa, theta, sigma, atanh(rho), v0).
var (
	hestonLower = []float64{1e-4, 1e-6, 1e-4, -5, 1e-6}
	hestonUpper = []float64{10, 2, 5, 5, 2}
)

type HestonFit struct {
	Params heston.Params
	Report Report
}

func hestonFromX(x []float64) heston.Params {
	return heston.Params{Kappa: x[0], Theta: x[1], Sigma: x[2], Rho: math.Tanh(x[3]), V0: x[4]}
}

// Heston fits the model to one smile at maturity T. Needs at least three
// usable quotes.
func Heston(strikes []float64, maturity float64, marketIV []float64, spot, rate, dividendYield float64, opts *HestonOptions) (HestonFit, error) {
	ks, ivs, err := cleanQuotes(strikes, marketIV)
	if err != nil {
		return HestonFit{}, err
	}
	return HestonSmiles([]volsurface.Smile{{T: maturity, Strikes: ks, IVs: ivs}}, spot, rate, dividendYield, opts)
}

// HestonSmiles fits one parameter set to several smiles at once by stacking
// their residuals. Each residual is the Black-Scholes implied vol of the
// model price minus the quoted vol. If any model vol of an iterate is not
// finite, or the iterate's parameters are invalid, all its residuals are
// set to PenaltyResidual.
func HestonSmiles(smiles []volsurface.Smile, spot, rate, dividendYield float64, opts *HestonOptions) (HestonFit, error) {
	o := DefaultHestonOptions()
	if opts != nil {
		o = *opts
	}

	var clean []volsurface.Smile
	total := 0
	for _, sm := range smiles {
		ks, ivs, err := cleanQuotes(sm.Strikes, sm.IVs)
		if err != nil {
			return HestonFit{}, err
		}
		if len(ks) == 0 || sm.T <= 0 {
			continue
		}
		clean = append(clean, volsurface.Smile{T: sm.T, Strikes: ks, IVs: ivs})
		total += len(ks)
	}
	if err := needPoints("heston", total, 3); err != nil {
		return HestonFit{}, err
	}

	problem := lsq.Problem{
		M: total,
		Residuals: func(dst, x []float64) {
			p := hestonFromX(x)
			if err := p.Validate(); err != nil {
				for i := range dst {
					dst[i] = PenaltyResidual
				}
				return
			}
			model := heston.New(spot, rate, dividendYield, p)
			model.Workers = o.Workers
			model.CF = o.CF
			i := 0
			for _, sm := range clean {
				for j, iv := range hestonSmileVols(model, sm, o) {
					dst[i] = iv - sm.IVs[j]
					i++
				}
			}
			if penalise(dst) {
				glog.V(2).Infof("calibrate heston: penalty at %v", p)
			}
		},
		Lower: hestonLower,
		Upper: hestonUpper,
	}

	in := o.Initial
	x0 := []float64{in.Kappa, in.Theta, in.Sigma, atanhRho(in.Rho), in.V0}
	res, err := lsq.Minimize(problem, x0, o.Solver)
	if err != nil {
		return HestonFit{}, err
	}

	fit := HestonFit{Params: hestonFromX(res.X), Report: newReport(total, res)}
	if fit.Report.Diverged {
		glog.Warningf("calibrate heston: all residuals at penalty, returning best effort %v", fit.Params)
	}
	glog.Infof("calibrate heston (%v): %v %v", o.Pricer, fit.Params, fit.Report)
	return fit, nil
}

// hestonSmileVols returns the model implied vols of one smile, NaN where a
// price cannot be produced or inverted. The Monte Carlo pricer simulates
// the maturity once and prices every strike off the same terminal states.
func hestonSmileVols(model *heston.Model, sm volsurface.Smile, o HestonOptions) []float64 {
	bs := blackscholes.New(model.Spot, model.Rate, 0.2, model.DividendYield)
	out := make([]float64, len(sm.Strikes))

	var terminal []float64
	if o.Pricer == PricerMC {
		var err error
		terminal, err = model.SimulateTerminal(sm.T, o.Steps, o.Paths, o.Seed)
		if err != nil {
			for i := range out {
				out[i] = math.NaN()
			}
			return out
		}
	}

	for i, k := range sm.Strikes {
		var price float64
		if o.Pricer == PricerCF {
			p, err := model.CallPriceCF(k, sm.T)
			if err != nil {
				out[i] = math.NaN()
				continue
			}
			price = p
		} else {
			res, err := montecarlo.Price(terminal, montecarlo.Call(k), model.Rate, sm.T)
			if err != nil {
				out[i] = math.NaN()
				continue
			}
			price = res.Price
		}
		// Non-positive prices have no implied vol.
		if price <= 0 || !quant.IsFinite(price) {
			out[i] = math.NaN()
			continue
		}
		iv := bs.ImpliedVol(price, k, sm.T)
		if !(iv > 0) {
			iv = math.NaN()
		}
		out[i] = iv
	}
	return out
}

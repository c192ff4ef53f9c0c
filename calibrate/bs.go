package calibrate

import (
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/blackscholes"
	"gonum.org/v1/gonum/optimize"
)

// BSOptions configure the flat volatility fit.
type BSOptions struct {
	Initial float64
	Lower   float64
	Upper   float64
	// Passed to gonum/optimize. Nil uses a function convergence test.
	Settings *optimize.Settings
}

func DefaultBSOptions() BSOptions {
	return BSOptions{Initial: 0.2, Lower: 1e-4, Upper: 5}
}

type BSFit struct {
	Vol    float64
	Report Report
}

// BSImpliedVol fits the single Black-Scholes volatility that best matches a
// smile. Each model vol is the implied vol of the Black-Scholes call priced
// at the candidate volatility, falling back to the candidate when the
// inversion fails. Needs at least two usable quotes.
func BSImpliedVol(strikes []float64, maturity float64, marketIV []float64, spot, rate float64, opts *BSOptions) (BSFit, error) {
	o := DefaultBSOptions()
	if opts != nil {
		o = *opts
	}
	ks, ivs, err := cleanQuotes(strikes, marketIV)
	if err != nil {
		return BSFit{}, err
	}
	if err := needPoints("black-scholes", len(ks), 2); err != nil {
		return BSFit{}, err
	}

	residuals := func(vol float64) []float64 {
		model := blackscholes.New(spot, rate, vol, 0)
		out := make([]float64, len(ks))
		for i, k := range ks {
			modelIV := vol
			if price, err := model.CallPrice(k, maturity); err == nil {
				if iv := model.ImpliedVol(price, k, maturity); quant.IsFinite(iv) {
					modelIV = iv
				}
			}
			out[i] = modelIV - ivs[i]
		}
		return out
	}
	sumSquares := func(x []float64) float64 {
		total := 0.0
		for _, r := range residuals(quant.Clamp(x[0], o.Lower, o.Upper)) {
			total += r * r
		}
		return total
	}

	settings := o.Settings
	if settings == nil {
		settings = &optimize.Settings{
			MajorIterations: 500,
			Converger:       &optimize.FunctionConverge{Absolute: 1e-14, Iterations: 50},
		}
	}
	res, err := optimize.Minimize(optimize.Problem{Func: sumSquares}, []float64{o.Initial}, settings, &optimize.NelderMead{})
	if res == nil {
		glog.Errorf("calibrate black-scholes: %v", err)
		return BSFit{Vol: math.NaN(), Report: Report{Points: len(ks), Status: "optimizer failed"}}, nil
	}
	if err != nil {
		glog.Warningf("calibrate black-scholes: %v", err)
	}

	vol := quant.Clamp(res.X[0], o.Lower, o.Upper)
	fit := BSFit{
		Vol: vol,
		Report: Report{
			Points:      len(ks),
			RSS:         sumSquares([]float64{vol}),
			Iterations:  res.Stats.MajorIterations,
			Evaluations: res.Stats.FuncEvaluations,
			Converged:   err == nil,
			Status:      res.Status.String(),
		},
	}
	glog.V(1).Infof("calibrate black-scholes: vol=%.6f %v", fit.Vol, fit.Report)
	return fit, nil
}

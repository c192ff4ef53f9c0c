package calibrate

import (
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant/internal/lsq"
	"github.com/joshi-prasad/quant/sabr"
	"github.com/joshi-prasad/quant/svi"
)

// Floor for the positive SABR and SVI parameters.
const paramFloor = 1e-6

type SABROptions struct {
	// Starting alpha, rho and nu. Beta is fixed by the caller.
	Initial sabr.Params
	Solver  lsq.Settings
}

func DefaultSABROptions() SABROptions {
	s := lsq.DefaultSettings()
	s.MaxIterations = 200
	return SABROptions{
		Initial: sabr.Params{Alpha: 0.2, Rho: 0, Nu: 0.5},
		Solver:  s,
	}
}

type SABRFit struct {
	Params sabr.Params
	Report Report
}

func sabrFromX(x []float64, beta float64) sabr.Params {
	return sabr.Params{
		Alpha: math.Max(x[0], paramFloor),
		Beta:  beta,
		Rho:   math.Tanh(x[1]),
		Nu:    math.Max(x[2], paramFloor),
	}
}

// SABR fits alpha, rho and nu for a fixed beta. Rho is solved for through
// tanh so |rho| < 1 holds exactly. Needs at least three usable quotes.
func SABR(strikes, marketIV []float64, forward, maturity, beta float64, opts *SABROptions) (SABRFit, error) {
	o := DefaultSABROptions()
	if opts != nil {
		o = *opts
	}
	ks, ivs, err := cleanQuotes(strikes, marketIV)
	if err != nil {
		return SABRFit{}, err
	}
	if err := needPoints("sabr", len(ks), 3); err != nil {
		return SABRFit{}, err
	}

	problem := lsq.Problem{
		M: len(ks),
		Residuals: func(dst, x []float64) {
			p := sabrFromX(x, beta)
			for i, k := range ks {
				dst[i] = sabr.ImpliedVol(forward, k, maturity, p) - ivs[i]
			}
			penalise(dst)
		},
		Lower: []float64{paramFloor, math.Inf(-1), paramFloor},
	}
	x0 := []float64{o.Initial.Alpha, atanhRho(o.Initial.Rho), o.Initial.Nu}
	res, err := lsq.Minimize(problem, x0, o.Solver)
	if err != nil {
		return SABRFit{}, err
	}

	fit := SABRFit{Params: sabrFromX(res.X, beta), Report: newReport(len(ks), res)}
	glog.Infof("calibrate sabr: alpha=%.6f beta=%.2f rho=%.6f nu=%.6f %v",
		fit.Params.Alpha, beta, fit.Params.Rho, fit.Params.Nu, fit.Report)
	return fit, nil
}

type SVIOptions struct {
	Initial svi.Params
	Solver  lsq.Settings
}

func DefaultSVIOptions() SVIOptions {
	s := lsq.DefaultSettings()
	s.MaxIterations = 200
	return SVIOptions{
		Initial: svi.Params{A: 0.01, B: 0.1, Rho: 0, M: 0, Sigma: 0.1},
		Solver:  s,
	}
}

type SVIFit struct {
	Params svi.Params
	Report Report
}

func sviFromX(x []float64) svi.Params {
	return svi.Params{
		A:     x[0],
		B:     math.Max(x[1], paramFloor),
		Rho:   math.Tanh(x[2]),
		M:     x[3],
		Sigma: math.Max(x[4], paramFloor),
	}
}

// SVI fits the raw SVI parameters to a smile in log-moneyness
// k = ln(K/forward), matching sqrt(w(k)/T) to the quoted vols. Needs at
// least five usable quotes, one per parameter.
func SVI(strikes, marketIV []float64, forward, maturity float64, opts *SVIOptions) (SVIFit, error) {
	o := DefaultSVIOptions()
	if opts != nil {
		o = *opts
	}
	ks, ivs, err := cleanQuotes(strikes, marketIV)
	if err != nil {
		return SVIFit{}, err
	}
	if err := needPoints("svi", len(ks), 5); err != nil {
		return SVIFit{}, err
	}
	logK := make([]float64, len(ks))
	for i, k := range ks {
		logK[i] = math.Log(k / forward)
	}

	problem := lsq.Problem{
		M: len(ks),
		Residuals: func(dst, x []float64) {
			p := sviFromX(x)
			for i, k := range logK {
				dst[i] = svi.ImpliedVol(k, maturity, p) - ivs[i]
			}
			penalise(dst)
		},
		Lower: []float64{math.Inf(-1), paramFloor, math.Inf(-1), math.Inf(-1), paramFloor},
	}
	in := o.Initial
	x0 := []float64{in.A, in.B, atanhRho(in.Rho), in.M, in.Sigma}
	res, err := lsq.Minimize(problem, x0, o.Solver)
	if err != nil {
		return SVIFit{}, err
	}

	fit := SVIFit{Params: sviFromX(res.X), Report: newReport(len(ks), res)}
	glog.Infof("calibrate svi: a=%.6f b=%.6f rho=%.6f m=%.6f sigma=%.6f %v",
		fit.Params.A, fit.Params.B, fit.Params.Rho, fit.Params.M, fit.Params.Sigma, fit.Report)
	return fit, nil
}

// Package calibrate fits pricing models to implied volatility quotes:
// a flat Black-Scholes vol, the SABR and SVI smiles and the Heston model.
//
// Fits never fail on numerical trouble. Points whose model vol cannot be
// computed are absorbed as a finite penalty and the outcome is described by
// a Report. Errors are returned only for unusable input.
package calibrate

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/internal/lsq"
)

// PenaltyResidual replaces every residual of an iterate whose model vols
// cannot all be computed. It is finite so the solver can still step.
const PenaltyResidual = 1e6

// Report describes how a fit ended.
type Report struct {
	// Usable quotes after cleaning.
	Points int
	// Residual sum of squares at the returned parameters.
	RSS         float64
	Iterations  int
	Evaluations int
	Converged   bool
	// Diverged is set when every final residual sits at PenaltyResidual.
	Diverged bool
	Status   string
}

// Err returns quant.ErrCalibrationDivergence for a diverged fit and nil
// otherwise. The fitted parameters are returned either way.
func (r Report) Err() error {
	if r.Diverged {
		return fmt.Errorf("%w after %d iterations", quant.ErrCalibrationDivergence, r.Iterations)
	}
	return nil
}

func (r Report) String() string {
	return fmt.Sprintf("points=%d rss=%.3e iterations=%d converged=%v diverged=%v (%s)",
		r.Points, r.RSS, r.Iterations, r.Converged, r.Diverged, r.Status)
}

// cleanQuotes keeps the (strike, vol) pairs where both are finite and
// positive.
func cleanQuotes(strikes, ivs []float64) (ks, vs []float64, err error) {
	if len(strikes) != len(ivs) {
		glog.Errorf("calibrate: %d strikes, %d vols", len(strikes), len(ivs))
		return nil, nil, fmt.Errorf("%w: %d strikes but %d vols", quant.ErrDomain, len(strikes), len(ivs))
	}
	for i := range strikes {
		k, v := strikes[i], ivs[i]
		if !quant.IsFinite(k) || !quant.IsFinite(v) || k <= 0 || v <= 0 {
			continue
		}
		ks = append(ks, k)
		vs = append(vs, v)
	}
	return ks, vs, nil
}

func needPoints(what string, have, want int) error {
	if have < want {
		glog.Errorf("calibrate %s: %d usable quotes, need %d", what, have, want)
		return fmt.Errorf("%w: %s needs %d quotes, have %d", quant.ErrInsufficientData, what, want, have)
	}
	return nil
}

// penalise overwrites dst with the penalty when any entry is non-finite.
func penalise(dst []float64) bool {
	if quant.AllFinite(dst) {
		return false
	}
	for i := range dst {
		dst[i] = PenaltyResidual
	}
	return true
}

func allPenalty(r []float64) bool {
	if len(r) == 0 {
		return false
	}
	for _, v := range r {
		if v != PenaltyResidual {
			return false
		}
	}
	return true
}

func newReport(points int, res lsq.Result) Report {
	diverged := allPenalty(res.Residuals)
	// A flat penalty plateau has a zero gradient; that is not convergence.
	return Report{
		Points:      points,
		RSS:         res.RSS(),
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Converged:   res.Converged && !diverged,
		Diverged:    diverged,
		Status:      res.Status,
	}
}

// atanh of rho, kept away from +-1 so a starting point on the boundary
// stays finite.
func atanhRho(rho float64) float64 {
	return math.Atanh(quant.Clamp(rho, -0.999999, 0.999999))
}

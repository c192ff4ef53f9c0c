// Package montecarlo turns simulated states into discounted prices with a
// standard error and a normal-approximation 95% confidence interval.
package montecarlo

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"gonum.org/v1/gonum/stat"
)

// z value of the two sided 95% normal interval.
const confidenceZ = 1.96

// Result is the outcome of one simulation run.
type Result struct {
	Price  float64
	StdErr float64
	Lower  float64
	Upper  float64
	Paths  int
}

func (r Result) String() string {
	return fmt.Sprintf("%.6f ± %.6f [%.6f, %.6f] (%d paths)", r.Price, r.StdErr, r.Lower, r.Upper, r.Paths)
}

// Contains reports whether x lies inside the confidence interval.
func (r Result) Contains(x float64) bool {
	return x >= r.Lower && x <= r.Upper
}

// Paths holds one simulated trajectory per row, each of length steps+1 with
// the initial state in column 0.
type Paths [][]float64

// Terminal returns the last state of every path.
func (p Paths) Terminal() []float64 {
	out := make([]float64, len(p))
	for i, row := range p {
		out[i] = row[len(row)-1]
	}
	return out
}

// Payoff maps a terminal state to a cash amount.
type Payoff func(st float64) float64

// PathPayoff maps a full path to a cash amount.
type PathPayoff func(path []float64) float64

func Call(strike float64) Payoff {
	return func(st float64) float64 {
		return math.Max(st-strike, 0)
	}
}

func Put(strike float64) Payoff {
	return func(st float64) float64 {
		return math.Max(strike-st, 0)
	}
}

// European returns the vanilla payoff of the given type.
func European(typ quant.OptionType, strike float64) Payoff {
	if typ == quant.Put {
		return Put(strike)
	}
	return Call(strike)
}

// OnPath lifts a terminal payoff to a path payoff.
func (p Payoff) OnPath() PathPayoff {
	return func(path []float64) float64 {
		return p(path[len(path)-1])
	}
}

// Price discounts the mean payoff over the terminal states.
func Price(terminal []float64, payoff Payoff, rate, maturity float64) (Result, error) {
	values := make([]float64, len(terminal))
	for i, st := range terminal {
		values[i] = payoff(st)
	}
	return estimate(values, rate, maturity)
}

// PricePaths is Price for payoffs that look at the whole path.
func PricePaths(paths Paths, payoff PathPayoff, rate, maturity float64) (Result, error) {
	values := make([]float64, len(paths))
	for i, path := range paths {
		values[i] = payoff(path)
	}
	return estimate(values, rate, maturity)
}

func estimate(values []float64, rate, maturity float64) (Result, error) {
	n := len(values)
	if n < 2 {
		glog.Errorf("montecarlo: %d paths, need at least 2", n)
		return Result{}, fmt.Errorf("%w: %d paths, need at least 2", quant.ErrInsufficientData, n)
	}
	disc := math.Exp(-rate * maturity)
	mean, std := stat.MeanStdDev(values, nil)
	price := disc * mean
	se := disc * stat.StdErr(std, float64(n))
	return Result{
		Price:  price,
		StdErr: se,
		Lower:  price - confidenceZ*se,
		Upper:  price + confidenceZ*se,
		Paths:  n,
	}, nil
}

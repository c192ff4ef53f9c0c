// Package report renders curves and smile fits for people: coloured
// terminal tables, PNG smile plots and HTML surface charts.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/joshi-prasad/quant/curve"
	"github.com/joshi-prasad/quant/volsurface"
)

// Fit is one model's implied vols evaluated at a smile's strikes.
type Fit struct {
	Name string
	IVs  []float64
}

// FitFunc evaluates iv at every strike of sm.
func FitFunc(name string, sm volsurface.Smile, iv func(k float64) float64) Fit {
	vols := make([]float64, sm.Len())
	for i, k := range sm.Strikes {
		vols[i] = iv(k)
	}
	return Fit{Name: name, IVs: vols}
}

// Residuals above this many vol points print red, below a tenth of it green.
const residualWarn = 0.01

// PrintCurve prints the zero rate, discount factor and one-period forward
// at every grid time.
func PrintCurve(w io.Writer, c *curve.DiscountCurve, grid []float64) error {
	header := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(w, "%s\n", header(fmt.Sprintf("%-8s %-10s %-12s %-10s", "T", "Zero", "DF", "Fwd")))

	prev := 0.0
	for _, t := range grid {
		zero, err := c.ZeroRate(t)
		if err != nil {
			return err
		}
		fwd := math.NaN()
		if t > prev {
			if f, err := c.ForwardRate(prev, t); err == nil {
				fwd = f
			}
		}
		fmt.Fprintf(w, "%-8.3f %-10.4f %-12.6f %-10.4f\n", t, 100*zero, c.DiscountFactor(t), 100*fwd)
		prev = t
	}
	return nil
}

// PrintSmileFit prints market vs model vols for one smile. The strike nearest
// atm is marked with '*'. Vols are in percent, residuals in vol points.
func PrintSmileFit(w io.Writer, sm volsurface.Smile, atm float64, fits []Fit) {
	yellow := color.New(color.FgYellow).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "T=%.4f\n", sm.T)
	fmt.Fprintf(w, "  %-10s %-10s", "Strike", "Market")
	for _, f := range fits {
		fmt.Fprintf(w, " %-10s %-10s", f.Name, "Resid")
	}
	fmt.Fprintln(w)

	atmIdx := nearest(sm.Strikes, atm)
	for i, k := range sm.Strikes {
		mark := ' '
		rowColor := blue
		if i == atmIdx {
			mark = '*'
			rowColor = yellow
		}
		fmt.Fprintf(w, "%c %s", mark, rowColor(fmt.Sprintf("%-10.2f %-10.2f", k, 100*sm.IVs[i])))
		for _, f := range fits {
			model := math.NaN()
			if i < len(f.IVs) {
				model = f.IVs[i]
			}
			resid := model - sm.IVs[i]
			residColor := blue
			switch {
			case math.IsNaN(resid) || math.Abs(resid) > residualWarn:
				residColor = red
			case math.Abs(resid) < residualWarn/10:
				residColor = green
			}
			fmt.Fprintf(w, " %-10.2f %s", 100*model, residColor(fmt.Sprintf("%-10.3f", 100*resid)))
		}
		fmt.Fprintln(w)
	}
}

func nearest(xs []float64, x float64) int {
	best := -1
	for i, v := range xs {
		if best < 0 || math.Abs(v-x) < math.Abs(xs[best]-x) {
			best = i
		}
	}
	return best
}

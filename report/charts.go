package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/volsurface"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func smileXYs(strikes, ivs []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(strikes))
	for i, k := range strikes {
		if i >= len(ivs) || !quant.IsFinite(ivs[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: k, Y: 100 * ivs[i]})
	}
	return pts
}

// WriteSmilePlot writes a PNG of the market smile as points with one line
// per fit.
func WriteSmilePlot(w io.Writer, sm volsurface.Smile, fits []Fit) error {
	if sm.Len() == 0 {
		return fmt.Errorf("%w: empty smile", quant.ErrInsufficientData)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Smile T=%.3f", sm.T)
	p.X.Label.Text = "Strike"
	p.Y.Label.Text = "Implied vol (%)"
	p.Add(plotter.NewGrid())

	market, err := plotter.NewScatter(smileXYs(sm.Strikes, sm.IVs))
	if err != nil {
		glog.Errorf("report: market scatter: %v", err)
		return err
	}
	market.GlyphStyle.Radius = vg.Points(3)
	p.Add(market)
	p.Legend.Add("market", market)

	for _, f := range fits {
		pts := smileXYs(sm.Strikes, f.IVs)
		if len(pts) == 0 {
			glog.V(1).Infof("report: fit %s has no finite vols, skipped", f.Name)
			continue
		}
		if err := plotutil.AddLines(p, f.Name, pts); err != nil {
			glog.Errorf("report: adding %s line: %v", f.Name, err)
			return err
		}
	}

	wt, err := p.WriterTo(8*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// WriteSurfaceChart writes an HTML page with one implied vol line per
// maturity of s, evaluated on the given strikes.
func WriteSurfaceChart(w io.Writer, s *volsurface.Surface, strikes []float64) error {
	if s == nil || s.Len() == 0 || len(strikes) == 0 {
		return fmt.Errorf("%w: nothing to chart", quant.ErrInsufficientData)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Implied volatility surface"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Strike"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "IV (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)

	labels := make([]string, len(strikes))
	for i, k := range strikes {
		labels[i] = fmt.Sprintf("%.2f", k)
	}
	line.SetXAxis(labels)

	for _, t := range s.Maturities() {
		data := make([]opts.LineData, len(strikes))
		for i, k := range strikes {
			iv := s.IVAt(k, t)
			if math.IsNaN(iv) {
				data[i] = opts.LineData{Value: "-"}
				continue
			}
			data[i] = opts.LineData{Value: math.Round(1e4*iv) / 100}
		}
		line.AddSeries(fmt.Sprintf("T=%.3f", t), data)
	}
	return line.Render(w)
}

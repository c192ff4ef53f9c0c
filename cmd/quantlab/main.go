// quantlab loads a saved market snapshot and runs the pricing and
// calibration stack over it.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/blackscholes"
	"github.com/joshi-prasad/quant/calibrate"
	"github.com/joshi-prasad/quant/curve"
	"github.com/joshi-prasad/quant/heston"
	"github.com/joshi-prasad/quant/marketdata"
	"github.com/joshi-prasad/quant/rates"
	"github.com/joshi-prasad/quant/report"
	"github.com/joshi-prasad/quant/sabr"
	"github.com/joshi-prasad/quant/svi"
	"github.com/joshi-prasad/quant/volsurface"
	"gonum.org/v1/gonum/floats"
)

var (
	dataDir    = flag.String("data", "data", "snapshot directory")
	dateFlag   = flag.String("date", "", "valuation date YYYY-MM-DD (default today)")
	currency   = flag.String("currency", marketdata.DefaultCurrency, "curve currency")
	curveName  = flag.String("curve", "", "curve name (default <currency>_ZERO)")
	ticker     = flag.String("ticker", "SPX", "underlying ticker")
	spot       = flag.Float64("spot", 100, "underlying spot")
	divYield   = flag.Float64("q", 0, "continuous dividend yield")
	simple     = flag.Bool("simple", false, "curve rates are simple annual rates")
	maturity   = flag.Float64("T", 0.5, "maturity used for the single-smile fits")
	beta       = flag.Float64("beta", 0.5, "fixed SABR beta")
	pricer     = flag.String("heston", "cf", "heston calibration pricer: cf or mc")
	outDir     = flag.String("out", ".", "directory for smile.png and surface.html")
	strikeStep = flag.Float64("strike-step", 5, "listed strike spacing, used to pick the ATM strike")
	skipHeston = flag.Bool("skip-heston", false, "skip the heston calibration")
)

func main() {
	flag.Set("alsologtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if err := run(); err != nil {
		glog.Error("quantlab failed. ", err)
		os.Exit(1)
	}
}

func run() error {
	valuation := time.Now()
	if *dateFlag != "" {
		d, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			return fmt.Errorf("bad -date: %w", err)
		}
		valuation = d
	}
	cfg := marketdata.NewConfig(*dataDir, valuation)
	cfg.Currency = strings.ToUpper(*currency)
	snap := marketdata.NewSnapshot(cfg, *curveName, *ticker)

	dc, err := loadCurve(snap)
	if err != nil {
		return err
	}
	fmt.Println("==============================================")
	fmt.Println("Discount curve", snap.CurveName)
	if err := report.PrintCurve(os.Stdout, dc, dc.Maturities()); err != nil {
		return err
	}
	priceRates(dc)

	points, err := snap.LoadSurface()
	if err != nil {
		return err
	}
	surface, err := volsurface.NewSurface(points)
	if err != nil {
		return err
	}
	r, err := dc.ZeroRate(*maturity)
	if err != nil {
		return err
	}
	priceOptions(surface, r)

	sm := surface.Smile(*maturity)
	fits := fitSmile(sm, r)
	if !*skipHeston {
		if fit, ok := fitHeston(surface, r); ok {
			fits = append(fits, fit)
		}
	}
	forward := *spot * math.Exp((r-*divYield)*sm.T)
	fmt.Println("==============================================")
	report.PrintSmileFit(os.Stdout, sm, forward, fits)

	localVol(surface, r)
	return writeCharts(surface, sm, fits)
}

func loadCurve(src marketdata.CurveSource) (*curve.DiscountCurve, error) {
	points, err := src.LoadCurve()
	if err != nil {
		return nil, err
	}
	return curve.Bootstrap(points, !*simple)
}

func priceRates(dc *curve.DiscountCurve) {
	mats := dc.Maturities()
	last := mats[len(mats)-1]

	bond := rates.Bond{Nominal: 100, CouponRate: 0.05, Maturity: last, Frequency: 2}
	if p, err := bond.Price(dc); err == nil {
		fmt.Printf("Bond %.2fY 5%% semi-annual   %.4f\n", last, p)
	} else {
		glog.Warning("bond pricing failed. ", err)
	}

	swap := rates.Swap{Notional: 1e6, PaymentTimes: rates.PaymentSchedule(last, 2), YearFraction: 0.5}
	if par, err := swap.ParRate(dc); err == nil {
		swap.FixedRate = par + 0.001
		npv, _ := swap.PayerNPV(dc)
		fmt.Printf("Swap %.2fY par rate         %.4f%%  payer NPV at par+10bp %.2f\n", last, 100*par, npv)
	} else {
		glog.Warning("swap pricing failed. ", err)
	}

	if last > 0.5 {
		fra := rates.FRA{Notional: 1e6, Strike: 0.03, Start: 0.25, End: 0.5}
		if p, err := fra.Price(dc); err == nil {
			fmt.Printf("FRA 3x6 at 3%%               %.2f\n", p)
		}
		if q, err := rates.RateFutureQuote(dc, 0.25, 0.5); err == nil {
			fmt.Printf("Rate future 3x6 quote       %.4f\n", q)
		}
	}
	fmt.Printf("Equity future %.2fY         %.4f\n", *maturity,
		rates.EquityFuturePrice(*spot, mustZero(dc, *maturity), *maturity, *divYield))
}

func mustZero(dc *curve.DiscountCurve, t float64) float64 {
	r, err := dc.ZeroRate(t)
	if err != nil {
		return 0
	}
	return r
}

func priceOptions(s *volsurface.Surface, r float64) {
	k, t := quant.RoundToStep(*spot, *strikeStep), *maturity
	vol := s.IVAt(k, t)
	m := blackscholes.New(*spot, r, vol, *divYield)
	for _, typ := range []quant.OptionType{quant.Call, quant.Put} {
		price, err := m.Price(k, t, typ)
		if err != nil {
			glog.Warning("black-scholes pricing failed. ", err)
			return
		}
		g, err := m.Greeks(k, t, typ)
		if err != nil {
			glog.Warning("greeks failed. ", err)
			return
		}
		fmt.Printf("BS ATM %-4s vol %.2f%% price %.4f delta %.4f gamma %.5f vega %.4f theta %.4f rho %.4f\n",
			typ, 100*vol, price, g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho)
	}
}

func fitSmile(sm volsurface.Smile, r float64) []report.Fit {
	var fits []report.Fit
	forward := *spot * math.Exp((r-*divYield)*sm.T)

	if fit, err := calibrate.BSImpliedVol(sm.Strikes, sm.T, sm.IVs, *spot, r, nil); err == nil {
		fmt.Printf("BS flat vol %.4f %v\n", fit.Vol, fit.Report)
		fits = append(fits, report.FitFunc("bs", sm, func(float64) float64 { return fit.Vol }))
	} else {
		glog.Warning("bs fit failed. ", err)
	}

	if fit, err := calibrate.SABR(sm.Strikes, sm.IVs, forward, sm.T, *beta, nil); err == nil {
		fmt.Printf("SABR alpha=%.4f beta=%.2f rho=%.4f nu=%.4f %v\n", fit.Params.Alpha, fit.Params.Beta, fit.Params.Rho, fit.Params.Nu, fit.Report)
		fits = append(fits, report.FitFunc("sabr", sm, func(k float64) float64 {
			return sabr.ImpliedVol(forward, k, sm.T, fit.Params)
		}))
	} else {
		glog.Warning("sabr fit failed. ", err)
	}

	if fit, err := calibrate.SVI(sm.Strikes, sm.IVs, forward, sm.T, nil); err == nil {
		fmt.Printf("SVI a=%.5f b=%.4f rho=%.4f m=%.4f sigma=%.4f %v\n", fit.Params.A, fit.Params.B, fit.Params.Rho, fit.Params.M, fit.Params.Sigma, fit.Report)
		fits = append(fits, report.FitFunc("svi", sm, func(k float64) float64 {
			return svi.ImpliedVol(math.Log(k/forward), sm.T, fit.Params)
		}))
	} else {
		glog.Warning("svi fit failed. ", err)
	}
	return fits
}

func fitHeston(s *volsurface.Surface, r float64) (report.Fit, bool) {
	opts := calibrate.DefaultHestonOptions()
	if *pricer == "cf" {
		opts.Pricer = calibrate.PricerCF
	}
	var smiles []volsurface.Smile
	for _, t := range s.Maturities() {
		smiles = append(smiles, s.Smile(t))
	}
	fit, err := calibrate.HestonSmiles(smiles, *spot, r, *divYield, &opts)
	if err != nil {
		glog.Warning("heston fit failed. ", err)
		return report.Fit{}, false
	}
	fmt.Println("Heston", fit.Params, fit.Report)
	if err := fit.Report.Err(); err != nil {
		glog.Warning(err)
	}

	sm := s.Smile(*maturity)
	model := heston.New(*spot, r, *divYield, fit.Params)
	model.CF = opts.CF
	return report.FitFunc("heston", sm, func(k float64) float64 {
		price, err := model.CallPriceCF(k, sm.T)
		if err != nil {
			return math.NaN()
		}
		return blackscholes.New(*spot, r, 0, *divYield).ImpliedVol(price, k, sm.T)
	}), true
}

func localVol(s *volsurface.Surface, r float64) {
	grid, err := volsurface.LocalVol(s, *spot, r, *divYield, 0, 0)
	if err != nil {
		glog.Warning("local vol failed. ", err)
		return
	}
	fmt.Printf("Local vol grid %dx%d, %d finite points\n", len(grid.Ts), len(grid.Ks), grid.Valid())
}

func writeCharts(s *volsurface.Surface, sm volsurface.Smile, fits []report.Fit) error {
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	png, err := os.Create(filepath.Join(*outDir, "smile.png"))
	if err != nil {
		return err
	}
	defer png.Close()
	if err := report.WriteSmilePlot(png, sm, fits); err != nil {
		return err
	}

	html, err := os.Create(filepath.Join(*outDir, "surface.html"))
	if err != nil {
		return err
	}
	defer html.Close()
	strikes := floats.Span(make([]float64, 21), sm.Strikes[0], sm.Strikes[sm.Len()-1])
	if err := report.WriteSurfaceChart(html, s, strikes); err != nil {
		return err
	}
	glog.Infof("wrote charts to %s", *outDir)
	return nil
}

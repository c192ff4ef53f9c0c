package marketdata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/curve"
	"github.com/joshi-prasad/quant/volsurface"
)

var valuationDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestConfigPaths(t *testing.T) {
	cfg := NewConfig("/data", valuationDate)
	if cfg.Currency != "USD" {
		t.Fatalf("default currency = %q", cfg.Currency)
	}
	if got, want := cfg.RatesPath("usd_zero"), filepath.Join("/data", "rates", "USD_ZERO_2024-03-15.csv"); got != want {
		t.Errorf("RatesPath = %q, want %q", got, want)
	}
	if got, want := cfg.OptionsPath("spx"), filepath.Join("/data", "options", "SPX_2024-03-15.csv"); got != want {
		t.Errorf("OptionsPath = %q, want %q", got, want)
	}
}

func TestParseCurveCSV(t *testing.T) {
	in := "Maturity, Rate\n0.5, 0.03\n1,0.032\n"
	points, err := ParseCurveCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCurveCSV: %v", err)
	}
	if len(points) != 2 || points[1].Maturity != 1 || points[1].Rate != 0.032 {
		t.Fatalf("points = %+v", points)
	}
}

func TestParseCurveCSVErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "maturity,yield\n1,0.03\n",
		"bad number":     "maturity,rate\n1,abc\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCurveCSV(strings.NewReader(in))
			if !errors.Is(err, quant.ErrInvalidCurveInput) {
				t.Fatalf("err = %v, want ErrInvalidCurveInput", err)
			}
		})
	}
}

func TestParseSurfaceCSV(t *testing.T) {
	in := "T,K,iv,maturity_str,type\n" +
		"0.25,100,0.2,3M,call\n" +
		"0.25,110,n/a,3M,call\n" +
		"0.5,90,0.25,6M,PE\n"
	points, err := ParseSurfaceCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseSurfaceCSV: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (bad row skipped)", len(points))
	}
	if points[1].Label != "6M" || points[1].Type != quant.Put || points[1].IV != 0.25 {
		t.Errorf("points[1] = %+v", points[1])
	}

	if _, err := ParseSurfaceCSV(strings.NewReader("T,K\n1,100\n")); !errors.Is(err, quant.ErrInvalidSurfaceInput) {
		t.Errorf("missing iv column: err = %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := NewConfig(t.TempDir(), valuationDate)
	snap := NewSnapshot(cfg, "", "SPX")
	if snap.CurveName != "USD_ZERO" {
		t.Fatalf("default curve name = %q", snap.CurveName)
	}

	curvePoints := []curve.Point{{Maturity: 0.5, Rate: 0.03}, {Maturity: 2, Rate: 0.035}}
	surfacePoints := []volsurface.VolPoint{
		{T: 0.25, K: 95, IV: 0.22, Label: "3M", Type: quant.Put},
		{T: 0.25, K: 105, IV: 0.19, Label: "3M", Type: quant.Call},
	}
	if err := snap.SaveCurve(curvePoints); err != nil {
		t.Fatalf("SaveCurve: %v", err)
	}
	if err := snap.SaveSurface(surfacePoints); err != nil {
		t.Fatalf("SaveSurface: %v", err)
	}
	if _, err := os.Stat(cfg.RatesPath("USD_ZERO")); err != nil {
		t.Fatalf("curve file: %v", err)
	}

	var cs CurveSource = snap
	var ss SurfaceSource = snap
	gotCurve, err := cs.LoadCurve()
	if err != nil {
		t.Fatalf("LoadCurve: %v", err)
	}
	if len(gotCurve) != 2 || gotCurve[1] != curvePoints[1] {
		t.Errorf("curve = %+v", gotCurve)
	}
	gotSurface, err := ss.LoadSurface()
	if err != nil {
		t.Fatalf("LoadSurface: %v", err)
	}
	if len(gotSurface) != 2 || gotSurface[0] != surfacePoints[0] {
		t.Errorf("surface = %+v", gotSurface)
	}

	c, err := curve.Bootstrap(gotCurve, true)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("curve length = %d", c.Len())
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	snap := NewSnapshot(NewConfig(t.TempDir(), valuationDate), "EUR_ZERO", "SX5E")
	if _, err := snap.LoadCurve(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadCurve err = %v, want not-exist", err)
	}
	if _, err := snap.LoadSurface(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadSurface err = %v, want not-exist", err)
	}
}

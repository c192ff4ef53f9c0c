// Package marketdata loads the two tables the pricing packages consume, a
// zero-rate curve and an implied volatility surface, from CSV snapshots.
package marketdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant/curve"
	"github.com/joshi-prasad/quant/volsurface"
)

const (
	DefaultCurrency = "USD"
	dateLayout      = "2006-01-02"
)

// CurveSource supplies a (maturity, rate) table.
type CurveSource interface {
	LoadCurve() ([]curve.Point, error)
}

// SurfaceSource supplies (T, K, iv) quotes.
type SurfaceSource interface {
	LoadSurface() ([]volsurface.VolPoint, error)
}

// Config locates snapshot files. It is passed explicitly to every source.
type Config struct {
	ValuationDate time.Time
	Currency      string
	DataDir       string
}

func NewConfig(dataDir string, valuationDate time.Time) Config {
	return Config{ValuationDate: valuationDate, Currency: DefaultCurrency, DataDir: dataDir}
}

func (c Config) dateString() string {
	return c.ValuationDate.Format(dateLayout)
}

// RatesPath is <DataDir>/rates/<CURVE>_<YYYY-MM-DD>.csv.
func (c Config) RatesPath(curveName string) string {
	name := fmt.Sprintf("%s_%s.csv", strings.ToUpper(curveName), c.dateString())
	return filepath.Join(c.DataDir, "rates", name)
}

// OptionsPath is <DataDir>/options/<TICKER>_<YYYY-MM-DD>.csv.
func (c Config) OptionsPath(ticker string) string {
	name := fmt.Sprintf("%s_%s.csv", strings.ToUpper(ticker), c.dateString())
	return filepath.Join(c.DataDir, "options", name)
}

// Snapshot reads a curve and a surface saved for one valuation date.
type Snapshot struct {
	Config    Config
	CurveName string
	Ticker    string
}

func NewSnapshot(cfg Config, curveName, ticker string) *Snapshot {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if curveName == "" {
		curveName = cfg.Currency + "_ZERO"
	}
	return &Snapshot{Config: cfg, CurveName: curveName, Ticker: ticker}
}

func (s *Snapshot) LoadCurve() ([]curve.Point, error) {
	path := s.Config.RatesPath(s.CurveName)
	file, err := os.Open(path)
	if err != nil {
		glog.Errorf("marketdata: opening curve snapshot %s: %v", path, err)
		return nil, fmt.Errorf("curve snapshot %s: %w", path, err)
	}
	defer file.Close()

	points, err := ParseCurveCSV(file)
	if err != nil {
		return nil, fmt.Errorf("curve snapshot %s: %w", path, err)
	}
	glog.Infof("marketdata: loaded %d curve points from %s", len(points), path)
	return points, nil
}

func (s *Snapshot) LoadSurface() ([]volsurface.VolPoint, error) {
	path := s.Config.OptionsPath(s.Ticker)
	file, err := os.Open(path)
	if err != nil {
		glog.Errorf("marketdata: opening surface snapshot %s: %v", path, err)
		return nil, fmt.Errorf("surface snapshot %s: %w", path, err)
	}
	defer file.Close()

	points, err := ParseSurfaceCSV(file)
	if err != nil {
		return nil, fmt.Errorf("surface snapshot %s: %w", path, err)
	}
	glog.Infof("marketdata: loaded %d surface quotes from %s", len(points), path)
	return points, nil
}

// SaveCurve writes points to the snapshot path, creating the directory.
func (s *Snapshot) SaveCurve(points []curve.Point) error {
	return writeFile(s.Config.RatesPath(s.CurveName), func(f *os.File) error {
		return WriteCurveCSV(f, points)
	})
}

func (s *Snapshot) SaveSurface(points []volsurface.VolPoint) error {
	return writeFile(s.Config.OptionsPath(s.Ticker), func(f *os.File) error {
		return WriteSurfaceCSV(f, points)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		glog.Errorf("marketdata: creating %s: %v", filepath.Dir(path), err)
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		glog.Errorf("marketdata: creating %s: %v", path, err)
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	glog.Infof("marketdata: wrote %s", path)
	return file.Close()
}

package heston

import (
	"errors"
	"math"
	"testing"

	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/blackscholes"
)

func testParams(t *testing.T) Params {
	t.Helper()
	p, err := NewParams(2, 0.04, 0.3, -0.7, 0.04)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func TestNewParamsValidation(t *testing.T) {
	t.Parallel()

	bad := [][5]float64{
		{0, 0.04, 0.3, 0, 0.04},
		{1, -0.04, 0.3, 0, 0.04},
		{1, 0.04, 0, 0, 0.04},
		{1, 0.04, 0.3, 1, 0.04},
		{1, 0.04, 0.3, -1.2, 0.04},
		{1, 0.04, 0.3, 0, 0},
		{1, math.NaN(), 0.3, 0, 0.04},
	}
	for _, b := range bad {
		if _, err := NewParams(b[0], b[1], b[2], b[3], b[4]); !errors.Is(err, quant.ErrDomain) {
			t.Errorf("NewParams%v err = %v, want ErrDomain", b, err)
		}
	}
	p := testParams(t)
	if !p.FellerSatisfied() {
		t.Errorf("2*2*0.04 > 0.09 should satisfy Feller")
	}
}

func TestSimulatePathsShapeAndReproducibility(t *testing.T) {
	t.Parallel()

	m := New(100, 0.02, 0.01, testParams(t))
	prices, variances, err := m.SimulatePaths(1, 10, 64, 5)
	if err != nil {
		t.Fatalf("SimulatePaths: %v", err)
	}
	again, _, _ := m.SimulatePaths(1, 10, 64, 5)
	for i := range prices {
		if len(prices[i]) != 11 || prices[i][0] != 100 || variances[i][0] != 0.04 {
			t.Fatalf("path %d malformed", i)
		}
		for j := range prices[i] {
			if prices[i][j] != again[i][j] {
				t.Fatalf("paths differ at (%d,%d)", i, j)
			}
			if variances[i][j] < VarianceFloor {
				t.Fatalf("variance %v below floor", variances[i][j])
			}
		}
	}

	terminal, err := m.SimulateTerminal(1, 10, 64, 5)
	if err != nil {
		t.Fatalf("SimulateTerminal: %v", err)
	}
	for i, st := range prices.Terminal() {
		if terminal[i] != st {
			t.Fatalf("terminal %d: %v != %v", i, terminal[i], st)
		}
	}
}

func TestSimulationIndependentOfWorkers(t *testing.T) {
	t.Parallel()

	serial := New(100, 0.02, 0, testParams(t))
	serial.Workers = 1
	parallel := New(100, 0.02, 0, testParams(t))
	parallel.Workers = 7

	a, err := serial.SimulateTerminal(0.5, 25, 1001, 99)
	if err != nil {
		t.Fatalf("SimulateTerminal: %v", err)
	}
	b, _ := parallel.SimulateTerminal(0.5, 25, 1001, 99)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("path %d: serial %v parallel %v", i, a[i], b[i])
		}
	}
}

func TestSimulateRejectsBadInput(t *testing.T) {
	t.Parallel()

	m := New(100, 0.02, 0, testParams(t))
	if _, err := m.SimulateTerminal(1, 0, 10, 1); !errors.Is(err, quant.ErrDomain) {
		t.Errorf("zero steps err = %v", err)
	}
	m.Params.Rho = 1.5
	if _, err := m.SimulateTerminal(1, 10, 10, 1); !errors.Is(err, quant.ErrDomain) {
		t.Errorf("bad rho err = %v", err)
	}
}

func TestMonteCarloConvergesToBlackScholes(t *testing.T) {
	t.Parallel()

	vol := 0.2
	p, err := NewParams(1, vol*vol, 1e-3, 0, vol*vol)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	m := New(100, 0.03, 0, p)
	bs, _ := blackscholes.New(100, 0.03, vol, 0).CallPrice(100, 1)

	small, err := m.PriceCallMC(100, 1, 20, 1000, 1)
	if err != nil {
		t.Fatalf("PriceCallMC: %v", err)
	}
	large, err := m.PriceCallMC(100, 1, 20, 200000, 1)
	if err != nil {
		t.Fatalf("PriceCallMC: %v", err)
	}
	if math.Abs(large.Price-bs) > 4*large.StdErr+0.01 {
		t.Errorf("N=200000 price %v, black-scholes %v", large, bs)
	}
	if math.Abs(small.Price-bs) > 4*small.StdErr+0.01 {
		t.Errorf("N=1000 price %v, black-scholes %v", small, bs)
	}
	if large.Upper-large.Lower >= (small.Upper-small.Lower)/5 {
		t.Errorf("interval did not shrink: %v vs %v", large, small)
	}
}

func TestCharacteristicFunctionMatchesBlackScholes(t *testing.T) {
	t.Parallel()

	vol := 0.2
	p, err := NewParams(2, vol*vol, 0.05, 0, vol*vol)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	bs := blackscholes.New(100, 0.03, vol, 0.01)
	for _, k := range []float64{80, 100, 120} {
		got, err := CallPriceCF(100, k, 1, 0.03, 0.01, p, 0)
		if err != nil {
			t.Fatalf("CallPriceCF: %v", err)
		}
		want, _ := bs.CallPrice(k, 1)
		if math.Abs(got-want) > 0.05 {
			t.Errorf("K=%v: heston %v, black-scholes %v", k, got, want)
		}
	}
}

func TestCharacteristicFunctionMatchesMonteCarlo(t *testing.T) {
	t.Parallel()

	m := New(100, 0.03, 0, testParams(t))
	for _, k := range []float64{90, 100, 110} {
		cf, err := m.CallPriceCF(k, 1)
		if err != nil {
			t.Fatalf("CallPriceCF: %v", err)
		}
		mc, err := m.PriceCallMC(k, 1, 100, 50000, 3)
		if err != nil {
			t.Fatalf("PriceCallMC: %v", err)
		}
		if math.Abs(cf-mc.Price) > 4*mc.StdErr+0.05 {
			t.Errorf("K=%v: CF %v, MC %v", k, cf, mc)
		}
	}
}

func TestCharacteristicFunctionParityAndBounds(t *testing.T) {
	t.Parallel()

	m := New(100, 0.03, 0.02, testParams(t))
	for _, k := range []float64{60, 95, 100, 140} {
		call, err := m.CallPriceCF(k, 0.75)
		if err != nil {
			t.Fatalf("CallPriceCF: %v", err)
		}
		put, err := m.PriceCF(k, 0.75, quant.Put)
		if err != nil {
			t.Fatalf("PriceCF: %v", err)
		}
		fwdDiff := 100*math.Exp(-0.02*0.75) - k*math.Exp(-0.03*0.75)
		if math.Abs(call-put-fwdDiff) > 1e-9 {
			t.Errorf("K=%v: call-put %v, want %v", k, call-put, fwdDiff)
		}
		if call < math.Max(fwdDiff, 0)-1e-6 || call > 100 {
			t.Errorf("K=%v: call %v outside no-arbitrage bounds", k, call)
		}
	}
	if _, err := m.CallPriceCF(100, 0); !errors.Is(err, quant.ErrDomain) {
		t.Errorf("zero maturity err = %v", err)
	}
}

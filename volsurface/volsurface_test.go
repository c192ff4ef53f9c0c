package volsurface

import (
	"errors"
	"math"
	"testing"

	"github.com/joshi-prasad/quant"
)

func testSurface(t *testing.T) *Surface {
	t.Helper()
	pts := []VolPoint{
		{T: 1.0, K: 110, IV: 0.19},
		{T: 0.5, K: 90, IV: 0.25},
		{T: 0.5, K: 100, IV: 0.22},
		{T: 0.5, K: 110, IV: 0.21},
		{T: 1.0, K: 90, IV: 0.23},
		{T: 1.0, K: 100, IV: 0.20},
		{T: 2.0, K: 100, IV: 0.18},
		{T: 2.0, K: 120, IV: 0.17},
	}
	s, err := NewSurface(pts)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	return s
}

func TestNewSurfaceCleansAndSorts(t *testing.T) {
	t.Parallel()

	s, err := NewSurface([]VolPoint{
		{T: 1, K: 100, IV: 0.2},
		{T: 1, K: 90, IV: math.NaN()},
		{T: -1, K: 90, IV: 0.2},
		{T: 0.5, K: 80, IV: 0.3},
		{T: 1, K: 80, IV: 0},
	})
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if m := s.Maturities(); len(m) != 2 || m[0] != 0.5 || m[1] != 1 {
		t.Fatalf("Maturities = %v", m)
	}
}

func TestNewSurfaceErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewSurface(nil); !errors.Is(err, quant.ErrInsufficientData) {
		t.Errorf("empty err = %v", err)
	}
	_, err := NewSurface([]VolPoint{{T: 1, K: 100, IV: 0.2}, {T: 1, K: 100, IV: 0.3}})
	if !errors.Is(err, quant.ErrInvalidSurfaceInput) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestNearestMaturityTiesGoEarlier(t *testing.T) {
	t.Parallel()

	s := testSurface(t)
	cases := map[float64]float64{
		0.1:  0.5,
		0.7:  0.5,
		0.75: 0.5,
		0.76: 1.0,
		1.5:  1.0,
		1.6:  2.0,
		9:    2.0,
	}
	for in, want := range cases {
		if got := s.NearestMaturity(in); got != want {
			t.Errorf("NearestMaturity(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSmileSortedByStrike(t *testing.T) {
	t.Parallel()

	s := testSurface(t)
	sm := s.Smile(0.9)
	if sm.T != 1.0 || sm.Len() != 3 {
		t.Fatalf("Smile(0.9) = %+v", sm)
	}
	wantK := []float64{90, 100, 110}
	wantIV := []float64{0.23, 0.20, 0.19}
	for i := range wantK {
		if sm.Strikes[i] != wantK[i] || sm.IVs[i] != wantIV[i] {
			t.Fatalf("Smile(0.9) = %+v", sm)
		}
	}
	if ks := s.StrikesFor(2.2); len(ks) != 2 || ks[1] != 120 {
		t.Fatalf("StrikesFor(2.2) = %v", ks)
	}
}

func TestIVAt(t *testing.T) {
	t.Parallel()

	s := testSurface(t)
	cases := []struct {
		k, t, want float64
	}{
		{100, 0.5, 0.22},  // pillar
		{95, 0.5, 0.235},  // strike interpolation
		{50, 0.5, 0.25},   // flat below the strikes
		{200, 1.0, 0.19},  // flat above the strikes
		{100, 0.75, 0.21}, // maturity interpolation
		{95, 0.75, (0.235 + 0.215) / 2},
		{100, 0.1, 0.22}, // flat before the first maturity
		{110, 5, 0.175},  // flat after the last maturity
		{100, 1.5, (0.20 + 0.18) / 2},
	}
	for _, c := range cases {
		if got := s.IVAt(c.k, c.t); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("IVAt(%v, %v) = %v, want %v", c.k, c.t, got, c.want)
		}
	}
}

func TestNewSmileFilters(t *testing.T) {
	t.Parallel()

	sm := NewSmile(0.5, []float64{110, 90, 100, 120, 130}, []float64{0.2, 0.3, 0.25, 1e-7, math.NaN()})
	if sm.Len() != 3 || sm.Strikes[0] != 90 || sm.IVs[2] != 0.2 {
		t.Fatalf("NewSmile = %+v", sm)
	}
	if got := sm.IVAt(95); math.Abs(got-0.275) > 1e-12 {
		t.Fatalf("IVAt(95) = %v", got)
	}
	k := sm.LogMoneyness(100)
	if math.Abs(k[0]-math.Log(0.9)) > 1e-15 || k[1] != 0 {
		t.Fatalf("LogMoneyness = %v", k)
	}
}

func TestLocalVolFlatSurface(t *testing.T) {
	t.Parallel()

	var pts []VolPoint
	for _, tt := range []float64{0.5, 1, 2} {
		for _, k := range []float64{80, 90, 100, 110, 120} {
			pts = append(pts, VolPoint{T: tt, K: k, IV: 0.2})
		}
	}
	s, err := NewSurface(pts)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	g, err := LocalVol(s, 100, 0.0, 0.0, 5, 9)
	if err != nil {
		t.Fatalf("LocalVol: %v", err)
	}
	if len(g.Ts) != 5 || len(g.Ks) != 9 || len(g.Sigmas) != 5 || len(g.Sigmas[0]) != 9 {
		t.Fatalf("grid shape %dx%d", len(g.Ts), len(g.Ks))
	}
	if g.Ts[0] != 0.5 || g.Ts[4] != 2 || g.Ks[0] != 80 || g.Ks[8] != 120 {
		t.Fatalf("grid bounds Ts=%v Ks=%v", g.Ts, g.Ks)
	}
	// A flat implied surface with zero rates has flat local vol.
	for i := range g.Sigmas {
		for j, v := range g.Sigmas[i] {
			if math.Abs(v-0.2) > 5e-3 {
				t.Errorf("sigma(%v, %v) = %v, want 0.2", g.Ts[i], g.Ks[j], v)
			}
		}
	}
	if g.Valid() != 45 {
		t.Errorf("Valid = %d", g.Valid())
	}
	if _, err := LocalVol(s, 0, 0, 0, 0, 0); !errors.Is(err, quant.ErrDomain) {
		t.Errorf("zero spot err = %v", err)
	}
}

func TestIVAtNaN(t *testing.T) {
	t.Parallel()

	s := testSurface(t)
	for _, c := range [][2]float64{{math.NaN(), 1}, {100, math.NaN()}} {
		if iv := s.IVAt(c[0], c[1]); !math.IsNaN(iv) {
			t.Errorf("IVAt(%v, %v) = %v, want NaN", c[0], c[1], iv)
		}
	}
	if iv := s.Smile(1).IVAt(math.NaN()); !math.IsNaN(iv) {
		t.Errorf("Smile.IVAt(NaN) = %v", iv)
	}
}

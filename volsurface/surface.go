// Package volsurface stores discrete implied volatility quotes, extracts
// smiles at a maturity and interpolates between quotes.
package volsurface

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
)

// VolPoint is one implied volatility quote. Label and Type are optional
// metadata carried over from the source table.
type VolPoint struct {
	T     float64
	K     float64
	IV    float64
	Label string
	Type  quant.OptionType
}

type slice struct {
	t       float64
	strikes []float64
	ivs     []float64
}

// Surface is a read-only set of quotes with unique (T, K).
type Surface struct {
	points     []VolPoint
	maturities []float64
	slices     []slice
}

// NewSurface drops quotes with non-finite or non-positive T, K or IV and
// builds the surface from the rest. Duplicate (T, K) pairs are rejected.
func NewSurface(points []VolPoint) (*Surface, error) {
	clean := make([]VolPoint, 0, len(points))
	for _, p := range points {
		if !quant.AllFinite([]float64{p.T, p.K, p.IV}) || p.T <= 0 || p.K <= 0 || p.IV <= 0 {
			glog.V(2).Infof("volsurface: dropping quote %+v", p)
			continue
		}
		clean = append(clean, p)
	}
	if len(clean) == 0 {
		glog.Errorf("volsurface: no usable quotes out of %d", len(points))
		return nil, fmt.Errorf("%w: no usable quotes out of %d", quant.ErrInsufficientData, len(points))
	}

	sort.SliceStable(clean, func(i, j int) bool {
		if clean[i].T != clean[j].T {
			return clean[i].T < clean[j].T
		}
		return clean[i].K < clean[j].K
	})

	s := &Surface{points: clean}
	for i, p := range clean {
		if i > 0 && p.T == clean[i-1].T && p.K == clean[i-1].K {
			glog.Errorf("volsurface: duplicate quote T=%v K=%v", p.T, p.K)
			return nil, fmt.Errorf("%w: duplicate quote at T=%v K=%v", quant.ErrInvalidSurfaceInput, p.T, p.K)
		}
		if len(s.slices) == 0 || s.slices[len(s.slices)-1].t != p.T {
			s.slices = append(s.slices, slice{t: p.T})
			s.maturities = append(s.maturities, p.T)
		}
		last := &s.slices[len(s.slices)-1]
		last.strikes = append(last.strikes, p.K)
		last.ivs = append(last.ivs, p.IV)
	}
	glog.V(1).Infof("volsurface: %d quotes over %d maturities", len(clean), len(s.maturities))
	return s, nil
}

func (s *Surface) Len() int {
	return len(s.points)
}

// Points returns a copy of the quotes sorted by (T, K).
func (s *Surface) Points() []VolPoint {
	return append([]VolPoint(nil), s.points...)
}

// Maturities returns the sorted distinct maturities.
func (s *Surface) Maturities() []float64 {
	return append([]float64(nil), s.maturities...)
}

func (s *Surface) nearestIndex(t float64) int {
	idx := sort.SearchFloat64s(s.maturities, t)
	if idx == 0 {
		return 0
	}
	if idx == len(s.maturities) {
		return idx - 1
	}
	before, after := s.maturities[idx-1], s.maturities[idx]
	if math.Abs(t-before) <= math.Abs(after-t) {
		return idx - 1
	}
	return idx
}

// NearestMaturity returns the stored maturity closest to t. A tie goes to
// the earlier maturity.
func (s *Surface) NearestMaturity(t float64) float64 {
	return s.maturities[s.nearestIndex(t)]
}

// StrikesFor returns the strikes quoted at the maturity nearest to t.
func (s *Surface) StrikesFor(t float64) []float64 {
	return append([]float64(nil), s.slices[s.nearestIndex(t)].strikes...)
}

// Smile returns the quotes at the maturity nearest to t sorted by strike.
// No interpolation across maturities happens here.
func (s *Surface) Smile(t float64) Smile {
	sl := s.slices[s.nearestIndex(t)]
	return Smile{
		T:       sl.t,
		Strikes: append([]float64(nil), sl.strikes...),
		IVs:     append([]float64(nil), sl.ivs...),
	}
}

// IVAt interpolates linearly in strike inside the two maturities that
// bracket t and then linearly in t. Outside the quoted range it holds the
// nearest value flat in both directions.
func (s *Surface) IVAt(k, t float64) float64 {
	if math.IsNaN(k) || math.IsNaN(t) {
		return math.NaN()
	}
	n := len(s.maturities)
	if t <= s.maturities[0] {
		return interpStrike(s.slices[0], k)
	}
	if t >= s.maturities[n-1] {
		return interpStrike(s.slices[n-1], k)
	}
	idx := sort.SearchFloat64s(s.maturities, t)
	if s.maturities[idx] == t {
		return interpStrike(s.slices[idx], k)
	}
	lo, hi := s.slices[idx-1], s.slices[idx]
	ivLo, ivHi := interpStrike(lo, k), interpStrike(hi, k)
	w := (t - lo.t) / (hi.t - lo.t)
	return ivLo + w*(ivHi-ivLo)
}

func interpStrike(sl slice, k float64) float64 {
	return interpFlat(sl.strikes, sl.ivs, k)
}

// interpFlat is linear interpolation of ys over sorted xs with flat ends.
func interpFlat(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if n == 0 || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	idx := sort.SearchFloat64s(xs, x)
	if xs[idx] == x {
		return ys[idx]
	}
	w := (x - xs[idx-1]) / (xs[idx] - xs[idx-1])
	return ys[idx-1] + w*(ys[idx]-ys[idx-1])
}

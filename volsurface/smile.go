package volsurface

import (
	"math"
	"sort"

	"github.com/joshi-prasad/quant"
)

// MinSmileIV is the smallest implied volatility kept by NewSmile. Quotes
// below it are placeholders in most option chain dumps.
const MinSmileIV = 1e-6

// Smile is the set of (strike, implied vol) quotes at one maturity, sorted
// by strike.
type Smile struct {
	T       float64
	Strikes []float64
	IVs     []float64
}

// NewSmile builds a smile from parallel strike and vol slices, dropping
// pairs with a non-finite value, a non-positive strike or an iv at or below
// MinSmileIV.
func NewSmile(t float64, strikes, ivs []float64) Smile {
	type pair struct{ k, iv float64 }
	n := len(strikes)
	if len(ivs) < n {
		n = len(ivs)
	}
	pairs := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		k, iv := strikes[i], ivs[i]
		if !quant.IsFinite(k) || !quant.IsFinite(iv) || k <= 0 || iv <= MinSmileIV {
			continue
		}
		pairs = append(pairs, pair{k, iv})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	sm := Smile{T: t, Strikes: make([]float64, len(pairs)), IVs: make([]float64, len(pairs))}
	for i, p := range pairs {
		sm.Strikes[i] = p.k
		sm.IVs[i] = p.iv
	}
	return sm
}

func (sm Smile) Len() int {
	return len(sm.Strikes)
}

// IVAt interpolates the smile linearly in strike with flat ends.
func (sm Smile) IVAt(k float64) float64 {
	return interpFlat(sm.Strikes, sm.IVs, k)
}

// LogMoneyness returns ln(K/F) for every strike.
func (sm Smile) LogMoneyness(forward float64) []float64 {
	out := make([]float64, len(sm.Strikes))
	for i, k := range sm.Strikes {
		out[i] = math.Log(k / forward)
	}
	return out
}

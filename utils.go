package quant

import "math"

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// AllFinite reports whether every element of xs is finite.
func AllFinite(xs []float64) bool {
	for _, x := range xs {
		if !IsFinite(x) {
			return false
		}
	}
	return true
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// RoundToStep rounds num to the nearest multiple of step. Halfway values
// round down, which keeps an ATM strike on the lower grid point.
func RoundToStep(num float64, step float64) float64 {
	if step <= 0 {
		return num
	}
	rounded := math.Round(num)
	remainder := math.Mod(rounded, step)
	if remainder <= step/2 {
		return rounded - remainder
	}
	return rounded + (step - remainder)
}

package calibrate

import "github.com/joshi-prasad/quant/blackscholes"

func impliedVol(spot, rate, q, price, k, t float64) float64 {
	return blackscholes.New(spot, rate, 0.2, q).ImpliedVol(price, k, t)
}

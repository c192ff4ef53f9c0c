// Package rates values plain rate products (coupon bonds, fixed-for-floating
// swaps, FRAs and futures) off a single discount curve.
package rates

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
)

// Discounter is anything that returns a discount factor for a time in
// years. *curve.DiscountCurve satisfies it.
type Discounter interface {
	DiscountFactor(t float64) float64
}

// ForwardCurve is a Discounter that also exposes forward rates.
type ForwardCurve interface {
	Discounter
	ForwardRate(t1, t2 float64) (float64, error)
	SimpleForwardRate(t1, t2 float64) (float64, error)
}

// Bond is a fixed coupon bullet bond.
type Bond struct {
	Nominal    float64
	CouponRate float64
	Maturity   float64
	// Coupons per year.
	Frequency int
}

// CashflowTimes returns the coupon times i/frequency for
// i = 1..int(maturity*frequency).
func (b Bond) CashflowTimes() []float64 {
	if b.Frequency <= 0 {
		return nil
	}
	n := int(b.Maturity * float64(b.Frequency))
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i+1) / float64(b.Frequency)
	}
	return times
}

func (b Bond) Coupon() float64 {
	return b.CouponRate * b.Nominal / float64(b.Frequency)
}

// Price discounts every coupon and the nominal repayment at maturity.
func (b Bond) Price(d Discounter) (float64, error) {
	if b.Frequency <= 0 || b.Maturity <= 0 {
		glog.Errorf("Bond.Price: frequency %d maturity %v", b.Frequency, b.Maturity)
		return 0, fmt.Errorf("%w: bond needs positive frequency and maturity", quant.ErrDomain)
	}
	c := b.Coupon()
	pv := 0.0
	for _, t := range b.CashflowTimes() {
		pv += c * d.DiscountFactor(t)
	}
	return pv + b.Nominal*d.DiscountFactor(b.Maturity), nil
}

// PaymentSchedule returns the times 1/frequency, 2/frequency, ... up to
// maturity, the usual schedule for a swap fixed leg.
func PaymentSchedule(maturity float64, frequency int) []float64 {
	return Bond{Maturity: maturity, Frequency: frequency}.CashflowTimes()
}

// Swap is a fixed-for-floating interest rate swap on one curve.
type Swap struct {
	Notional     float64
	FixedRate    float64
	PaymentTimes []float64
	// Accrual fraction of each fixed period, e.g. 0.5 for semi-annual.
	YearFraction float64
}

func (s Swap) annuity(d Discounter) (annuity, dfn float64, err error) {
	if len(s.PaymentTimes) == 0 {
		glog.Error("Swap: no payment times")
		return 0, 0, fmt.Errorf("%w: swap has no payment times", quant.ErrDomain)
	}
	sum := 0.0
	for _, t := range s.PaymentTimes {
		sum += d.DiscountFactor(t)
	}
	dfn = d.DiscountFactor(s.PaymentTimes[len(s.PaymentTimes)-1])
	return s.YearFraction * sum, dfn, nil
}

// PayerNPV values the swap for the fixed rate payer. The floating leg is
// worth N(DF(0)-DF(Tn)) with DF(0) = 1.
func (s Swap) PayerNPV(d Discounter) (float64, error) {
	annuity, dfn, err := s.annuity(d)
	if err != nil {
		return 0, err
	}
	floatLeg := s.Notional * (1 - dfn)
	fixedLeg := s.Notional * s.FixedRate * annuity
	return floatLeg - fixedLeg, nil
}

func (s Swap) ReceiverNPV(d Discounter) (float64, error) {
	npv, err := s.PayerNPV(d)
	return -npv, err
}

// ParRate is the fixed rate that sets PayerNPV to zero.
func (s Swap) ParRate(d Discounter) (float64, error) {
	annuity, dfn, err := s.annuity(d)
	if err != nil {
		return 0, err
	}
	if annuity == 0 {
		return 0, fmt.Errorf("%w: swap annuity is zero", quant.ErrDomain)
	}
	return (1 - dfn) / annuity, nil
}

// FRA is a forward rate agreement on the simple rate between Start and End,
// settled at End.
type FRA struct {
	Notional float64
	Strike   float64
	Start    float64
	End      float64
}

// Price returns (L-K)*tau*N*DF(End) where L is the curve simple forward.
func (f FRA) Price(c ForwardCurve) (float64, error) {
	if f.End <= f.Start {
		glog.Errorf("FRA.Price: start %v end %v", f.Start, f.End)
		return 0, fmt.Errorf("%w: FRA needs end > start", quant.ErrDomain)
	}
	l, err := c.SimpleForwardRate(f.Start, f.End)
	if err != nil {
		return 0, err
	}
	tau := f.End - f.Start
	return (l - f.Strike) * tau * f.Notional * c.DiscountFactor(f.End), nil
}

// EquityFuturePrice is spot*exp((r-q)T).
func EquityFuturePrice(spot, rate, maturity, dividendYield float64) float64 {
	return spot * math.Exp((rate-dividendYield)*maturity)
}

// RateFutureRate returns the continuous forward rate a rate future on
// [t1, t2] locks in.
func RateFutureRate(c ForwardCurve, t1, t2 float64) (float64, error) {
	return c.ForwardRate(t1, t2)
}

// RateFutureQuote is the exchange quote 100*(1-L) with L the simple forward.
func RateFutureQuote(c ForwardCurve, t1, t2 float64) (float64, error) {
	l, err := c.SimpleForwardRate(t1, t2)
	if err != nil {
		return 0, err
	}
	return 100 * (1 - l), nil
}

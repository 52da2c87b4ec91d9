package instruments

import (
	"time"

	"github.com/meenmo/curvebuild/curve"
)

// CrossCurrencySwap is a cross currency swap with notional exchange at start and end.
// The left leg pays the quoted spread on the left schedule and exchanges notional,
// both discounted on discountLeft; the right leg floats on forecastRight and is
// discounted on discountRight. The quote therefore pins the left discount curve
// against the right currency's funding.
type CrossCurrencySwap struct {
	base
	discountLeft  string
	discountRight string
	forecastRight string
	left          []Period
	right         []Period
}

// NewCrossCurrencySwap builds a cross currency swap from already-normalised curve roles.
func NewCrossCurrencySwap(name, discountLeft, discountRight, forecastRight string, start, end time.Time, convLeft, convRight Convention) *CrossCurrencySwap {
	return &CrossCurrencySwap{
		base:          base{name: name, start: start, end: end},
		discountLeft:  discountLeft,
		discountRight: discountRight,
		forecastRight: forecastRight,
		left:          Schedule(start, end, convLeft),
		right:         Schedule(start, end, convRight),
	}
}

func (x *CrossCurrencySwap) Kind() Kind { return KindCrossCurrencySwap }
func (x *CrossCurrencySwap) Curves() []string {
	return uniqueNames(x.forecastRight, x.discountLeft, x.discountRight)
}

// CalcParRate returns the left-leg spread that values the swap at par. Both legs
// are measured per unit of notional at the start date so forward-starting swaps
// are not scaled by the start discount factor:
//
//	s*A_L/D_L(s) + D_L(e)/D_L(s) - 1 = (floatPV_R + D_R(e) - D_R(s)) / D_R(s)
func (x *CrossCurrencySwap) CalcParRate(cm *curve.CurveMap) (float64, error) {
	dl, err := x.curve(cm, x.discountLeft)
	if err != nil {
		return 0, err
	}
	dr, err := x.curve(cm, x.discountRight)
	if err != nil {
		return 0, err
	}
	fr, err := x.curve(cm, x.forecastRight)
	if err != nil {
		return 0, err
	}
	drStart, dlStart := dr.DF(x.start), dl.DF(x.start)
	a := annuity(dl, x.left) / dlStart
	if a == 0 {
		return x.checkRate(nanRate)
	}
	pvRight := (floatLegPV(fr, dr, x.right) + dr.DF(x.end) - drStart) / drStart
	notionalLeft := dl.DF(x.end)/dlStart - 1.0
	return x.checkRate((pvRight - notionalLeft) / a)
}

func (x *CrossCurrencySwap) ParRateFromPrice(price float64) (float64, error) {
	return x.rateFromPrice(quoteBasisPoints, price)
}

func (x *CrossCurrencySwap) PriceFromParRate(rate float64) (float64, error) {
	return x.priceFromRate(quoteBasisPoints, rate)
}

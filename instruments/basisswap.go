package instruments

import (
	"time"

	"github.com/meenmo/curvebuild/curve"
)

// BasisSwap exchanges two floating indices in one currency. The quoted spread in
// basis points is paid on the left leg.
type BasisSwap struct {
	base
	forecastLeft  string
	forecastRight string
	discount      string
	left          []Period
	right         []Period
}

// NewBasisSwap builds a single-currency basis swap discounted on discount.
func NewBasisSwap(name, forecastLeft, forecastRight, discount string, start, end time.Time, convLeft, convRight Convention) *BasisSwap {
	return &BasisSwap{
		base:          base{name: name, start: start, end: end},
		forecastLeft:  forecastLeft,
		forecastRight: forecastRight,
		discount:      discount,
		left:          Schedule(start, end, convLeft),
		right:         Schedule(start, end, convRight),
	}
}

func (b *BasisSwap) Kind() Kind { return KindBasisSwap }
func (b *BasisSwap) Curves() []string {
	return uniqueNames(b.forecastLeft, b.forecastRight, b.discount)
}

// CalcParRate returns the left-leg spread equating both legs.
func (b *BasisSwap) CalcParRate(cm *curve.CurveMap) (float64, error) {
	fl, err := b.curve(cm, b.forecastLeft)
	if err != nil {
		return 0, err
	}
	fr, err := b.curve(cm, b.forecastRight)
	if err != nil {
		return 0, err
	}
	dc, err := b.curve(cm, b.discount)
	if err != nil {
		return 0, err
	}
	a := annuity(dc, b.left)
	if a == 0 {
		return b.checkRate(nanRate)
	}
	return b.checkRate((floatLegPV(fr, dc, b.right) - floatLegPV(fl, dc, b.left)) / a)
}

func (b *BasisSwap) ParRateFromPrice(price float64) (float64, error) {
	return b.rateFromPrice(quoteBasisPoints, price)
}

func (b *BasisSwap) PriceFromParRate(rate float64) (float64, error) {
	return b.priceFromRate(quoteBasisPoints, rate)
}

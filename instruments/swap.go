package instruments

import (
	"time"

	"github.com/meenmo/curvebuild/curve"
)

// Swap is a fixed-versus-floating interest rate swap quoted by its par fixed rate in percent.
type Swap struct {
	base
	forecast string
	discount string
	fixed    []Period
	floating []Period
}

// NewSwap builds a swap whose fixed leg follows fixedConv and floating leg follows floatConv.
func NewSwap(name, forecast, discount string, start, end time.Time, fixedConv, floatConv Convention) *Swap {
	return &Swap{
		base:     base{name: name, start: start, end: end},
		forecast: forecast,
		discount: discount,
		fixed:    Schedule(start, end, fixedConv),
		floating: Schedule(start, end, floatConv),
	}
}

func (s *Swap) Kind() Kind       { return KindSwap }
func (s *Swap) Curves() []string { return uniqueNames(s.forecast, s.discount) }

// FixedLeg returns the fixed leg schedule.
func (s *Swap) FixedLeg() []Period { return append([]Period(nil), s.fixed...) }

// FloatingLeg returns the floating leg schedule.
func (s *Swap) FloatingLeg() []Period { return append([]Period(nil), s.floating...) }

func (s *Swap) CalcParRate(cm *curve.CurveMap) (float64, error) {
	fc, err := s.curve(cm, s.forecast)
	if err != nil {
		return 0, err
	}
	dc, err := s.curve(cm, s.discount)
	if err != nil {
		return 0, err
	}
	a := annuity(dc, s.fixed)
	if a == 0 {
		return s.checkRate(nanRate)
	}
	return s.checkRate(floatLegPV(fc, dc, s.floating) / a)
}

func (s *Swap) ParRateFromPrice(price float64) (float64, error) {
	return s.rateFromPrice(quotePercent, price)
}

func (s *Swap) PriceFromParRate(rate float64) (float64, error) {
	return s.priceFromRate(quotePercent, rate)
}

package instruments

import (
	"time"

	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/utils"
)

// Future is a short-rate futures contract quoted as 100 minus the rate in percent.
// No convexity adjustment is applied.
type Future struct {
	base
	forecast string
	accrual  float64
}

// NewFuture builds a future referencing the forward between start and end.
func NewFuture(name, forecast string, start, end time.Time, conv Convention) *Future {
	return &Future{
		base:     base{name: name, start: start, end: end},
		forecast: forecast,
		accrual:  utils.YearFraction(start, end, conv.DayCount),
	}
}

func (f *Future) Kind() Kind       { return KindFuture }
func (f *Future) Curves() []string { return []string{f.forecast} }

func (f *Future) CalcParRate(cm *curve.CurveMap) (float64, error) {
	fc, err := f.curve(cm, f.forecast)
	if err != nil {
		return 0, err
	}
	if f.accrual == 0 {
		return f.checkRate(nanRate)
	}
	return f.checkRate((fc.DF(f.start)/fc.DF(f.end) - 1.0) / f.accrual)
}

func (f *Future) ParRateFromPrice(price float64) (float64, error) {
	return f.rateFromPrice(quoteFuture, price)
}

func (f *Future) PriceFromParRate(rate float64) (float64, error) {
	return f.priceFromRate(quoteFuture, rate)
}

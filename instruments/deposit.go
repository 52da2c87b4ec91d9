package instruments

import (
	"time"

	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/utils"
)

// Deposit is a single-period money-market deposit quoted as a percent rate.
type Deposit struct {
	base
	forecast string
	accrual  float64
}

// NewDeposit builds a deposit accruing from start to end on the forecast curve.
func NewDeposit(name, forecast string, start, end time.Time, conv Convention) *Deposit {
	return &Deposit{
		base:     base{name: name, start: start, end: end},
		forecast: forecast,
		accrual:  utils.YearFraction(start, end, conv.DayCount),
	}
}

func (d *Deposit) Kind() Kind       { return KindDeposit }
func (d *Deposit) Curves() []string { return []string{d.forecast} }

func (d *Deposit) CalcParRate(cm *curve.CurveMap) (float64, error) {
	fc, err := d.curve(cm, d.forecast)
	if err != nil {
		return 0, err
	}
	if d.accrual == 0 {
		return d.checkRate(nanRate)
	}
	return d.checkRate((fc.DF(d.start)/fc.DF(d.end) - 1.0) / d.accrual)
}

func (d *Deposit) ParRateFromPrice(price float64) (float64, error) {
	return d.rateFromPrice(quotePercent, price)
}

func (d *Deposit) PriceFromParRate(rate float64) (float64, error) {
	return d.priceFromRate(quotePercent, rate)
}

package instruments

import (
	"time"

	"github.com/meenmo/curvebuild/curve"
)

// TermDeposit is a deposit rolled over a schedule with forecasting separate from discounting.
// With a single-period convention it prices like a discounted deposit.
type TermDeposit struct {
	base
	forecast string
	discount string
	periods  []Period
}

// NewTermDeposit builds a term deposit whose fixed and floating legs share one schedule.
func NewTermDeposit(name, forecast, discount string, start, end time.Time, conv Convention) *TermDeposit {
	return &TermDeposit{
		base:     base{name: name, start: start, end: end},
		forecast: forecast,
		discount: discount,
		periods:  Schedule(start, end, conv),
	}
}

func (t *TermDeposit) Kind() Kind       { return KindTermDeposit }
func (t *TermDeposit) Curves() []string { return uniqueNames(t.forecast, t.discount) }

func (t *TermDeposit) CalcParRate(cm *curve.CurveMap) (float64, error) {
	fc, err := t.curve(cm, t.forecast)
	if err != nil {
		return 0, err
	}
	dc, err := t.curve(cm, t.discount)
	if err != nil {
		return 0, err
	}
	a := annuity(dc, t.periods)
	if a == 0 {
		return t.checkRate(nanRate)
	}
	return t.checkRate(floatLegPV(fc, dc, t.periods) / a)
}

func (t *TermDeposit) ParRateFromPrice(price float64) (float64, error) {
	return t.rateFromPrice(quotePercent, price)
}

func (t *TermDeposit) PriceFromParRate(rate float64) (float64, error) {
	return t.priceFromRate(quotePercent, rate)
}

// Package instruments implements the pricing instruments a curve is calibrated to.
//
// Every instrument exposes the same capability: its pillar date, its par rate
// under a CurveMap, and conversions between par rate and quoted price. The
// calibration engine never branches on instrument kind.
package instruments

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/curvebuild/curve"
)

// Kind enumerates the supported instrument variants.
type Kind string

const (
	KindDeposit           Kind = "Deposit"
	KindFuture            Kind = "Future"
	KindSwap              Kind = "Swap"
	KindBasisSwap         Kind = "BasisSwap"
	KindCrossCurrencySwap Kind = "CrossCurrencySwap"
	KindTermDeposit       Kind = "TermDeposit"
)

// Instrument is the capability consumed by the curve builder.
type Instrument interface {
	Name() string
	Kind() Kind
	StartDate() time.Time
	PillarDate() time.Time
	// Curves lists the curve names the instrument reads, forecast curves first.
	Curves() []string
	CalcParRate(cm *curve.CurveMap) (float64, error)
	ParRateFromPrice(price float64) (float64, error)
	PriceFromParRate(rate float64) (float64, error)
}

type base struct {
	name  string
	start time.Time
	end   time.Time
}

func (b *base) Name() string          { return b.name }
func (b *base) StartDate() time.Time  { return b.start }
func (b *base) PillarDate() time.Time { return b.end }

func (b *base) curve(cm *curve.CurveMap, name string) (*curve.Curve, error) {
	c, err := cm.Curve(name)
	if err != nil {
		return nil, fmt.Errorf("%w: instrument %s: %w", curve.ErrConfiguration, b.name, err)
	}
	return c, nil
}

func (b *base) checkRate(rate float64) (float64, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: instrument %s: par rate is not finite", curve.ErrNumericalDomain, b.name)
	}
	return rate, nil
}

func (b *base) checkInput(label string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: instrument %s: %s %v is not finite", curve.ErrNumericalDomain, b.name, label, v)
	}
	return nil
}

// quote conversions: percent (deposits, swaps), futures (100 - rate), basis points (spreads)
type quoteStyle int

const (
	quotePercent quoteStyle = iota
	quoteFuture
	quoteBasisPoints
)

func (b *base) rateFromPrice(style quoteStyle, price float64) (float64, error) {
	if err := b.checkInput("price", price); err != nil {
		return 0, err
	}
	switch style {
	case quoteFuture:
		return (100.0 - price) / 100.0, nil
	case quoteBasisPoints:
		return price / 10000.0, nil
	default:
		return price / 100.0, nil
	}
}

func (b *base) priceFromRate(style quoteStyle, rate float64) (float64, error) {
	if err := b.checkInput("rate", rate); err != nil {
		return 0, err
	}
	switch style {
	case quoteFuture:
		return 100.0 * (1.0 - rate), nil
	case quoteBasisPoints:
		return rate * 10000.0, nil
	default:
		return rate * 100.0, nil
	}
}

// floatLegPV is the value of a unit-notional floating leg projected on fc and discounted on dc.
func floatLegPV(fc, dc *curve.Curve, periods []Period) float64 {
	pv := 0.0
	for _, p := range periods {
		pv += (fc.DF(p.Start)/fc.DF(p.End) - 1.0) * dc.DF(p.End)
	}
	return pv
}

// annuity is the PV of one unit of rate paid on every period.
func annuity(dc *curve.Curve, periods []Period) float64 {
	a := 0.0
	for _, p := range periods {
		a += p.Accrual * dc.DF(p.End)
	}
	return a
}

// nanRate marks a degenerate accrual; checkRate turns it into a numerical-domain error.
var nanRate = math.NaN()

func uniqueNames(names ...string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

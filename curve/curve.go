package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/curvebuild/utils"
)

// TimeBasis is the day count of the curve time axis, used for interpolation
// and zero rates regardless of currency.
const TimeBasis = utils.Act365F

// Curve is one named discount curve. Its discount factors at the pillar dates
// are the degrees of freedom solved for by calibration.
type Curve struct {
	name     string
	evalDate time.Time
	pillars  []time.Time
	times    []float64
	dfs      []float64
	mode     InterpolationMode
	ip       *interpolator
}

// NewCurve validates the pillar layout and builds a curve with the given discount factors.
//
// Pillars must be non-empty, strictly increasing and after evalDate; dfs must have the same length.
func NewCurve(name string, evalDate time.Time, pillars []time.Time, dfs []float64, mode InterpolationMode) (*Curve, error) {
	if len(pillars) == 0 {
		return nil, fmt.Errorf("%w: curve %s has no pillars", ErrConfiguration, name)
	}
	if len(pillars) != len(dfs) {
		return nil, fmt.Errorf("%w: curve %s has %d pillars but %d discount factors", ErrConfiguration, name, len(pillars), len(dfs))
	}
	if _, err := ParseInterpolationMode(string(mode)); err != nil {
		return nil, fmt.Errorf("curve %s: %w", name, err)
	}

	c := &Curve{
		name:     name,
		evalDate: evalDate,
		pillars:  append([]time.Time(nil), pillars...),
		times:    make([]float64, len(pillars)),
		mode:     mode,
	}
	for i, p := range c.pillars {
		if !p.After(evalDate) {
			return nil, fmt.Errorf("%w: curve %s pillar %s is not after evaluation date %s",
				ErrConfiguration, name, p.Format(utils.DateLayout), evalDate.Format(utils.DateLayout))
		}
		if i > 0 && !p.After(c.pillars[i-1]) {
			return nil, fmt.Errorf("%w: curve %s pillars are not strictly increasing at %s",
				ErrConfiguration, name, p.Format(utils.DateLayout))
		}
		c.times[i] = utils.YearFraction(evalDate, p, TimeBasis)
	}
	if err := c.SetDOFs(dfs); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFlatCurve seeds every pillar with exp(-rate * days/365), a flat continuously-compounded guess.
func NewFlatCurve(name string, evalDate time.Time, pillars []time.Time, rate float64, mode InterpolationMode) (*Curve, error) {
	dfs := make([]float64, len(pillars))
	for i, p := range pillars {
		dfs[i] = math.Exp(-rate * utils.Days(evalDate, p) / 365.0)
	}
	return NewCurve(name, evalDate, pillars, dfs, mode)
}

// Name returns the curve name.
func (c *Curve) Name() string { return c.name }

// EvalDate returns the curve's evaluation date.
func (c *Curve) EvalDate() time.Time { return c.evalDate }

// Mode returns the interpolation mode.
func (c *Curve) Mode() InterpolationMode { return c.mode }

// Pillars returns a copy of the pillar dates.
func (c *Curve) Pillars() []time.Time {
	return append([]time.Time(nil), c.pillars...)
}

// Len returns the number of pillars (degrees of freedom).
func (c *Curve) Len() int { return len(c.pillars) }

// DOFs returns a copy of the pillar discount factors.
func (c *Curve) DOFs() []float64 {
	return append([]float64(nil), c.dfs...)
}

// SetDOFs replaces the pillar discount factors and refits the interpolator.
func (c *Curve) SetDOFs(dfs []float64) error {
	if len(dfs) != len(c.pillars) {
		return fmt.Errorf("%w: curve %s expects %d dofs, got %d", ErrConfiguration, c.name, len(c.pillars), len(dfs))
	}
	ip, err := newInterpolator(c.mode, c.times, dfs)
	if err != nil {
		return fmt.Errorf("curve %s: %w", c.name, err)
	}
	if c.dfs == nil {
		c.dfs = make([]float64, len(dfs))
	}
	copy(c.dfs, dfs)
	c.ip = ip
	return nil
}

// Time returns the curve time (ACT/365F years from the evaluation date) of t.
func (c *Curve) Time(t time.Time) float64 {
	return utils.YearFraction(c.evalDate, t, TimeBasis)
}

// DF returns the discount factor at t. Dates on or before the evaluation date discount at 1.
func (c *Curve) DF(t time.Time) float64 {
	x := c.Time(t)
	if x <= 0 {
		return 1.0
	}
	return math.Exp(c.ip.logDiscount(x))
}

// ZeroRateAt returns the continuously-compounded zero rate (decimal) at t.
func (c *Curve) ZeroRateAt(t time.Time) float64 {
	x := c.Time(t)
	if x <= 0 {
		return 0
	}
	return -c.ip.logDiscount(x) / x
}

// ForwardRate returns the simple forward rate between start and end under dayCount.
func (c *Curve) ForwardRate(start, end time.Time, dayCount string) float64 {
	alpha := utils.YearFraction(start, end, dayCount)
	if alpha == 0 {
		return 0
	}
	return (c.DF(start)/c.DF(end) - 1.0) / alpha
}

// Clone returns an independent copy of the curve.
func (c *Curve) Clone() *Curve {
	cp := &Curve{
		name:     c.name,
		evalDate: c.evalDate,
		pillars:  append([]time.Time(nil), c.pillars...),
		times:    append([]float64(nil), c.times...),
		mode:     c.mode,
		dfs:      append([]float64(nil), c.dfs...),
	}
	// same values already fitted once, so a refit cannot fail
	ip, err := newInterpolator(cp.mode, cp.times, cp.dfs)
	if err != nil {
		panic(fmt.Sprintf("Clone: refit of %s failed: %v", c.name, err))
	}
	cp.ip = ip
	return cp
}

package curve

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// InterpolationMode selects how discount factors between pillars are obtained.
type InterpolationMode string

const (
	// LinearLogDF is piecewise-linear in log discount factor (flat forwards).
	LinearLogDF InterpolationMode = "LINEAR_LOGDF"
	// LinearCCRate is piecewise-linear in the continuously-compounded zero rate.
	LinearCCRate InterpolationMode = "LINEAR_CCRATE"
	// CubicLogDF is a natural cubic spline in log discount factor.
	CubicLogDF InterpolationMode = "CUBIC_LOGDF"
	// MonotoneLogDF is a Fritsch-Butland monotone cubic in log discount factor.
	MonotoneLogDF InterpolationMode = "MONOTONE_LOGDF"
)

// ParseInterpolationMode resolves a mode name. Empty means LINEAR_LOGDF.
func ParseInterpolationMode(s string) (InterpolationMode, error) {
	m := InterpolationMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case "":
		return LinearLogDF, nil
	case LinearLogDF, LinearCCRate, CubicLogDF, MonotoneLogDF:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown interpolation mode %q", ErrConfiguration, s)
	}
}

// MinDiscountFactor floors discount factors before taking logs so that probing
// the zero bound yields large finite rates instead of infinities.
const MinDiscountFactor = 1e-9

// interpolator evaluates log DF at a curve time. Times are year fractions from
// the evaluation date, nodes include the anchor (0, 0).
type interpolator struct {
	mode InterpolationMode
	xs   []float64
	ys   []float64 // log DF, or zero rate for LinearCCRate
	pred interp.Predictor
}

func newInterpolator(mode InterpolationMode, times, dfs []float64) (*interpolator, error) {
	ip := &interpolator{mode: mode}
	switch mode {
	case LinearCCRate:
		ip.xs = make([]float64, len(times))
		ip.ys = make([]float64, len(times))
		for i, t := range times {
			ip.xs[i] = t
			ip.ys[i] = -logDF(dfs[i]) / t
		}
	default:
		ip.xs = make([]float64, 0, len(times)+1)
		ip.ys = make([]float64, 0, len(times)+1)
		ip.xs = append(ip.xs, 0)
		ip.ys = append(ip.ys, 0)
		for i, t := range times {
			ip.xs = append(ip.xs, t)
			ip.ys = append(ip.ys, logDF(dfs[i]))
		}
	}

	if len(ip.xs) < 2 {
		// single zero-rate node: flat rate, no predictor needed
		return ip, nil
	}

	var fp interp.FittablePredictor
	switch {
	case mode == CubicLogDF && len(ip.xs) >= 3:
		fp = &interp.NaturalCubic{}
	case mode == MonotoneLogDF && len(ip.xs) >= 3:
		fp = &interp.FritschButland{}
	default:
		fp = &interp.PiecewiseLinear{}
	}
	if err := fp.Fit(ip.xs, ip.ys); err != nil {
		return nil, fmt.Errorf("%w: %s fit: %v", ErrNumericalDomain, mode, err)
	}
	ip.pred = fp
	return ip, nil
}

// logDiscount returns log DF at curve time t (t > 0).
func (ip *interpolator) logDiscount(t float64) float64 {
	n := len(ip.xs)
	if ip.mode == LinearCCRate {
		var z float64
		switch {
		case n == 1 || t <= ip.xs[0]:
			z = ip.ys[0]
		case t >= ip.xs[n-1]:
			z = ip.ys[n-1]
		default:
			z = ip.pred.Predict(t)
		}
		return -z * t
	}

	if t > ip.xs[n-1] {
		// flat forward beyond the last pillar
		x1, x2 := ip.xs[n-2], ip.xs[n-1]
		y1, y2 := ip.ys[n-2], ip.ys[n-1]
		return y2 + (y2-y1)/(x2-x1)*(t-x2)
	}
	return ip.pred.Predict(t)
}

func logDF(df float64) float64 {
	if df < MinDiscountFactor {
		df = MinDiscountFactor
	}
	return math.Log(df)
}

package instruments

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/utils"
)

// NA marks an unused curve or convention role.
const NA = "na"

// Spec is the tabular definition of one instrument, one row of an instrument sheet.
type Spec struct {
	Name            string `mapstructure:"name" yaml:"name" json:"name"`
	Type            string `mapstructure:"type" yaml:"type" json:"type"`
	Curve           string `mapstructure:"curve" yaml:"curve" json:"curve"`
	ForecastLeft    string `mapstructure:"forecast_left" yaml:"forecast_left" json:"forecast_left"`
	ForecastRight   string `mapstructure:"forecast_right" yaml:"forecast_right" json:"forecast_right"`
	DiscountLeft    string `mapstructure:"discount_left" yaml:"discount_left" json:"discount_left"`
	DiscountRight   string `mapstructure:"discount_right" yaml:"discount_right" json:"discount_right"`
	ConventionLeft  string `mapstructure:"convention_left" yaml:"convention_left" json:"convention_left"`
	ConventionRight string `mapstructure:"convention_right" yaml:"convention_right" json:"convention_right"`
	Start           string `mapstructure:"start" yaml:"start" json:"start"`
	Length          string `mapstructure:"length" yaml:"length" json:"length"`
	Enabled         string `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// IsEnabled reports whether the row is active. Empty means enabled; anything other than Y or N is an error.
func (s Spec) IsEnabled() (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s.Enabled)) {
	case "", "Y":
		return true, nil
	case "N":
		return false, nil
	default:
		return false, fmt.Errorf("%w: instrument %s: enabled must be Y or N, got %q", curve.ErrConfiguration, s.Name, s.Enabled)
	}
}

func isNA(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, NA)
}

// New builds the instrument described by spec, resolving its dates against evalDate.
func New(spec Spec, evalDate time.Time) (Instrument, error) {
	inst, err := build(spec, evalDate)
	if err != nil {
		return nil, fmt.Errorf("error processing instrument %s: %w", spec.Name, err)
	}
	return inst, nil
}

func build(s Spec, evalDate time.Time) (Instrument, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("%w: instrument name is required", curve.ErrConfiguration)
	}
	kind := Kind(strings.TrimSpace(s.Type))

	// curve role rules per kind: forecast left, forecast right, discount left, discount right
	switch kind {
	case KindDeposit, KindFuture:
		if err := roles(s, true, false, false, false); err != nil {
			return nil, err
		}
	case KindSwap, KindTermDeposit:
		if err := roles(s, true, false, true, false); err != nil {
			return nil, err
		}
	case KindBasisSwap:
		if err := roles(s, true, true, true, false); err != nil {
			return nil, err
		}
	case KindCrossCurrencySwap:
		if isNA(s.DiscountLeft) || isNA(s.DiscountRight) {
			return nil, fmt.Errorf("%w: cross currency swap needs both discount curves", curve.ErrConfiguration)
		}
		if isNA(s.ForecastLeft) == isNA(s.ForecastRight) {
			return nil, fmt.Errorf("%w: cross currency swap needs exactly one forecast curve", curve.ErrConfiguration)
		}
	default:
		return nil, fmt.Errorf("%w: unknown instrument type %q", curve.ErrConfiguration, s.Type)
	}

	convL, err := LookupConvention(strings.TrimSpace(s.ConventionLeft))
	if err != nil {
		return nil, err
	}
	start, err := resolveStart(s.Start, evalDate, convL)
	if err != nil {
		return nil, err
	}
	length, err := utils.ParseTenor(s.Length)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", curve.ErrConfiguration, err)
	}
	if length.N == 0 {
		return nil, fmt.Errorf("%w: zero length %q", curve.ErrConfiguration, s.Length)
	}
	end := convL.Roll.Apply(convL.Calendar, length.AddTo(start))
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end %s is not after start %s", curve.ErrConfiguration,
			end.Format(utils.DateLayout), start.Format(utils.DateLayout))
	}
	if !end.After(evalDate) {
		return nil, fmt.Errorf("%w: pillar %s is not after evaluation date", curve.ErrConfiguration, end.Format(utils.DateLayout))
	}

	name := strings.TrimSpace(s.Name)
	fl, fr := strings.TrimSpace(s.ForecastLeft), strings.TrimSpace(s.ForecastRight)
	dl, dr := strings.TrimSpace(s.DiscountLeft), strings.TrimSpace(s.DiscountRight)

	switch kind {
	case KindDeposit:
		return NewDeposit(name, fl, start, end, convL), nil
	case KindFuture:
		return NewFuture(name, fl, start, end, convL), nil
	case KindTermDeposit:
		return NewTermDeposit(name, fl, dl, start, end, convL), nil
	}

	convR, err := LookupConvention(strings.TrimSpace(s.ConventionRight))
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSwap:
		return NewSwap(name, fl, dl, start, end, convL, convR), nil
	case KindBasisSwap:
		return NewBasisSwap(name, fl, fr, dl, start, end, convL, convR), nil
	default:
		// the forecast leg is always carried on the right
		if isNA(fr) {
			return NewCrossCurrencySwap(name, dr, dl, fl, start, end, convR, convL), nil
		}
		return NewCrossCurrencySwap(name, dl, dr, fr, start, end, convL, convR), nil
	}
}

func roles(s Spec, fl, fr, dl, dr bool) error {
	check := func(role, value string, want bool) error {
		if want && isNA(value) {
			return fmt.Errorf("%w: %s %s requires %s", curve.ErrConfiguration, s.Type, s.Name, role)
		}
		if !want && !isNA(value) {
			return fmt.Errorf("%w: %s %s must not set %s (got %q)", curve.ErrConfiguration, s.Type, s.Name, role, value)
		}
		return nil
	}
	for _, c := range []struct {
		role  string
		value string
		want  bool
	}{
		{"forecast_left", s.ForecastLeft, fl},
		{"forecast_right", s.ForecastRight, fr},
		{"discount_left", s.DiscountLeft, dl},
		{"discount_right", s.DiscountRight, dr},
	} {
		if err := check(c.role, c.value, c.want); err != nil {
			return err
		}
	}
	return nil
}

// resolveStart accepts "E" or empty for the evaluation date, a tenor offset from it,
// or an explicit YYYY-MM-DD date.
func resolveStart(raw string, evalDate time.Time, conv Convention) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "E") {
		return evalDate, nil
	}
	if t, err := utils.ParseDate(raw); err == nil {
		return t, nil
	}
	tn, err := utils.ParseTenor(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start %q is neither E, a tenor nor a date", curve.ErrConfiguration, raw)
	}
	return conv.Roll.Apply(conv.Calendar, tn.AddTo(evalDate)), nil
}

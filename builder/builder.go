// Package builder calibrates a set of curves jointly to market prices.
//
// A CurveBuilder owns the curve templates and their instruments. BuildCurves
// seeds a CurveMap with a flat guess, solves every discount factor at once with
// bounded least squares, and reports the finite-difference sensitivity of each
// instrument residual to each degree of freedom.
package builder

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/curvebuild/config"
	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/instruments"
	"github.com/meenmo/curvebuild/utils"
)

// CurveTemplate is a named group of instruments that build one curve.
type CurveTemplate struct {
	Name          string
	Interpolation curve.InterpolationMode
	Instruments   []instruments.Instrument
}

// Params configures a CurveBuilder.
type Params struct {
	EvalDate  time.Time
	Templates []CurveTemplate
	// Solver fields left at zero take their config.DefaultSolver values.
	Solver config.SolverConfig
	// Progress is optional.
	Progress ProgressMonitor
	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// CurveBuilder is immutable after New and safe for concurrent BuildCurves calls,
// provided Progress is.
type CurveBuilder struct {
	evalDate  time.Time
	templates []CurveTemplate
	all       []instruments.Instrument
	positions map[string]int
	curveOf   map[string]string
	solver    config.SolverConfig
	progress  ProgressMonitor
	log       logrus.FieldLogger
}

// New validates the templates and indexes their instruments in registration order.
func New(p Params) (*CurveBuilder, error) {
	if len(p.Templates) == 0 {
		return nil, fmt.Errorf("%w: no curve templates", curve.ErrConfiguration)
	}
	b := &CurveBuilder{
		evalDate:  p.EvalDate,
		positions: make(map[string]int),
		curveOf:   make(map[string]string),
		solver:    p.Solver.WithDefaults(),
		progress:  p.Progress,
		log:       p.Logger,
	}
	if err := b.solver.Validate(); err != nil {
		return nil, err
	}
	if b.log == nil {
		b.log = logrus.StandardLogger()
	}

	seen := make(map[string]bool, len(p.Templates))
	for _, t := range p.Templates {
		if seen[t.Name] {
			return nil, fmt.Errorf("%w: duplicate curve template %s", curve.ErrConfiguration, t.Name)
		}
		seen[t.Name] = true
		mode, err := curve.ParseInterpolationMode(string(t.Interpolation))
		if err != nil {
			return nil, fmt.Errorf("curve template %s: %w", t.Name, err)
		}
		if len(t.Instruments) == 0 {
			return nil, fmt.Errorf("%w: no instruments found for curve template %s", curve.ErrConfiguration, t.Name)
		}
		tmpl := CurveTemplate{Name: t.Name, Interpolation: mode, Instruments: append([]instruments.Instrument(nil), t.Instruments...)}
		for _, inst := range tmpl.Instruments {
			if _, dup := b.positions[inst.Name()]; dup {
				return nil, fmt.Errorf("%w: duplicate instrument %s", curve.ErrConfiguration, inst.Name())
			}
			if !inst.PillarDate().After(p.EvalDate) {
				return nil, fmt.Errorf("%w: instrument %s matures on %s, not after evaluation date %s", curve.ErrConfiguration,
					inst.Name(), inst.PillarDate().Format(utils.DateLayout), p.EvalDate.Format(utils.DateLayout))
			}
			b.positions[inst.Name()] = len(b.all)
			b.curveOf[inst.Name()] = t.Name
			b.all = append(b.all, inst)
		}
		b.templates = append(b.templates, tmpl)
	}
	return b, nil
}

// FromConfig builds templates from the configured curve and instrument tables.
// Curves keep their configured order and instruments their order within each curve;
// disabled instruments are skipped.
func FromConfig(cfg *config.Config, evalDate time.Time, progress ProgressMonitor, log logrus.FieldLogger) (*CurveBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	templates := make([]CurveTemplate, 0, len(cfg.Curves))
	for _, cc := range cfg.Curves {
		mode, err := curve.ParseInterpolationMode(cc.Interpolation)
		if err != nil {
			return nil, fmt.Errorf("curve %s: %w", cc.Name, err)
		}
		t := CurveTemplate{Name: cc.Name, Interpolation: mode}
		for _, spec := range cfg.Instruments {
			if spec.Curve != cc.Name {
				continue
			}
			enabled, err := spec.IsEnabled()
			if err != nil {
				return nil, err
			}
			if !enabled {
				continue
			}
			inst, err := instruments.New(spec, evalDate)
			if err != nil {
				return nil, err
			}
			t.Instruments = append(t.Instruments, inst)
		}
		templates = append(templates, t)
	}
	return New(Params{
		EvalDate:  evalDate,
		Templates: templates,
		Solver:    cfg.Solver,
		Progress:  progress,
		Logger:    log,
	})
}

// EvalDate returns the evaluation date every curve is built on.
func (b *CurveBuilder) EvalDate() time.Time { return b.evalDate }

// CurveNames returns curve names in registration order.
func (b *CurveBuilder) CurveNames() []string {
	out := make([]string, len(b.templates))
	for i, t := range b.templates {
		out[i] = t.Name
	}
	return out
}

// Templates returns the curve templates in registration order.
func (b *CurveBuilder) Templates() []CurveTemplate {
	return append([]CurveTemplate(nil), b.templates...)
}

// Instruments returns every instrument in registration order, the column order of the Jacobian.
func (b *CurveBuilder) Instruments() []instruments.Instrument {
	return append([]instruments.Instrument(nil), b.all...)
}

// InstrumentByName returns a registered instrument.
func (b *CurveBuilder) InstrumentByName(name string) (instruments.Instrument, error) {
	pos, ok := b.positions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstrumentNotFound, name)
	}
	return b.all[pos], nil
}

// CurveOf returns the curve template an instrument is registered to.
func (b *CurveBuilder) CurveOf(name string) (string, bool) {
	c, ok := b.curveOf[name]
	return c, ok
}

// InitialCurveMap seeds every template's deduplicated pillar dates with the flat initial rate.
func (b *CurveBuilder) InitialCurveMap() (*curve.CurveMap, error) {
	cm := curve.NewCurveMap()
	first := 0
	for _, t := range b.templates {
		dates := make([]time.Time, 0, len(t.Instruments))
		for _, inst := range t.Instruments {
			dates = append(dates, inst.PillarDate())
		}
		pillars := utils.UniqueSortedDates(dates)
		if len(pillars) == 0 {
			return nil, fmt.Errorf("%w: curve %s has no pillars", curve.ErrConfiguration, t.Name)
		}
		c, err := curve.NewFlatCurve(t.Name, b.evalDate, pillars, b.solver.InitialRate, t.Interpolation)
		if err != nil {
			return nil, err
		}
		b.log.WithFields(logrus.Fields{
			"curve":     t.Name,
			"first_dof": first,
			"last_dof":  first + len(pillars),
		}).Debug("creating pillars")
		first += len(pillars)
		if err := cm.Add(c); err != nil {
			return nil, err
		}
	}
	return cm, nil
}

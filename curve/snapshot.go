package curve

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meenmo/curvebuild/utils"
)

// Snapshot is the serialisable form of a CurveMap.
type Snapshot struct {
	Curves []CurveSnapshot `yaml:"curves" json:"curves"`
}

// CurveSnapshot is the serialisable form of one curve.
type CurveSnapshot struct {
	Name          string            `yaml:"name" json:"name"`
	EvalDate      string            `yaml:"eval_date" json:"eval_date"`
	Interpolation InterpolationMode `yaml:"interpolation" json:"interpolation"`
	Pillars       []PillarSnapshot  `yaml:"pillars" json:"pillars"`
}

// PillarSnapshot is one pillar date and its discount factor.
type PillarSnapshot struct {
	Date string  `yaml:"date" json:"date"`
	DF   float64 `yaml:"df" json:"df"`
}

// Snapshot captures the current state of every curve, in insertion order.
func (m *CurveMap) Snapshot() Snapshot {
	s := Snapshot{Curves: make([]CurveSnapshot, 0, len(m.order))}
	for _, name := range m.order {
		c := m.curves[name]
		cs := CurveSnapshot{
			Name:          name,
			EvalDate:      c.evalDate.Format(utils.DateLayout),
			Interpolation: c.mode,
			Pillars:       make([]PillarSnapshot, len(c.pillars)),
		}
		for i, p := range c.pillars {
			cs.Pillars[i] = PillarSnapshot{Date: p.Format(utils.DateLayout), DF: c.dfs[i]}
		}
		s.Curves = append(s.Curves, cs)
	}
	return s
}

// FromSnapshot rebuilds a CurveMap, validating it as NewCurve does.
func FromSnapshot(s Snapshot) (*CurveMap, error) {
	m := NewCurveMap()
	for _, cs := range s.Curves {
		eval, err := utils.ParseDate(cs.EvalDate)
		if err != nil {
			return nil, fmt.Errorf("%w: curve %s: %v", ErrConfiguration, cs.Name, err)
		}
		mode, err := ParseInterpolationMode(string(cs.Interpolation))
		if err != nil {
			return nil, fmt.Errorf("curve %s: %w", cs.Name, err)
		}
		pillars := make([]time.Time, len(cs.Pillars))
		dfs := make([]float64, len(cs.Pillars))
		for i, p := range cs.Pillars {
			if pillars[i], err = utils.ParseDate(p.Date); err != nil {
				return nil, fmt.Errorf("%w: curve %s: %v", ErrConfiguration, cs.Name, err)
			}
			dfs[i] = p.DF
		}
		c, err := NewCurve(cs.Name, eval, pillars, dfs, mode)
		if err != nil {
			return nil, err
		}
		if err := m.Add(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WriteYAML encodes the snapshot of m.
func (m *CurveMap) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.Snapshot()); err != nil {
		return fmt.Errorf("WriteYAML: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a snapshot written by WriteYAML.
func ReadYAML(r io.Reader) (*CurveMap, error) {
	var s Snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("ReadYAML: %w", err)
	}
	return FromSnapshot(s)
}

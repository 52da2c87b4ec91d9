package curve

import (
	"fmt"
)

// CurveMap is an insertion-ordered collection of curves keyed by name.
//
// Its global degree-of-freedom vector is the concatenation, in insertion order,
// of every curve's pillar discount factors. Vector position is the only
// addressing scheme used when talking to the solver.
type CurveMap struct {
	order  []string
	curves map[string]*Curve
}

// NewCurveMap returns an empty CurveMap.
func NewCurveMap() *CurveMap {
	return &CurveMap{curves: make(map[string]*Curve)}
}

// Add appends a curve. Names must be unique.
func (m *CurveMap) Add(c *Curve) error {
	if c == nil {
		return fmt.Errorf("%w: nil curve", ErrConfiguration)
	}
	if _, ok := m.curves[c.Name()]; ok {
		return fmt.Errorf("%w: duplicate curve %s", ErrConfiguration, c.Name())
	}
	m.order = append(m.order, c.Name())
	m.curves[c.Name()] = c
	return nil
}

// Curve returns the named curve.
func (m *CurveMap) Curve(name string) (*Curve, error) {
	c, ok := m.curves[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCurveNotFound, name)
	}
	return c, nil
}

// Names returns curve names in insertion order.
func (m *CurveMap) Names() []string {
	return append([]string(nil), m.order...)
}

// Len returns the number of curves.
func (m *CurveMap) Len() int { return len(m.order) }

// DOFCount returns the total pillar count across all curves.
func (m *CurveMap) DOFCount() int {
	n := 0
	for _, name := range m.order {
		n += m.curves[name].Len()
	}
	return n
}

// Offset returns the position of the named curve's first DOF in the global vector
// together with its pillar count.
func (m *CurveMap) Offset(name string) (start, count int, err error) {
	for _, n := range m.order {
		c := m.curves[n]
		if n == name {
			return start, c.Len(), nil
		}
		start += c.Len()
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrCurveNotFound, name)
}

// AllDOFs returns the global DOF vector.
func (m *CurveMap) AllDOFs() []float64 {
	out := make([]float64, 0, m.DOFCount())
	for _, name := range m.order {
		out = append(out, m.curves[name].dfs...)
	}
	return out
}

// SetAllDOFs assigns each curve's discount factors from contiguous sub-ranges of v.
// len(v) must equal DOFCount; nothing is written on a length mismatch.
func (m *CurveMap) SetAllDOFs(v []float64) error {
	if n := m.DOFCount(); len(v) != n {
		return fmt.Errorf("%w: dof vector has length %d, curve map has %d pillars", ErrConfiguration, len(v), n)
	}
	pos := 0
	for _, name := range m.order {
		c := m.curves[name]
		if err := c.SetDOFs(v[pos : pos+c.Len()]); err != nil {
			return err
		}
		pos += c.Len()
	}
	return nil
}

// DOFLabel describes one position of the global DOF vector.
type DOFLabel struct {
	Curve  string
	Pillar int
	Date   string
}

// Labels returns one label per global DOF, in vector order.
func (m *CurveMap) Labels() []DOFLabel {
	out := make([]DOFLabel, 0, m.DOFCount())
	for _, name := range m.order {
		for i, p := range m.curves[name].pillars {
			out = append(out, DOFLabel{Curve: name, Pillar: i, Date: p.Format("2006-01-02")})
		}
	}
	return out
}

// Clone returns a deep copy; mutating the clone never affects m.
func (m *CurveMap) Clone() *CurveMap {
	cp := &CurveMap{
		order:  append([]string(nil), m.order...),
		curves: make(map[string]*Curve, len(m.curves)),
	}
	for name, c := range m.curves {
		cp.curves[name] = c.Clone()
	}
	return cp
}

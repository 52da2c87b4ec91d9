package marketdata

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ReadLadderYAML reads a mapping of instrument: price, keeping file order.
func ReadLadderYAML(r io.Reader) (*PriceLadder, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return NewPriceLadder(), nil
		}
		return nil, fmt.Errorf("ReadLadderYAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return NewPriceLadder(), nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("ReadLadderYAML: expected a mapping at line %d", m.Line)
	}

	l := NewPriceLadder()
	for i := 0; i+1 < len(m.Content); i += 2 {
		var price float64
		if err := m.Content[i+1].Decode(&price); err != nil {
			return nil, fmt.Errorf("ReadLadderYAML: instrument %s: %w", m.Content[i].Value, err)
		}
		l.Set(m.Content[i].Value, price)
	}
	return l, nil
}

// WriteYAML writes the ladder as an ordered instrument: price mapping.
func (l *PriceLadder) WriteYAML(w io.Writer) error {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, q := range l.Quotes() {
		var v yaml.Node
		if err := v.Encode(q.Price); err != nil {
			return fmt.Errorf("WriteYAML: %w", err)
		}
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: q.Instrument}, &v)
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("WriteYAML: %w", err)
	}
	return enc.Close()
}

// Package marketdata holds instrument quotes: the ordered PriceLadder and the
// sources that fill it.
package marketdata

import (
	"fmt"
	"regexp"
	"sort"
)

// Quote is one instrument price.
type Quote struct {
	Instrument string  `json:"instrument" yaml:"instrument"`
	Price      float64 `json:"price" yaml:"price"`
}

// PriceLadder maps instrument names to prices and remembers insertion order.
type PriceLadder struct {
	names  []string
	prices map[string]float64
}

// NewPriceLadder returns an empty ladder.
func NewPriceLadder() *PriceLadder {
	return &PriceLadder{prices: make(map[string]float64)}
}

// LadderFromMap builds a ladder from an unordered map, ordering names lexically.
func LadderFromMap(m map[string]float64) *PriceLadder {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	l := NewPriceLadder()
	for _, n := range names {
		l.Set(n, m[n])
	}
	return l
}

// LadderFromQuotes builds a ladder keeping the order of quotes. A repeated
// instrument keeps its first position and its last price.
func LadderFromQuotes(quotes []Quote) *PriceLadder {
	l := NewPriceLadder()
	for _, q := range quotes {
		l.Set(q.Instrument, q.Price)
	}
	return l
}

// Set stores a price. Updating an existing instrument keeps its position.
func (l *PriceLadder) Set(name string, price float64) {
	if _, ok := l.prices[name]; !ok {
		l.names = append(l.names, name)
	}
	l.prices[name] = price
}

// Get returns the price of name.
func (l *PriceLadder) Get(name string) (float64, bool) {
	p, ok := l.prices[name]
	return p, ok
}

// Len returns the number of quotes.
func (l *PriceLadder) Len() int { return len(l.names) }

// InstrumentList returns instrument names in insertion order.
func (l *PriceLadder) InstrumentList() []string {
	return append([]string(nil), l.names...)
}

// Quotes returns the ladder as an ordered slice.
func (l *PriceLadder) Quotes() []Quote {
	out := make([]Quote, len(l.names))
	for i, n := range l.names {
		out[i] = Quote{Instrument: n, Price: l.prices[n]}
	}
	return out
}

// Map returns a copy of the prices keyed by instrument.
func (l *PriceLadder) Map() map[string]float64 {
	out := make(map[string]float64, len(l.prices))
	for k, v := range l.prices {
		out[k] = v
	}
	return out
}

// Sublist returns the quotes whose names match pattern at their start, in ladder order.
func (l *PriceLadder) Sublist(pattern string) (*PriceLadder, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("Sublist: %w", err)
	}
	out := NewPriceLadder()
	for _, n := range l.names {
		if re.MatchString(n) {
			out.Set(n, l.prices[n])
		}
	}
	return out, nil
}

// ParseInstrumentPrices normalises the accepted price inputs (a name->price map,
// a PriceLadder or a quote slice) into a fresh map.
func ParseInstrumentPrices(v any) (map[string]float64, error) {
	switch p := v.(type) {
	case map[string]float64:
		out := make(map[string]float64, len(p))
		for k, x := range p {
			out[k] = x
		}
		return out, nil
	case *PriceLadder:
		if p == nil {
			return nil, fmt.Errorf("ParseInstrumentPrices: nil ladder")
		}
		return p.Map(), nil
	case []Quote:
		return LadderFromQuotes(p).Map(), nil
	default:
		return nil, fmt.Errorf("ParseInstrumentPrices: unsupported price container %T", v)
	}
}

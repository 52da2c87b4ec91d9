package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// QuoteSource supplies the price ladder observed on a curve date.
type QuoteSource interface {
	LoadLadder(ctx context.Context, date time.Time) (*PriceLadder, error)
}

// ErrNoQuotes is returned when a source has nothing for the requested date.
var ErrNoQuotes = errors.New("no quotes")

// MapQuoteSource is a static in-memory source keyed by YYYY-MM-DD, for development and tests.
type MapQuoteSource struct {
	ladders map[string]*PriceLadder
}

func NewMapQuoteSource(ladders map[string]*PriceLadder) *MapQuoteSource {
	return &MapQuoteSource{ladders: ladders}
}

func (m *MapQuoteSource) LoadLadder(_ context.Context, date time.Time) (*PriceLadder, error) {
	key := date.Format("2006-01-02")
	l, ok := m.ladders[key]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoQuotes, key)
	}
	return l, nil
}

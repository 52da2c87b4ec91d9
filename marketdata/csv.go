package marketdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// CSVHeader is the column layout of ladder files.
var CSVHeader = []string{"Instrument", "Price"}

// WriteCSV writes the ladder as Instrument,Price rows with prices fixed to places decimals.
func (l *PriceLadder) WriteCSV(w io.Writer, places int32) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	for _, q := range l.Quotes() {
		price := decimal.NewFromFloat(q.Price).StringFixed(places)
		if err := cw.Write([]string{q.Instrument, price}); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a ladder written by WriteCSV. The header row is required.
func ReadCSV(r io.Reader) (*PriceLadder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: header: %w", err)
	}
	if !strings.EqualFold(header[0], CSVHeader[0]) || !strings.EqualFold(header[1], CSVHeader[1]) {
		return nil, fmt.Errorf("ReadCSV: unexpected header %v", header)
	}

	l := NewPriceLadder()
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: %w", err)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: instrument %s: %w", rec[0], err)
		}
		l.Set(strings.TrimSpace(rec[0]), d.InexactFloat64())
	}
	return l, nil
}

package builder

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/instruments"
	"github.com/meenmo/curvebuild/marketdata"
	"github.com/meenmo/curvebuild/utils"
)

// Reprice returns each instrument's price under cm, in curve-then-instrument registration order.
func (b *CurveBuilder) Reprice(cm *curve.CurveMap) (*marketdata.PriceLadder, error) {
	out := marketdata.NewPriceLadder()
	for _, t := range b.templates {
		for _, inst := range t.Instruments {
			rate, err := inst.CalcParRate(cm)
			if err != nil {
				return nil, err
			}
			price, err := inst.PriceFromParRate(rate)
			if err != nil {
				return nil, err
			}
			out.Set(inst.Name(), price)
		}
	}
	return out, nil
}

// InstrumentRate is the market-implied par rate of a quoted instrument at its pillar.
type InstrumentRate struct {
	Instrument string
	Pillar     time.Time
	Rate       float64
}

// InstrumentRates converts every quote of ladder to a par rate, in ladder order.
func (b *CurveBuilder) InstrumentRates(ladder *marketdata.PriceLadder) ([]InstrumentRate, error) {
	out := make([]InstrumentRate, 0, ladder.Len())
	for _, q := range ladder.Quotes() {
		inst, err := b.InstrumentByName(q.Instrument)
		if err != nil {
			return nil, err
		}
		r, err := inst.ParRateFromPrice(q.Price)
		if err != nil {
			return nil, err
		}
		out = append(out, InstrumentRate{Instrument: q.Instrument, Pillar: inst.PillarDate(), Rate: r})
	}
	return out, nil
}

// InstrumentRow summarises one registered instrument.
type InstrumentRow struct {
	Name   string           `json:"name" yaml:"name"`
	Kind   instruments.Kind `json:"type" yaml:"type"`
	Curve  string           `json:"curve" yaml:"curve"`
	Uses   []string         `json:"uses" yaml:"uses"`
	Start  string           `json:"start" yaml:"start"`
	Pillar string           `json:"pillar" yaml:"pillar"`
}

// InstrumentFrame lists every instrument with its resolved start and pillar dates.
func (b *CurveBuilder) InstrumentFrame() []InstrumentRow {
	rows := make([]InstrumentRow, 0, len(b.all))
	for _, inst := range b.all {
		rows = append(rows, InstrumentRow{
			Name:   inst.Name(),
			Kind:   inst.Kind(),
			Curve:  b.curveOf[inst.Name()],
			Uses:   inst.Curves(),
			Start:  inst.StartDate().Format(utils.DateLayout),
			Pillar: inst.PillarDate().Format(utils.DateLayout),
		})
	}
	return rows
}

// WriteJacobianCSV writes the sensitivity matrix with one row per DOF, labelled
// curve and pillar date, and one column per instrument.
func (o *BuildOutput) WriteJacobianCSV(w io.Writer) error {
	rows, cols := o.Jacobian.Dims()
	labels := o.CurveMap.Labels()
	if rows != len(labels) || cols != len(o.Instruments) {
		return fmt.Errorf("WriteJacobianCSV: matrix is %dx%d for %d dofs and %d instruments", rows, cols, len(labels), len(o.Instruments))
	}
	cw := csv.NewWriter(w)
	header := make([]string, 0, cols+2)
	header = append(header, "curve", "pillar")
	for _, inst := range o.Instruments {
		header = append(header, inst.Name())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("WriteJacobianCSV: %w", err)
	}
	rec := make([]string, cols+2)
	for i := 0; i < rows; i++ {
		rec[0], rec[1] = labels[i].Curve, labels[i].Date
		for j := 0; j < cols; j++ {
			rec[j+2] = strconv.FormatFloat(o.Jacobian.At(i, j), 'g', 10, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteJacobianCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DiagonalDominant reports whether every row's largest absolute entry sits on the diagonal.
// Only meaningful for square matrices.
func DiagonalDominant(m mat.Matrix) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		d := math.Abs(m.At(i, i))
		for j := 0; j < c; j++ {
			if j != i && math.Abs(m.At(i, j)) >= d {
				return false
			}
		}
	}
	return true
}

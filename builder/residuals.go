package builder

import (
	"fmt"
	"math"

	"github.com/meenmo/curvebuild/curve"
)

// Residuals writes dofs into cm and, for every instrument in registration order,
// stores curve par rate minus the par rate implied by its quoted price in dst.
func (b *CurveBuilder) Residuals(cm *curve.CurveMap, prices map[string]float64, dofs, dst []float64) error {
	if b.progress != nil {
		b.progress.Update()
	}
	for i, v := range dofs {
		if math.IsNaN(v) {
			label := ""
			if labels := cm.Labels(); i < len(labels) {
				label = fmt.Sprintf(" (%s %s)", labels[i].Curve, labels[i].Date)
			}
			return fmt.Errorf("%w at index %d%s", ErrNaNDOF, i, label)
		}
	}
	if len(dst) != len(b.all) {
		return fmt.Errorf("%w: residual buffer has %d entries for %d instruments", curve.ErrConfiguration, len(dst), len(b.all))
	}
	if err := cm.SetAllDOFs(dofs); err != nil {
		return err
	}
	for i, inst := range b.all {
		r, err := residual(cm, prices, inst)
		if err != nil {
			return err
		}
		dst[i] = r
	}
	return nil
}

type parRater interface {
	Name() string
	CalcParRate(cm *curve.CurveMap) (float64, error)
	ParRateFromPrice(price float64) (float64, error)
}

func residual(cm *curve.CurveMap, prices map[string]float64, inst parRater) (float64, error) {
	actual, err := inst.CalcParRate(cm)
	if err != nil {
		return 0, err
	}
	price, ok := prices[inst.Name()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPriceNotFound, inst.Name())
	}
	target, err := inst.ParRateFromPrice(price)
	if err != nil {
		return 0, err
	}
	return actual - target, nil
}

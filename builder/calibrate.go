package builder

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/instruments"
	"github.com/meenmo/curvebuild/solver"
)

// BuildOutput is the result of a successful build.
type BuildOutput struct {
	InputPrices map[string]float64
	CurveMap    *curve.CurveMap
	// Jacobian has one row per DOF and one column per instrument:
	// entry (i, j) is d residual_j / d DOF_i.
	Jacobian    *mat.Dense
	Instruments []instruments.Instrument
	Solve       solver.Result
}

// BuildCurves calibrates every curve jointly to prices and computes sensitivities.
// On failure no curve map is returned.
func (b *CurveBuilder) BuildCurves(prices map[string]float64) (*BuildOutput, error) {
	input := make(map[string]float64, len(prices))
	for k, v := range prices {
		input[k] = v
	}

	cm, err := b.InitialCurveMap()
	if err != nil {
		return nil, err
	}
	res, err := b.calibrate(cm, input)
	if err != nil {
		return nil, err
	}
	jac, err := b.Sensitivity(cm, input)
	if err != nil {
		return nil, err
	}
	return &BuildOutput{
		InputPrices: input,
		CurveMap:    cm,
		Jacobian:    jac,
		Instruments: b.Instruments(),
		Solve:       *res,
	}, nil
}

// calibrate solves for every DOF at once. On any failure cm is restored to the initial guess.
func (b *CurveBuilder) calibrate(cm *curve.CurveMap, prices map[string]float64) (*solver.Result, error) {
	x0 := cm.AllDOFs()
	n, m := len(x0), len(b.all)
	lower, upper := make([]float64, n), make([]float64, n)
	for i := range lower {
		lower[i], upper[i] = b.solver.LowerBound, b.solver.UpperBound
	}

	if b.progress != nil {
		b.progress.Reset()
	}
	b.log.WithFields(logrus.Fields{"dofs": n, "instruments": m, "curves": cm.Len()}).Info("calibration started")

	res, err := solver.LeastSquares(func(dst, x []float64) error {
		return b.Residuals(cm, prices, x, dst)
	}, m, x0, lower, upper, b.solver.Settings())
	if err != nil {
		restore(cm, x0)
		return nil, err
	}
	if !res.Success {
		restore(cm, x0)
		b.log.WithFields(logrus.Fields{
			"iterations":  res.Iterations,
			"evaluations": res.Evaluations,
			"cost":        res.Cost,
		}).Warn("calibration failed")
		return nil, fmt.Errorf("%w: %s after %d iterations (cost %.3e)", ErrConvergence, res.Message, res.Iterations, res.Cost)
	}
	if worst := floats.MaxIdx(absAll(res.Residuals)); math.Abs(res.Residuals[worst]) > b.solver.AcceptTolerance {
		restore(cm, x0)
		b.log.WithFields(logrus.Fields{
			"iterations": res.Iterations,
			"cost":       res.Cost,
			"instrument": b.all[worst].Name(),
			"residual":   res.Residuals[worst],
		}).Warn("calibration stalled")
		return nil, fmt.Errorf("%w: %s but instrument %s misses its price by %.3e in rate (tolerance %.1e)",
			ErrConvergence, res.Message, b.all[worst].Name(), res.Residuals[worst], b.solver.AcceptTolerance)
	}
	if err := cm.SetAllDOFs(res.X); err != nil {
		restore(cm, x0)
		return nil, err
	}
	b.log.WithFields(logrus.Fields{
		"iterations":  res.Iterations,
		"evaluations": res.Evaluations,
		"cost":        res.Cost,
		"status":      res.Message,
	}).Info("calibration converged")
	return res, nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}

// x0 was accepted by this map before, so the write cannot fail
func restore(cm *curve.CurveMap, x0 []float64) {
	_ = cm.SetAllDOFs(x0)
}

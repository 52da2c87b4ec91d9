package builder

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/curvebuild/curve"
)

// Sensitivity bumps each DOF of the converged map by the configured bump size and
// returns the forward-difference Jacobian of the residuals, N DOFs by M instruments.
// Every bump starts from the converged vector and cm holds it again on return.
func (b *CurveBuilder) Sensitivity(cm *curve.CurveMap, prices map[string]float64) (*mat.Dense, error) {
	base := cm.AllDOFs()
	n, m := len(base), len(b.all)
	h := b.solver.BumpSize
	if !(h > 0) {
		return nil, fmt.Errorf("%w: bump size must be positive", curve.ErrConfiguration)
	}

	e0 := make([]float64, m)
	if err := b.Residuals(cm, prices, base, e0); err != nil {
		return nil, err
	}
	jac := mat.NewDense(n, m, nil)

	workers := b.solver.Workers
	if workers > n {
		workers = n
	}
	var err error
	if workers <= 1 {
		err = b.bumpRange(cm, prices, base, e0, h, 0, n, jac)
	} else {
		err = b.bumpParallel(cm, prices, base, e0, h, workers, jac)
	}
	if serr := cm.SetAllDOFs(base); err == nil {
		err = serr
	}
	if err != nil {
		return nil, err
	}
	return jac, nil
}

// bumpRange fills rows [from, to) of jac. Rows are disjoint, so workers may share jac.
func (b *CurveBuilder) bumpRange(cm *curve.CurveMap, prices map[string]float64, base, e0 []float64, h float64, from, to int, jac *mat.Dense) error {
	x := make([]float64, len(base))
	e := make([]float64, len(e0))
	for i := from; i < to; i++ {
		copy(x, base)
		x[i] += h
		if err := b.Residuals(cm, prices, x, e); err != nil {
			return fmt.Errorf("bump of dof %d: %w", i, err)
		}
		floats.Sub(e, e0)
		floats.Scale(1/h, e)
		jac.SetRow(i, e)
	}
	return nil
}

func (b *CurveBuilder) bumpParallel(cm *curve.CurveMap, prices map[string]float64, base, e0 []float64, h float64, workers int, jac *mat.Dense) error {
	n := len(base)
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for from := 0; from < n; from += chunk {
		from, to := from, min(from+chunk, n)
		local := cm.Clone()
		g.Go(func() error {
			return b.bumpRange(local, prices, base, e0, h, from, to, jac)
		})
	}
	return g.Wait()
}

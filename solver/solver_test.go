package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvebuild/solver"
)

func box(n int, lo, hi float64) ([]float64, []float64) {
	l, u := make([]float64, n), make([]float64, n)
	for i := range l {
		l[i], u[i] = lo, hi
	}
	return l, u
}

func TestLeastSquares_Linear(t *testing.T) {
	t.Parallel()

	// 2x + y = 1, x - y = 0.2, x + 3y = 1 has the exact solution (0.4, 0.2)
	fn := func(dst, x []float64) error {
		dst[0] = 2*x[0] + x[1] - 1
		dst[1] = x[0] - x[1] - 0.2
		dst[2] = x[0] + 3*x[1] - 1
		return nil
	}
	lo, hi := box(2, 0, 1)
	res, err := solver.LeastSquares(fn, 3, []float64{0.9, 0.9}, lo, hi, solver.DefaultSettings())
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.InDelta(t, 0.4, res.X[0], 1e-9)
	assert.InDelta(t, 0.2, res.X[1], 1e-9)
	assert.Less(t, res.Cost, 1e-18)
	assert.Greater(t, res.Evaluations, res.Iterations)
}

func TestLeastSquares_Rosenbrock(t *testing.T) {
	t.Parallel()

	fn := func(dst, x []float64) error {
		dst[0] = 10 * (x[1] - x[0]*x[0])
		dst[1] = 1 - x[0]
		return nil
	}
	lo, hi := box(2, -2, 2)
	res, err := solver.LeastSquares(fn, 2, []float64{-1.2, 1}, lo, hi, solver.Settings{MaxIterations: 500})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.InDelta(t, 1, res.X[0], 1e-6)
	assert.InDelta(t, 1, res.X[1], 1e-6)
}

func TestLeastSquares_ActiveBound(t *testing.T) {
	t.Parallel()

	// the unconstrained minimum x = 2 sits outside [0, 1]
	fn := func(dst, x []float64) error {
		dst[0] = x[0] - 2
		return nil
	}
	res, err := solver.LeastSquares(fn, 1, []float64{0.5}, []float64{0}, []float64{1}, solver.DefaultSettings())
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1.0, res.X[0])
	assert.InDelta(t, 0.5, res.Cost, 1e-12)
}

func TestLeastSquares_StartClippedIntoBounds(t *testing.T) {
	t.Parallel()

	var seen []float64
	fn := func(dst, x []float64) error {
		if seen == nil {
			seen = append([]float64(nil), x...)
		}
		dst[0] = x[0] - 0.3
		return nil
	}
	res, err := solver.LeastSquares(fn, 1, []float64{5}, []float64{0}, []float64{1}, solver.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, seen)
	assert.InDelta(t, 0.3, res.X[0], 1e-10)
}

func TestLeastSquares_IterationCap(t *testing.T) {
	t.Parallel()

	fn := func(dst, x []float64) error {
		dst[0] = 10 * (x[1] - x[0]*x[0])
		dst[1] = 1 - x[0]
		return nil
	}
	lo, hi := box(2, -2, 2)
	res, err := solver.LeastSquares(fn, 2, []float64{-1.2, 1}, lo, hi, solver.Settings{MaxIterations: 1})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, solver.StatusMaxIterations, res.Status)
	assert.Equal(t, "maximum iterations reached", res.Message)
}

func TestLeastSquares_ErrorsPropagate(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	fn := func(dst, x []float64) error {
		calls++
		if calls > 1 {
			return boom
		}
		dst[0] = x[0]
		return nil
	}
	_, err := solver.LeastSquares(fn, 1, []float64{0.5}, []float64{0}, []float64{1}, solver.DefaultSettings())
	assert.ErrorIs(t, err, boom)
}

func TestLeastSquares_InvalidInput(t *testing.T) {
	t.Parallel()

	fn := func(dst, x []float64) error { return nil }
	_, err := solver.LeastSquares(fn, 1, nil, nil, nil, solver.DefaultSettings())
	assert.ErrorIs(t, err, solver.ErrInvalidInput)
	_, err = solver.LeastSquares(fn, 1, []float64{0}, []float64{0}, nil, solver.DefaultSettings())
	assert.ErrorIs(t, err, solver.ErrInvalidInput)
	_, err = solver.LeastSquares(fn, 1, []float64{0}, []float64{1}, []float64{0}, solver.DefaultSettings())
	assert.ErrorIs(t, err, solver.ErrInvalidInput)
	_, err = solver.LeastSquares(fn, 1, []float64{0}, []float64{math.NaN()}, []float64{0}, solver.DefaultSettings())
	assert.ErrorIs(t, err, solver.ErrInvalidInput)
}

func TestStatus_Converged(t *testing.T) {
	t.Parallel()

	assert.True(t, solver.StatusResidualTolerance.Converged())
	assert.True(t, solver.StatusCostTolerance.Converged())
	assert.False(t, solver.StatusMaxIterations.Converged())
	assert.False(t, solver.StatusDampingOverflow.Converged())
}

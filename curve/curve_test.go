package curve_test

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvebuild/curve"
)

var evalDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func pillars(months ...int) []time.Time {
	out := make([]time.Time, len(months))
	for i, m := range months {
		out[i] = evalDate.AddDate(0, m, 0)
	}
	return out
}

func twoCurveMap(t *testing.T) *curve.CurveMap {
	t.Helper()
	ois, err := curve.NewFlatCurve("USD-OIS", evalDate, pillars(6, 12, 24), 0.02, curve.LinearLogDF)
	require.NoError(t, err)
	libor, err := curve.NewFlatCurve("USD-LIBOR-3M", evalDate, pillars(3, 6), 0.025, curve.LinearCCRate)
	require.NoError(t, err)
	m := curve.NewCurveMap()
	require.NoError(t, m.Add(ois))
	require.NoError(t, m.Add(libor))
	return m
}

func TestNewCurve_Validation(t *testing.T) {
	t.Parallel()

	_, err := curve.NewCurve("EMPTY", evalDate, nil, nil, curve.LinearLogDF)
	assert.ErrorIs(t, err, curve.ErrConfiguration)

	_, err = curve.NewCurve("LEN", evalDate, pillars(3, 6), []float64{0.99}, curve.LinearLogDF)
	assert.ErrorIs(t, err, curve.ErrConfiguration)

	_, err = curve.NewCurve("ORDER", evalDate, pillars(6, 3), []float64{0.99, 0.98}, curve.LinearLogDF)
	assert.ErrorIs(t, err, curve.ErrConfiguration)

	_, err = curve.NewCurve("EVAL", evalDate, []time.Time{evalDate}, []float64{1}, curve.LinearLogDF)
	assert.ErrorIs(t, err, curve.ErrConfiguration)

	_, err = curve.NewCurve("MODE", evalDate, pillars(3), []float64{0.99}, "SPLINE_OF_DOOM")
	assert.ErrorIs(t, err, curve.ErrConfiguration)
}

func TestNewFlatCurve_InitialGuess(t *testing.T) {
	t.Parallel()

	p := pillars(12)
	c, err := curve.NewFlatCurve("X", evalDate, p, 0.02, curve.LinearLogDF)
	require.NoError(t, err)
	days := p[0].Sub(evalDate).Hours() / 24
	assert.InDelta(t, math.Exp(-0.02*days/365), c.DOFs()[0], 1e-15)
}

func TestCurve_DFAtPillarsAndAnchor(t *testing.T) {
	t.Parallel()

	for _, mode := range []curve.InterpolationMode{curve.LinearLogDF, curve.LinearCCRate, curve.CubicLogDF, curve.MonotoneLogDF} {
		p := pillars(3, 6, 12, 24)
		dfs := []float64{0.995, 0.99, 0.98, 0.96}
		c, err := curve.NewCurve("X", evalDate, p, dfs, mode)
		require.NoError(t, err, mode)

		assert.Equal(t, 1.0, c.DF(evalDate), mode)
		for i, d := range p {
			assert.InDelta(t, dfs[i], c.DF(d), 1e-12, "%s pillar %d", mode, i)
		}
		mid := evalDate.AddDate(0, 9, 0)
		assert.Less(t, c.DF(mid), 0.99, mode)
		assert.Greater(t, c.DF(mid), 0.98, mode)
	}
}

func TestCurve_LogLinearIsFlatForward(t *testing.T) {
	t.Parallel()

	p := pillars(12, 24)
	c, err := curve.NewCurve("X", evalDate, p, []float64{math.Exp(-0.01 * c365(p[0])), math.Exp(-0.01 * c365(p[1]))}, curve.LinearLogDF)
	require.NoError(t, err)

	// flat 1% continuously compounded everywhere, including extrapolation
	for _, m := range []int{1, 6, 18, 36} {
		d := evalDate.AddDate(0, m, 0)
		assert.InDelta(t, 0.01, c.ZeroRateAt(d), 1e-12, "month %d", m)
	}
}

func c365(d time.Time) float64 {
	return d.Sub(evalDate).Hours() / 24 / 365
}

func TestCurveMap_DOFIdentity(t *testing.T) {
	t.Parallel()

	m := twoCurveMap(t)
	before := m.AllDOFs()
	require.NoError(t, m.SetAllDOFs(m.AllDOFs()))
	assert.Equal(t, before, m.AllDOFs())
}

func TestCurveMap_LengthInvariant(t *testing.T) {
	t.Parallel()

	m := twoCurveMap(t)
	assert.Equal(t, 5, m.DOFCount())
	assert.Len(t, m.AllDOFs(), 5)

	before := m.AllDOFs()
	err := m.SetAllDOFs([]float64{0.9, 0.9, 0.9, 0.9})
	assert.ErrorIs(t, err, curve.ErrConfiguration)
	err = m.SetAllDOFs([]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})
	assert.ErrorIs(t, err, curve.ErrConfiguration)
	assert.Equal(t, before, m.AllDOFs())
}

func TestCurveMap_SetAllDOFsOrder(t *testing.T) {
	t.Parallel()

	m := twoCurveMap(t)
	v := []float64{0.99, 0.98, 0.97, 0.995, 0.985}
	require.NoError(t, m.SetAllDOFs(v))

	ois, err := m.Curve("USD-OIS")
	require.NoError(t, err)
	libor, err := m.Curve("USD-LIBOR-3M")
	require.NoError(t, err)
	assert.Equal(t, v[:3], ois.DOFs())
	assert.Equal(t, v[3:], libor.DOFs())

	start, count, err := m.Offset("USD-LIBOR-3M")
	require.NoError(t, err)
	assert.Equal(t, 3, start)
	assert.Equal(t, 2, count)

	labels := m.Labels()
	require.Len(t, labels, 5)
	assert.Equal(t, "USD-LIBOR-3M", labels[3].Curve)
	assert.Equal(t, 0, labels[3].Pillar)
}

func TestCurveMap_DuplicateAndMissing(t *testing.T) {
	t.Parallel()

	m := twoCurveMap(t)
	dup, err := curve.NewFlatCurve("USD-OIS", evalDate, pillars(1), 0.02, curve.LinearLogDF)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Add(dup), curve.ErrConfiguration)

	_, err = m.Curve("EUR-OIS")
	assert.ErrorIs(t, err, curve.ErrCurveNotFound)
	assert.Equal(t, []string{"USD-OIS", "USD-LIBOR-3M"}, m.Names())
}

func TestCurveMap_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	m := twoCurveMap(t)
	before := m.AllDOFs()
	cp := m.Clone()
	require.NoError(t, cp.SetAllDOFs([]float64{0.5, 0.5, 0.5, 0.5, 0.5}))
	assert.Equal(t, before, m.AllDOFs())

	c, err := m.Curve("USD-OIS")
	require.NoError(t, err)
	cc, err := cp.Curve("USD-OIS")
	require.NoError(t, err)
	d := evalDate.AddDate(0, 9, 0)
	assert.NotEqual(t, c.DF(d), cc.DF(d))
}

func TestSnapshot_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	m := twoCurveMap(t)
	var buf bytes.Buffer
	require.NoError(t, m.WriteYAML(&buf))

	got, err := curve.ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Names(), got.Names())
	assert.Equal(t, m.AllDOFs(), got.AllDOFs())

	libor, err := got.Curve("USD-LIBOR-3M")
	require.NoError(t, err)
	assert.Equal(t, curve.LinearCCRate, libor.Mode())
}

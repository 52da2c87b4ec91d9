package instruments_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/instruments"
	"github.com/meenmo/curvebuild/utils"
)

var evalDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// flatMap holds log-linear flat curves, so DF(t) = exp(-rate*t) everywhere.
func flatMap(t *testing.T, rates map[string]float64) *curve.CurveMap {
	t.Helper()
	m := curve.NewCurveMap()
	pillars := []time.Time{date("2026-01-02"), date("2030-01-02")}
	for _, name := range []string{"USD-OIS", "USD-LIBOR-3M", "USD-LIBOR-6M", "EUR-ESTR"} {
		r, ok := rates[name]
		if !ok {
			continue
		}
		c, err := curve.NewFlatCurve(name, evalDate, pillars, r, curve.LinearLogDF)
		require.NoError(t, err)
		require.NoError(t, m.Add(c))
	}
	return m
}

func conv(t *testing.T, name string) instruments.Convention {
	t.Helper()
	c, err := instruments.LookupConvention(name)
	require.NoError(t, err)
	return c
}

func TestSchedule_RegularAndStub(t *testing.T) {
	t.Parallel()

	fixed := conv(t, "USD-FIXED-6M")
	periods := instruments.Schedule(date("2025-01-15"), date("2027-01-15"), fixed)
	require.Len(t, periods, 4)
	assert.Equal(t, date("2025-07-15"), periods[0].End)
	assert.Equal(t, date("2026-01-15"), periods[1].End)
	assert.Equal(t, date("2027-01-15"), periods[3].End)
	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].End, periods[i].Start)
	}
	assert.InDelta(t, 0.5, periods[0].Accrual, 1e-12)

	// a 5-day front stub is merged into the first regular period
	stubbed := instruments.Schedule(date("2025-01-10"), date("2026-01-15"), fixed)
	require.Len(t, stubbed, 2)
	assert.Equal(t, date("2025-01-10"), stubbed[0].Start)
	assert.Equal(t, date("2025-07-15"), stubbed[0].End)

	term := instruments.Schedule(date("2025-01-15"), date("2025-04-15"), conv(t, "ACT360"))
	require.Len(t, term, 1)
	assert.InDelta(t, 90.0/360.0, term[0].Accrual, 1e-12)
}

func TestConventions_Registry(t *testing.T) {
	t.Parallel()

	_, err := instruments.LookupConvention("NOPE")
	assert.ErrorIs(t, err, curve.ErrConfiguration)

	err = instruments.RegisterConvention(instruments.Convention{Name: "TEST-BAD", DayCount: "ACT/999"})
	assert.ErrorIs(t, err, curve.ErrConfiguration)

	require.NoError(t, instruments.RegisterConvention(instruments.Convention{
		Name: "TEST-ACT365-1Y", DayCount: utils.Act365F, FrequencyMonths: 12,
	}))
	c := conv(t, "TEST-ACT365-1Y")
	assert.Equal(t, 12, c.FrequencyMonths)
	assert.Contains(t, instruments.ConventionNames(), "TEST-ACT365-1Y")
}

func TestDeposit_ParRateOnFlatCurve(t *testing.T) {
	t.Parallel()

	cm := flatMap(t, map[string]float64{"USD-LIBOR-3M": 0.02})
	start, end := evalDate, date("2025-04-02")
	dep := instruments.NewDeposit("DEP3M", "USD-LIBOR-3M", start, end, conv(t, "ACT365F"))

	tau := utils.YearFraction(start, end, utils.Act365F)
	rate, err := dep.CalcParRate(cm)
	require.NoError(t, err)
	assert.InDelta(t, (math.Exp(0.02*tau)-1)/tau, rate, 1e-12)
	assert.Equal(t, end, dep.PillarDate())
	assert.Equal(t, []string{"USD-LIBOR-3M"}, dep.Curves())
}

func TestSwap_TelescopesOnSingleCurve(t *testing.T) {
	t.Parallel()

	cm := flatMap(t, map[string]float64{"USD-OIS": 0.03})
	start, end := date("2025-01-15"), date("2028-01-18")
	sw := instruments.NewSwap("SW3Y", "USD-OIS", "USD-OIS", start, end, conv(t, "USD-FIXED-6M"), conv(t, "USD-LIBOR-3M"))

	oisCurve, err := cm.Curve("USD-OIS")
	require.NoError(t, err)
	annuity := 0.0
	for _, p := range sw.FixedLeg() {
		annuity += p.Accrual * oisCurve.DF(p.End)
	}
	want := (oisCurve.DF(start) - oisCurve.DF(end)) / annuity

	rate, err := sw.CalcParRate(cm)
	require.NoError(t, err)
	assert.InDelta(t, want, rate, 1e-12)
	assert.Len(t, sw.FloatingLeg(), 12)
	assert.Equal(t, []string{"USD-OIS"}, sw.Curves())
}

func TestBasisSwap_ZeroSpreadOnIdenticalCurves(t *testing.T) {
	t.Parallel()

	cm := flatMap(t, map[string]float64{"USD-OIS": 0.02, "USD-LIBOR-3M": 0.02, "USD-LIBOR-6M": 0.02})
	bs := instruments.NewBasisSwap("BS5Y", "USD-LIBOR-3M", "USD-LIBOR-6M", "USD-OIS", date("2025-01-15"), date("2030-01-15"),
		conv(t, "USD-LIBOR-3M"), conv(t, "USD-LIBOR-6M"))
	s, err := bs.CalcParRate(cm)
	require.NoError(t, err)
	assert.InDelta(t, 0, s, 1e-12)
}

func TestCrossCurrencySwap_SpreadIsLeftParRateAgainstFlatRightLeg(t *testing.T) {
	t.Parallel()

	cm := flatMap(t, map[string]float64{"USD-OIS": 0.04, "EUR-ESTR": 0.02})
	start, end := date("2025-01-15"), date("2030-01-15")
	eur := conv(t, "EUR-ESTR")
	xccy := instruments.NewCrossCurrencySwap("XC5Y", "EUR-ESTR", "USD-OIS", "USD-OIS", start, end, eur, conv(t, "USD-OIS"))

	// right leg floats on its own discount curve, so it is worth par and the spread
	// is the left leg's par coupon
	left, err := cm.Curve("EUR-ESTR")
	require.NoError(t, err)
	a := 0.0
	for _, p := range instruments.Schedule(start, end, eur) {
		a += p.Accrual * left.DF(p.End)
	}
	want := (left.DF(start) - left.DF(end)) / a

	s, err := xccy.CalcParRate(cm)
	require.NoError(t, err)
	assert.InDelta(t, want, s, 1e-12)
	assert.Greater(t, s, 0.015)
	assert.ElementsMatch(t, []string{"USD-OIS", "EUR-ESTR"}, xccy.Curves())
}

func TestCrossCurrencySwap_DependsOnLeftDiscountCurve(t *testing.T) {
	t.Parallel()

	start, end := date("2025-01-15"), date("2028-01-18")
	xccy := instruments.NewCrossCurrencySwap("XC3Y", "EUR-ESTR", "USD-OIS", "USD-LIBOR-3M", start, end,
		conv(t, "EUR-ESTR"), conv(t, "USD-LIBOR-3M"))

	low, err := xccy.CalcParRate(flatMap(t, map[string]float64{"USD-OIS": 0.04, "USD-LIBOR-3M": 0.042, "EUR-ESTR": 0.02}))
	require.NoError(t, err)
	high, err := xccy.CalcParRate(flatMap(t, map[string]float64{"USD-OIS": 0.04, "USD-LIBOR-3M": 0.042, "EUR-ESTR": 0.03}))
	require.NoError(t, err)
	assert.InDelta(t, 0.01, high-low, 1e-3, "a higher left discount rate raises the spread nearly one for one")

	// a richer right index adds to the spread on top of the left par rate
	richer, err := xccy.CalcParRate(flatMap(t, map[string]float64{"USD-OIS": 0.04, "USD-LIBOR-3M": 0.045, "EUR-ESTR": 0.02}))
	require.NoError(t, err)
	assert.Greater(t, richer, low)
}

func TestBasisSwap_SpreadSign(t *testing.T) {
	t.Parallel()

	cm := flatMap(t, map[string]float64{"USD-OIS": 0.02, "USD-LIBOR-3M": 0.02, "USD-LIBOR-6M": 0.025})
	bs := instruments.NewBasisSwap("BS2Y", "USD-LIBOR-3M", "USD-LIBOR-6M", "USD-OIS",
		date("2025-01-15"), date("2027-01-15"), conv(t, "USD-LIBOR-3M"), conv(t, "USD-LIBOR-6M"))
	s, err := bs.CalcParRate(cm)
	require.NoError(t, err)
	// the left leg needs a positive spread to match the higher right index
	assert.Greater(t, s, 0.004)
	assert.Less(t, s, 0.006)
}

func TestTermDeposit_SinglePeriodMatchesDeposit(t *testing.T) {
	t.Parallel()

	cm := flatMap(t, map[string]float64{"USD-OIS": 0.02})
	start, end := evalDate, date("2025-07-02")
	td := instruments.NewTermDeposit("TD6M", "USD-OIS", "USD-OIS", start, end, conv(t, "ACT360"))
	dep := instruments.NewDeposit("DEP6M", "USD-OIS", start, end, conv(t, "ACT360"))

	r1, err := td.CalcParRate(cm)
	require.NoError(t, err)
	r2, err := dep.CalcParRate(cm)
	require.NoError(t, err)
	assert.InDelta(t, r2, r1, 1e-12)
}

func TestPriceConversions(t *testing.T) {
	t.Parallel()

	start, end := evalDate, date("2025-04-02")
	act := conv(t, "ACT360")
	tests := []struct {
		name  string
		inst  instruments.Instrument
		price float64
		rate  float64
	}{
		{"deposit percent", instruments.NewDeposit("D", "X", start, end, act), 2.0, 0.02},
		{"future 100 minus rate", instruments.NewFuture("F", "X", start, end, act), 98.0, 0.02},
		{"basis points", instruments.NewBasisSwap("B", "X", "Y", "Z", start, end, act, act), 25.0, 0.0025},
		{"xccy basis points", instruments.NewCrossCurrencySwap("C", "X", "Y", "Z", start, end, act, act), -12.5, -0.00125},
		{"term deposit percent", instruments.NewTermDeposit("T", "X", "Y", start, end, act), 3.5, 0.035},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.inst.ParRateFromPrice(tt.price)
			require.NoError(t, err)
			assert.InDelta(t, tt.rate, r, 1e-15)

			p, err := tt.inst.PriceFromParRate(tt.rate)
			require.NoError(t, err)
			assert.InDelta(t, tt.price, p, 1e-12)
		})
	}

	_, err := tests[0].inst.ParRateFromPrice(math.NaN())
	assert.ErrorIs(t, err, curve.ErrNumericalDomain)
	_, err = tests[1].inst.PriceFromParRate(math.Inf(1))
	assert.ErrorIs(t, err, curve.ErrNumericalDomain)
}

func TestCalcParRate_MissingCurve(t *testing.T) {
	t.Parallel()

	cm := flatMap(t, map[string]float64{"USD-OIS": 0.02})
	dep := instruments.NewDeposit("D", "GBP-SONIA", evalDate, date("2025-04-02"), conv(t, "ACT365F"))
	_, err := dep.CalcParRate(cm)
	assert.ErrorIs(t, err, curve.ErrConfiguration)
	assert.ErrorIs(t, err, curve.ErrCurveNotFound)
}

func TestNew_Factory(t *testing.T) {
	t.Parallel()

	base := instruments.Spec{
		Name: "USD-LIBOR-3M-DEP", Type: "Deposit", Curve: "USD-LIBOR-3M",
		ForecastLeft: "USD-LIBOR-3M", ForecastRight: "na", DiscountLeft: "na", DiscountRight: "na",
		ConventionLeft: "ACT360", ConventionRight: "na", Start: "E", Length: "3M", Enabled: "Y",
	}

	inst, err := instruments.New(base, evalDate)
	require.NoError(t, err)
	assert.Equal(t, instruments.KindDeposit, inst.Kind())
	assert.Equal(t, evalDate, inst.StartDate())
	assert.Equal(t, date("2025-04-02"), inst.PillarDate())

	fwd := base
	fwd.Start = "1M"
	inst, err = instruments.New(fwd, evalDate)
	require.NoError(t, err)
	assert.Equal(t, date("2025-02-03"), inst.StartDate()) // 2025-02-02 is a Sunday

	explicit := base
	explicit.Start = "2025-03-17"
	inst, err = instruments.New(explicit, evalDate)
	require.NoError(t, err)
	assert.Equal(t, date("2025-03-17"), inst.StartDate())
	assert.Equal(t, date("2025-06-17"), inst.PillarDate())

	for name, mutate := range map[string]func(*instruments.Spec){
		"deposit with discount":    func(s *instruments.Spec) { s.DiscountLeft = "USD-OIS" },
		"deposit without forecast": func(s *instruments.Spec) { s.ForecastLeft = "na" },
		"unknown type":             func(s *instruments.Spec) { s.Type = "Bond" },
		"unknown convention":       func(s *instruments.Spec) { s.ConventionLeft = "XXX" },
		"bad length":               func(s *instruments.Spec) { s.Length = "3Q" },
		"zero length":              func(s *instruments.Spec) { s.Length = "0M" },
		"bad start":                func(s *instruments.Spec) { s.Start = "yesterday" },
		"swap without discount":    func(s *instruments.Spec) { s.Type = "Swap" },
	} {
		bad := base
		mutate(&bad)
		_, err := instruments.New(bad, evalDate)
		assert.ErrorIs(t, err, curve.ErrConfiguration, name)
	}
}

func TestNew_CrossCurrencyNormalisesForecastToRight(t *testing.T) {
	t.Parallel()

	spec := instruments.Spec{
		Name: "EURUSD-XC-2Y", Type: "CrossCurrencySwap", Curve: "EUR-ESTR",
		ForecastLeft: "USD-LIBOR-3M", ForecastRight: "na", DiscountLeft: "USD-OIS", DiscountRight: "EUR-ESTR",
		ConventionLeft: "USD-LIBOR-3M", ConventionRight: "EUR-ESTR", Start: "E", Length: "2Y",
	}
	inst, err := instruments.New(spec, evalDate)
	require.NoError(t, err)
	assert.Equal(t, instruments.KindCrossCurrencySwap, inst.Kind())
	assert.Equal(t, []string{"USD-LIBOR-3M", "EUR-ESTR", "USD-OIS"}, inst.Curves())

	both := spec
	both.ForecastRight = "EUR-ESTR"
	_, err = instruments.New(both, evalDate)
	assert.ErrorIs(t, err, curve.ErrConfiguration)
}

func TestSpec_IsEnabled(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{"": true, "Y": true, "y": true, "N": false} {
		got, err := instruments.Spec{Enabled: in}.IsEnabled()
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := instruments.Spec{Enabled: "maybe"}.IsEnabled()
	assert.ErrorIs(t, err, curve.ErrConfiguration)
}

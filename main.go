package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/curvebuild/builder"
	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/instruments"
)

func main() {
	evalDate := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	logrus.SetLevel(logrus.WarnLevel)

	tmpl := builder.CurveTemplate{Name: "USD-LIBOR-3M", Interpolation: curve.LinearLogDF}
	prices := map[string]float64{}
	for _, length := range []string{"3M", "6M", "1Y"} {
		spec := instruments.Spec{
			Name:           "USD-LIBOR-3M-DEP-" + length,
			Type:           "Deposit",
			Curve:          "USD-LIBOR-3M",
			ForecastLeft:   "USD-LIBOR-3M",
			ConventionLeft: "ACT360",
			Start:          "E",
			Length:         length,
		}
		inst, err := instruments.New(spec, evalDate)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tmpl.Instruments = append(tmpl.Instruments, inst)
		prices[spec.Name] = 2.0
	}

	b, err := builder.New(builder.Params{EvalDate: evalDate, Templates: []builder.CurveTemplate{tmpl}})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := b.BuildCurves(prices)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c, _ := out.CurveMap.Curve("USD-LIBOR-3M")
	for i, p := range c.Pillars() {
		fmt.Printf("%s  DF %.10f  zero %.6f%%\n", p.Format("2006-01-02"), c.DOFs()[i], 100*c.ZeroRateAt(p))
	}

	repriced, err := b.Reprice(out.CurveMap)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, q := range repriced.Quotes() {
		fmt.Printf("%-22s input %.6f  repriced %.10f\n", q.Instrument, prices[q.Instrument], q.Price)
	}
	fmt.Printf("iterations %d, evaluations %d, cost %.3e\n", out.Solve.Iterations, out.Solve.Evaluations, out.Solve.Cost)
}

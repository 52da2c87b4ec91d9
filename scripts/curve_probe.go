package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/utils"
)

// Prints zero rates, discount factors and 3M forwards on a monthly grid for every
// curve in a snapshot written by `curvebuild build --curves-out`.
//
//	go run ./scripts -curves curves.yaml -years 5
func main() {
	path := flag.String("curves", "curves.yaml", "curve snapshot YAML")
	years := flag.Int("years", 5, "grid horizon in years")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()
	cm, err := curve.ReadYAML(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	threeMonths := utils.MustParseTenor("3M")
	for _, name := range cm.Names() {
		c, _ := cm.Curve(name)
		fmt.Printf("%s (%s)\n", name, c.Mode())
		fmt.Printf("  %-10s %12s %10s %10s\n", "date", "df", "zero%", "fwd3m%")
		for m := 1; m <= 12**years; m++ {
			d := utils.AddMonth(c.EvalDate(), m)
			fwd := c.ForwardRate(d, threeMonths.AddTo(d), utils.Act360)
			fmt.Printf("  %-10s %12.8f %10.5f %10.5f\n", d.Format(utils.DateLayout), c.DF(d), 100*c.ZeroRateAt(d), 100*fwd)
		}
	}
}

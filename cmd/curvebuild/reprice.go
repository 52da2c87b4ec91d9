package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meenmo/curvebuild/curve"
)

var curvesIn string

var repriceCmd = &cobra.Command{
	Use:   "reprice",
	Short: "Price every configured instrument off stored curves",
	RunE: func(cmd *cobra.Command, args []string) error {
		if curvesIn == "" {
			return fmt.Errorf("reprice: --curves is required")
		}
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		b, _, err := newBuilder(cfg, log)
		if err != nil {
			return err
		}

		f, err := os.Open(curvesIn)
		if err != nil {
			return err
		}
		defer f.Close()
		cm, err := curve.ReadYAML(f)
		if err != nil {
			return err
		}

		ladder, err := b.Reprice(cm)
		if err != nil {
			return err
		}
		return ladder.WriteCSV(os.Stdout, pricePlaces)
	},
}

func init() {
	repriceCmd.Flags().StringVar(&curvesIn, "curves", "", "curve YAML written by build --curves-out")
	repriceCmd.Flags().Int32Var(&pricePlaces, "places", 6, "decimal places of output prices")
}

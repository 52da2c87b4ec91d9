package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/curvebuild/instruments"
)

var listConventions bool

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List configured instruments with resolved dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		if listConventions {
			return enc.Encode(map[string][]string{"conventions": instruments.ConventionNames()})
		}
		b, _, err := newBuilder(cfg, log)
		if err != nil {
			return err
		}
		return enc.Encode(map[string]any{
			"eval_date":   b.EvalDate().Format("2006-01-02"),
			"curves":      b.CurveNames(),
			"instruments": b.InstrumentFrame(),
		})
	},
}

func init() {
	instrumentsCmd.Flags().BoolVar(&listConventions, "conventions", false, "list registered conventions instead")
}

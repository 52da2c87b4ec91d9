package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meenmo/curvebuild/builder"
	"github.com/meenmo/curvebuild/config"
	"github.com/meenmo/curvebuild/marketdata"
)

var (
	pricesPath  string
	fromDB      bool
	saveQuotes  bool
	curvesOut   string
	jacobianOut string
	pricePlaces int32
	selectExpr  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Calibrate all configured curves to a price ladder",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		b, date, err := newBuilder(cfg, log)
		if err != nil {
			return err
		}

		ladder, err := loadLadder(cmd.Context(), cfg, date, log)
		if err != nil {
			return err
		}
		prices, err := marketdata.ParseInstrumentPrices(ladder)
		if err != nil {
			return err
		}
		out, err := b.BuildCurves(prices)
		if err != nil {
			return err
		}

		if curvesOut != "" {
			if err := writeFile(curvesOut, out.CurveMap.WriteYAML); err != nil {
				return err
			}
			log.WithField("path", curvesOut).Info("curves written")
		}
		if jacobianOut != "" {
			if err := writeFile(jacobianOut, out.WriteJacobianCSV); err != nil {
				return err
			}
			log.WithField("path", jacobianOut).Info("jacobian written")
		}
		if saveQuotes {
			if err := saveLadder(cmd.Context(), cfg, date, ladder); err != nil {
				return err
			}
		}

		rows, cols := out.Jacobian.Dims()
		log.WithFields(logrus.Fields{
			"dofs":              rows,
			"instruments":       cols,
			"diagonal_dominant": builder.DiagonalDominant(out.Jacobian),
		}).Debug("sensitivity computed")

		repriced, err := b.Reprice(out.CurveMap)
		if err != nil {
			return err
		}
		if selectExpr != "" {
			if repriced, err = repriced.Sublist(selectExpr); err != nil {
				return err
			}
		}
		return repriced.WriteCSV(os.Stdout, pricePlaces)
	},
}

func init() {
	buildCmd.Flags().StringVar(&pricesPath, "prices", "", "price ladder file (.yaml or .csv), - for YAML on stdin")
	buildCmd.Flags().BoolVar(&fromDB, "from-db", false, "load the ladder for the evaluation date from database.dsn")
	buildCmd.Flags().BoolVar(&saveQuotes, "save-quotes", false, "store the input ladder in database.dsn")
	buildCmd.Flags().StringVar(&curvesOut, "curves-out", "", "write the calibrated curves as YAML")
	buildCmd.Flags().StringVar(&jacobianOut, "jacobian-out", "", "write the sensitivity matrix as CSV")
	buildCmd.Flags().Int32Var(&pricePlaces, "places", 6, "decimal places of repriced output")
	buildCmd.Flags().StringVar(&selectExpr, "select", "", "only print repriced instruments whose names match this regexp")
}

// loadLadder reads the evaluation date's quotes from the database or from a
// ladder file served as a static source.
func loadLadder(ctx context.Context, cfg *config.Config, date time.Time, log logrus.FieldLogger) (*marketdata.PriceLadder, error) {
	var src marketdata.QuoteSource
	if fromDB {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		log.WithField("date", date.Format("2006-01-02")).Info("loading quotes from database")
		src = store
	} else {
		ladder, err := readLadderFile(pricesPath)
		if err != nil {
			return nil, err
		}
		src = marketdata.NewMapQuoteSource(map[string]*marketdata.PriceLadder{date.Format("2006-01-02"): ladder})
	}
	return src.LoadLadder(ctx, date)
}

func readLadderFile(path string) (*marketdata.PriceLadder, error) {
	switch {
	case path == "":
		return nil, fmt.Errorf("build: --prices or --from-db is required")
	case path == "-":
		return marketdata.ReadLadderYAML(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return marketdata.ReadCSV(f)
	}
	return marketdata.ReadLadderYAML(f)
}

func openStore(ctx context.Context, cfg *config.Config) (*marketdata.QuoteStore, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return marketdata.OpenQuoteStore(ctx, cfg.Database.DSN, cfg.Database.Table)
}

func saveLadder(ctx context.Context, cfg *config.Config, date time.Time, ladder *marketdata.PriceLadder) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveLadder(ctx, date, ladder)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

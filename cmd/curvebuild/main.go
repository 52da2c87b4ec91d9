package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meenmo/curvebuild/builder"
	"github.com/meenmo/curvebuild/config"
	"github.com/meenmo/curvebuild/utils"
)

var (
	configPath string // path to the YAML config
	logLevel   string // overrides logging.level when set
	evalDate   string // overrides eval_date when set
)

var rootCmd = &cobra.Command{
	Use:           "curvebuild",
	Short:         "Joint multi-curve calibration to market instrument prices",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&evalDate, "date", "", "evaluation date YYYY-MM-DD (default eval_date from config)")

	rootCmd.AddCommand(buildCmd, repriceCmd, serveCmd, instrumentsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads config, configures logging and registers conventions and holidays.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if evalDate != "" {
		cfg.EvalDate = evalDate
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Register(); err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, _ := logrus.ParseLevel(cfg.Logging.Level) // validated above
	log.SetLevel(level)
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return cfg, log, nil
}

func resolveEvalDate(cfg *config.Config) (time.Time, error) {
	if cfg.EvalDate == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return utils.ParseDate(cfg.EvalDate)
}

func newBuilder(cfg *config.Config, log *logrus.Logger) (*builder.CurveBuilder, time.Time, error) {
	date, err := resolveEvalDate(cfg)
	if err != nil {
		return nil, time.Time{}, err
	}
	b, err := builder.FromConfig(cfg, date, builder.NewLogProgress(log), log)
	if err != nil {
		return nil, time.Time{}, err
	}
	return b, date, nil
}

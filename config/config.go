// Package config loads curve-building settings and curve/instrument definitions.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/meenmo/curvebuild/calendar"
	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/instruments"
	"github.com/meenmo/curvebuild/solver"
	"github.com/meenmo/curvebuild/utils"
)

type Config struct {
	// EvalDate is the default evaluation date (YYYY-MM-DD) when none is given on the command line.
	EvalDate    string              `mapstructure:"eval_date"`
	Solver      SolverConfig        `mapstructure:"solver"`
	Logging     LoggingConfig       `mapstructure:"logging"`
	Server      ServerConfig        `mapstructure:"server"`
	Database    DatabaseConfig      `mapstructure:"database"`
	Conventions []ConventionConfig  `mapstructure:"conventions"`
	Holidays    map[string][]string `mapstructure:"holidays"`
	Curves      []CurveConfig       `mapstructure:"curves"`
	Instruments []instruments.Spec  `mapstructure:"instruments"`
}

// SolverConfig holds calibration and sensitivity parameters.
type SolverConfig struct {
	// MaxIterations caps Levenberg-Marquardt iterations.
	MaxIterations int `mapstructure:"max_iterations"`

	// MaxEvaluations caps residual evaluations; 0 means no cap.
	MaxEvaluations int `mapstructure:"max_evaluations"`

	// ResidualTolerance is the par-rate residual inf-norm at which the solver stops early.
	ResidualTolerance float64 `mapstructure:"residual_tolerance"`

	// AcceptTolerance is the largest absolute par-rate residual a finished solve may
	// leave on any instrument. A stop on step, cost or gradient tolerance above it is a
	// convergence failure.
	AcceptTolerance float64 `mapstructure:"accept_tolerance"`

	XTol float64 `mapstructure:"xtol"`
	FTol float64 `mapstructure:"ftol"`
	GTol float64 `mapstructure:"gtol"`

	// InitialDamping is the starting Levenberg-Marquardt lambda.
	InitialDamping float64 `mapstructure:"initial_damping"`

	// JacobianStep is the forward-difference step used inside the solver.
	JacobianStep float64 `mapstructure:"jacobian_step"`

	// InitialRate seeds every pillar with exp(-InitialRate * days/365).
	InitialRate float64 `mapstructure:"initial_rate"`

	// BumpSize is the DOF bump of the reported sensitivity matrix.
	BumpSize float64 `mapstructure:"bump_size"`

	// LowerBound and UpperBound box every discount factor during calibration.
	LowerBound float64 `mapstructure:"lower_bound"`
	UpperBound float64 `mapstructure:"upper_bound"`

	// Workers > 1 computes the sensitivity matrix in parallel on cloned curve maps.
	Workers int `mapstructure:"workers"`
}

// DefaultSolver provides production-ready default values.
var DefaultSolver = SolverConfig{
	MaxIterations:     200,
	ResidualTolerance: 1e-12,
	AcceptTolerance:   1e-8,
	XTol:              1e-12,
	FTol:              1e-15,
	GTol:              1e-15,
	InitialDamping:    1e-3,
	JacobianStep:      1.4901161193847656e-08,
	InitialRate:       0.02,
	BumpSize:          1e-8,
	LowerBound:        0,
	UpperBound:        1,
	Workers:           1,
}

// Settings converts to solver settings.
func (s SolverConfig) Settings() solver.Settings {
	return solver.Settings{
		MaxIterations:     s.MaxIterations,
		MaxEvaluations:    s.MaxEvaluations,
		ResidualTolerance: s.ResidualTolerance,
		XTol:              s.XTol,
		FTol:              s.FTol,
		GTol:              s.GTol,
		InitialDamping:    s.InitialDamping,
		JacobianStep:      s.JacobianStep,
	}
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// ConventionConfig declares a named leg convention in addition to the presets.
type ConventionConfig struct {
	Name            string `mapstructure:"name"`
	DayCount        string `mapstructure:"day_count"`
	FrequencyMonths int    `mapstructure:"frequency_months"`
	Calendar        string `mapstructure:"calendar"`
	Roll            string `mapstructure:"roll"`
}

// CurveConfig declares one curve; list order is curve registration order.
type CurveConfig struct {
	Name          string `mapstructure:"name"`
	Interpolation string `mapstructure:"interpolation"`
}

// Load reads configPath (or config.yaml in the usual places), applying defaults
// and CURVEBUILD_* environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/curvebuild")
	}

	v.SetEnvPrefix("CURVEBUILD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file: defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solver.max_iterations", DefaultSolver.MaxIterations)
	v.SetDefault("solver.max_evaluations", DefaultSolver.MaxEvaluations)
	v.SetDefault("solver.residual_tolerance", DefaultSolver.ResidualTolerance)
	v.SetDefault("solver.accept_tolerance", DefaultSolver.AcceptTolerance)
	v.SetDefault("solver.xtol", DefaultSolver.XTol)
	v.SetDefault("solver.ftol", DefaultSolver.FTol)
	v.SetDefault("solver.gtol", DefaultSolver.GTol)
	v.SetDefault("solver.initial_damping", DefaultSolver.InitialDamping)
	v.SetDefault("solver.jacobian_step", DefaultSolver.JacobianStep)
	v.SetDefault("solver.initial_rate", DefaultSolver.InitialRate)
	v.SetDefault("solver.bump_size", DefaultSolver.BumpSize)
	v.SetDefault("solver.lower_bound", DefaultSolver.LowerBound)
	v.SetDefault("solver.upper_bound", DefaultSolver.UpperBound)
	v.SetDefault("solver.workers", DefaultSolver.Workers)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.table", "curve_quotes")

	v.SetDefault("eval_date", "")
}

// Validate checks the settings and the curve/instrument tables.
func (c *Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", curve.ErrConfiguration, err)
	}
	if c.EvalDate != "" {
		if _, err := utils.ParseDate(c.EvalDate); err != nil {
			return fmt.Errorf("%w: eval_date: %v", curve.ErrConfiguration, err)
		}
	}
	if len(c.Curves) == 0 {
		return fmt.Errorf("%w: no curves configured", curve.ErrConfiguration)
	}
	curves := make(map[string]bool, len(c.Curves))
	for _, cc := range c.Curves {
		if cc.Name == "" {
			return fmt.Errorf("%w: curve without a name", curve.ErrConfiguration)
		}
		if curves[cc.Name] {
			return fmt.Errorf("%w: duplicate curve %s", curve.ErrConfiguration, cc.Name)
		}
		curves[cc.Name] = true
		if _, err := curve.ParseInterpolationMode(cc.Interpolation); err != nil {
			return fmt.Errorf("curve %s: %w", cc.Name, err)
		}
	}
	seen := make(map[string]bool, len(c.Instruments))
	for _, spec := range c.Instruments {
		if seen[spec.Name] {
			return fmt.Errorf("%w: duplicate instrument %s", curve.ErrConfiguration, spec.Name)
		}
		seen[spec.Name] = true
		if !curves[spec.Curve] {
			return fmt.Errorf("%w: instrument %s references unknown curve %q", curve.ErrConfiguration, spec.Name, spec.Curve)
		}
		if _, err := spec.IsEnabled(); err != nil {
			return err
		}
	}
	return nil
}

// WithDefaults returns s with every zero field taken from DefaultSolver.
// LowerBound is left alone since its default is zero.
func (s SolverConfig) WithDefaults() SolverConfig {
	d := DefaultSolver
	if s.MaxIterations == 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.MaxEvaluations == 0 {
		s.MaxEvaluations = d.MaxEvaluations
	}
	if s.ResidualTolerance == 0 {
		s.ResidualTolerance = d.ResidualTolerance
	}
	if s.AcceptTolerance == 0 {
		s.AcceptTolerance = d.AcceptTolerance
	}
	if s.XTol == 0 {
		s.XTol = d.XTol
	}
	if s.FTol == 0 {
		s.FTol = d.FTol
	}
	if s.GTol == 0 {
		s.GTol = d.GTol
	}
	if s.InitialDamping == 0 {
		s.InitialDamping = d.InitialDamping
	}
	if s.JacobianStep == 0 {
		s.JacobianStep = d.JacobianStep
	}
	if s.InitialRate == 0 {
		s.InitialRate = d.InitialRate
	}
	if s.BumpSize == 0 {
		s.BumpSize = d.BumpSize
	}
	if s.UpperBound == 0 {
		s.UpperBound = d.UpperBound
	}
	if s.Workers == 0 {
		s.Workers = d.Workers
	}
	return s
}

// Validate checks the solver settings.
func (s SolverConfig) Validate() error {
	switch {
	case !(s.LowerBound < s.UpperBound):
		return fmt.Errorf("%w: solver bounds [%v, %v] are empty", curve.ErrConfiguration, s.LowerBound, s.UpperBound)
	case s.BumpSize <= 0:
		return fmt.Errorf("%w: solver.bump_size must be positive", curve.ErrConfiguration)
	case !(s.AcceptTolerance > 0):
		return fmt.Errorf("%w: solver.accept_tolerance must be positive", curve.ErrConfiguration)
	case s.Workers < 1:
		return fmt.Errorf("%w: solver.workers must be at least 1", curve.ErrConfiguration)
	case s.MaxIterations < 1:
		return fmt.Errorf("%w: solver.max_iterations must be at least 1", curve.ErrConfiguration)
	}
	return nil
}

// Register installs configured conventions and holidays into the process-wide registries.
func (c *Config) Register() error {
	for cal, dates := range c.Holidays {
		id, err := calendar.Parse(cal)
		if err != nil {
			return fmt.Errorf("%w: holidays: %v", curve.ErrConfiguration, err)
		}
		if err := calendar.AddHolidays(id, dates...); err != nil {
			return fmt.Errorf("%w: holidays: %v", curve.ErrConfiguration, err)
		}
	}
	for _, cc := range c.Conventions {
		cal, err := calendar.Parse(cc.Calendar)
		if err != nil {
			return fmt.Errorf("%w: convention %s: %v", curve.ErrConfiguration, cc.Name, err)
		}
		roll, err := calendar.ParseRoll(cc.Roll)
		if err != nil {
			return fmt.Errorf("%w: convention %s: %v", curve.ErrConfiguration, cc.Name, err)
		}
		if err := instruments.RegisterConvention(instruments.Convention{
			Name:            cc.Name,
			DayCount:        cc.DayCount,
			FrequencyMonths: cc.FrequencyMonths,
			Calendar:        cal,
			Roll:            roll,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Package config loads run configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/logger"
	"jcurve-lab/internal/performance"
)

// EnvPrefix is prepended to every environment override, e.g.
// JCURVE_SIMULATION_N_SIMULATIONS.
const EnvPrefix = "JCURVE"

type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Aggregate  AggregateConfig  `mapstructure:"aggregate"`
	Solver     SolverConfig     `mapstructure:"solver"`
	Runtime    RuntimeConfig    `mapstructure:"runtime"`
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Output     OutputConfig     `mapstructure:"output"`
}

type SimulationConfig struct {
	Years              int       `mapstructure:"years"`
	Commitments        float64   `mapstructure:"commitments"`
	PeakDrawdownYear   int       `mapstructure:"peak_drawdown_year"`
	CapitalCallPattern []float64 `mapstructure:"capital_call_pattern"`
	NoiseLow           float64   `mapstructure:"noise_low"`
	NoiseHigh          float64   `mapstructure:"noise_high"`
	NSimulations       int       `mapstructure:"n_simulations"`
	Seed               *int64    `mapstructure:"seed"` // unset = unseeded
}

type ScheduleConfig struct {
	Mode string `mapstructure:"mode"`
}

type AggregateConfig struct {
	PercentileLow  float64 `mapstructure:"percentile_low"`
	PercentileHigh float64 `mapstructure:"percentile_high"`
}

type SolverConfig struct {
	Method        string  `mapstructure:"method"`
	Guess         float64 `mapstructure:"guess"`
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

type RuntimeConfig struct {
	Workers int           `mapstructure:"workers"` // 0 = GOMAXPROCS
	Timeout time.Duration `mapstructure:"timeout"` // 0 = none
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	JSON        bool   `mapstructure:"json"`
}

type ServerConfig struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	MaxSimulations int    `mapstructure:"max_simulations"`
	MaxCells       int    `mapstructure:"max_cells"` // years * n_simulations per request
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

const (
	DefaultYears            = 10
	DefaultCommitments      = 100.0
	DefaultPeakDrawdownYear = 4
	DefaultNSimulations     = 100
	DefaultListenAddr       = ":8080"
	DefaultMaxSimulations   = 100000
	DefaultMaxCells         = 10_000_000
	DefaultOutputDir        = "output"
	DefaultLogLevel         = "info"
)

// DefaultCapitalCallPattern is the 40/30/20/10 drawdown pattern.
var DefaultCapitalCallPattern = []float64{0.4, 0.3, 0.2, 0.1}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"simulation.years":                DefaultYears,
		"simulation.commitments":          DefaultCommitments,
		"simulation.peak_drawdown_year":   DefaultPeakDrawdownYear,
		"simulation.capital_call_pattern": DefaultCapitalCallPattern,
		"simulation.noise_low":            domain.DefaultNoiseLow,
		"simulation.noise_high":           domain.DefaultNoiseHigh,
		"simulation.n_simulations":        DefaultNSimulations,
		"schedule.mode":                   string(domain.ScheduleModeLinear),
		"aggregate.percentile_low":        domain.DefaultPercentileLow,
		"aggregate.percentile_high":       domain.DefaultPercentileHigh,
		"solver.method":                   string(performance.MethodBisection),
		"solver.guess":                    performance.DefaultGuess,
		"solver.tolerance":                performance.DefaultTolerance,
		"solver.max_iterations":           performance.DefaultMaxIterations,
		"runtime.workers":                 0,
		"runtime.timeout":                 "0s",
		"log.level":                       DefaultLogLevel,
		"log.development":                 false,
		"log.json":                        false,
		"server.listen_addr":              DefaultListenAddr,
		"server.max_simulations":          DefaultMaxSimulations,
		"server.max_cells":                DefaultMaxCells,
		"output.dir":                      DefaultOutputDir,
	}
}

// Load reads configuration. An empty path uses defaults and environment
// only; otherwise the file type follows its extension (yaml, json, toml).
func Load(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without a default are only seen by Unmarshal when bound.
	if err := v.BindEnv("simulation.seed"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, cfg.Validate()
}

// Validate checks settings that are not simulation parameters.
// Parameter errors surface from Parameters().Validate() as ErrValidation.
func (c *Config) Validate() error {
	if _, err := domain.ParseScheduleMode(c.Schedule.Mode); err != nil {
		return err
	}
	if _, err := c.SolverSettings(); err != nil {
		return err
	}
	lo, hi := c.Aggregate.PercentileLow, c.Aggregate.PercentileHigh
	if math.IsNaN(lo) || math.IsNaN(hi) || lo < 0 || hi > 1 || lo > hi {
		return fmt.Errorf("%w: percentiles must satisfy 0 <= low <= high <= 1, got %g and %g",
			domain.ErrValidation, lo, hi)
	}
	if c.Runtime.Workers < 0 {
		return errors.New("invalid runtime.workers")
	}
	if c.Runtime.Timeout < 0 {
		return errors.New("invalid runtime.timeout")
	}
	if c.Server.MaxSimulations < 0 {
		return errors.New("invalid server.max_simulations")
	}
	if c.Server.MaxCells < 0 {
		return errors.New("invalid server.max_cells")
	}
	return nil
}

// Parameters returns the simulation parameters.
func (c *Config) Parameters() domain.SimulationParameters {
	s := c.Simulation
	return domain.SimulationParameters{
		Years:              s.Years,
		Commitments:        s.Commitments,
		PeakDrawdownYear:   s.PeakDrawdownYear,
		CapitalCallPattern: append([]float64(nil), s.CapitalCallPattern...),
		NoiseRange:         &domain.NoiseRange{Low: s.NoiseLow, High: s.NoiseHigh},
		NSimulations:       s.NSimulations,
		RandomSeed:         s.Seed,
	}
}

// Mode returns the configured schedule mode.
func (c *Config) Mode() domain.ScheduleMode {
	mode, err := domain.ParseScheduleMode(c.Schedule.Mode)
	if err != nil {
		return domain.ScheduleModeLinear
	}
	return mode
}

// Percentiles returns the configured {low, high} band.
func (c *Config) Percentiles() []float64 {
	return []float64{c.Aggregate.PercentileLow, c.Aggregate.PercentileHigh}
}

// SolverSettings returns the IRR solver configuration.
func (c *Config) SolverSettings() (performance.Solver, error) {
	method, err := performance.ParseMethod(c.Solver.Method)
	if err != nil {
		return performance.Solver{}, err
	}
	s := performance.Solver{
		Method:        method,
		Guess:         c.Solver.Guess,
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
	}
	return s, s.Validate()
}

// IRRSolver returns the IRR solver, falling back to the default when the
// configuration is invalid.
func (c *Config) IRRSolver() performance.Solver {
	s, err := c.SolverSettings()
	if err != nil {
		return performance.DefaultSolver
	}
	return s
}

// LoggerConfig returns the logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		Development: c.Log.Development,
		JSON:        c.Log.JSON,
	}
}

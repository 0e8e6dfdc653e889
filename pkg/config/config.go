// Package config loads evaluation settings from YAML files and
// PRASPEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"digital.vasic.praspel/pkg/checker"
	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/runner"
)

// EnvPrefix prefixes every environment override, e.g.
// PRASPEL_RUNNER_TRIALS.
const EnvPrefix = "PRASPEL"

// Config holds all configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Checker CheckerConfig `mapstructure:"checker"`
	Runner  RunnerConfig  `mapstructure:"runner"`
	Bank    BankConfig    `mapstructure:"bank"`
	Report  ReportConfig  `mapstructure:"report"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

// LoggingConfig selects the logger built by NewLogger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is console, json or both. "both" requires Dir.
	Format string `mapstructure:"format"`
	// Dir receives praspel.log and evaluations.log for the json
	// format. Empty writes JSON lines to stdout.
	Dir     string `mapstructure:"dir"`
	Verbose bool   `mapstructure:"verbose"`
	// Redact masks sensitive argument values and Secrets.
	Redact  bool     `mapstructure:"redact"`
	Secrets []string `mapstructure:"secrets"`
}

// CheckerConfig holds checker defaults.
type CheckerConfig struct {
	Kind        string `mapstructure:"kind"`
	Policy      string `mapstructure:"policy"`
	Seed        uint64 `mapstructure:"seed"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// RunnerConfig holds trial runner settings.
type RunnerConfig struct {
	Trials      int           `mapstructure:"trials"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// BankConfig locates contract banks.
type BankConfig struct {
	Glob  string `mapstructure:"glob"`
	Watch bool   `mapstructure:"watch"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	Dir     string `mapstructure:"dir"`
	History string `mapstructure:"history"`
	Pretty  bool   `mapstructure:"pretty"`
}

// MonitorConfig holds live monitor settings.
type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from path, then applies environment
// overrides. An empty path looks for praspel.yaml in the working
// directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("praspel")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.dir", d.Logging.Dir)
	v.SetDefault("logging.verbose", d.Logging.Verbose)
	v.SetDefault("logging.redact", d.Logging.Redact)
	v.SetDefault("logging.secrets", d.Logging.Secrets)

	v.SetDefault("checker.kind", d.Checker.Kind)
	v.SetDefault("checker.policy", d.Checker.Policy)
	v.SetDefault("checker.seed", d.Checker.Seed)
	v.SetDefault("checker.max_attempts", d.Checker.MaxAttempts)

	v.SetDefault("runner.trials", d.Runner.Trials)
	v.SetDefault("runner.timeout", d.Runner.Timeout)
	v.SetDefault("runner.concurrency", d.Runner.Concurrency)

	v.SetDefault("bank.glob", d.Bank.Glob)
	v.SetDefault("bank.watch", d.Bank.Watch)

	v.SetDefault("report.dir", d.Report.Dir)
	v.SetDefault("report.history", d.Report.History)
	v.SetDefault("report.pretty", d.Report.Pretty)

	v.SetDefault("monitor.enabled", d.Monitor.Enabled)
	v.SetDefault("monitor.addr", d.Monitor.Addr)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			Secrets: []string{},
		},
		Checker: CheckerConfig{
			Kind:        string(checker.KindRuntime),
			Policy:      checker.PropagateCallableErrors.String(),
			MaxAttempts: 64,
		},
		Runner: RunnerConfig{
			Trials:      100,
			Timeout:     5 * time.Second,
			Concurrency: 4,
		},
		Bank: BankConfig{
			Glob: "contracts/**/*.yaml",
		},
		Report: ReportConfig{
			Dir:     "results",
			History: filepath.Join("results", "history.db"),
			Pretty:  true,
		},
		Monitor: MonitorConfig{
			Addr: "127.0.0.1:8090",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	case "both":
		if c.Logging.Dir == "" {
			errs = append(errs, errors.New("logging.dir: required for format both"))
		}
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	if !knownKind(c.Checker.Kind) {
		errs = append(errs, fmt.Errorf("checker.kind: unknown kind %q", c.Checker.Kind))
	}
	if _, err := checker.ParseCallablePolicy(c.Checker.Policy); err != nil {
		errs = append(errs, fmt.Errorf("checker.policy: %w", err))
	}
	if c.Checker.MaxAttempts < 1 {
		errs = append(errs, errors.New("checker.max_attempts: must be at least 1"))
	}

	if c.Runner.Trials < 1 {
		errs = append(errs, errors.New("runner.trials: must be at least 1"))
	}
	if c.Runner.Timeout <= 0 {
		errs = append(errs, errors.New("runner.timeout: must be positive"))
	}
	if c.Runner.Concurrency < 1 {
		errs = append(errs, errors.New("runner.concurrency: must be at least 1"))
	}

	return errors.Join(errs...)
}

func knownKind(name string) bool {
	if name == "" {
		return true
	}
	for _, k := range checker.Kinds() {
		if string(k) == name {
			return true
		}
	}
	return false
}

// CheckerOptions converts the checker section into checker
// options. Generate mode is left to the caller.
func (c *Config) CheckerOptions() ([]checker.Option, error) {
	policy, err := checker.ParseCallablePolicy(c.Checker.Policy)
	if err != nil {
		return nil, err
	}
	return []checker.Option{
		checker.WithCallablePolicy(policy),
		checker.WithSeed(c.Checker.Seed),
		checker.WithMaxGenerationAttempts(c.Checker.MaxAttempts),
	}, nil
}

// RunnerOptions converts the checker and runner sections into
// runner options using logger for run output.
func (c *Config) RunnerOptions(logger logging.Logger) ([]runner.RunnerOption, error) {
	checkerOpts, err := c.CheckerOptions()
	if err != nil {
		return nil, err
	}
	return []runner.RunnerOption{
		runner.WithTrials(c.Runner.Trials),
		runner.WithTimeout(c.Runner.Timeout),
		runner.WithConcurrency(c.Runner.Concurrency),
		runner.WithSeed(c.Checker.Seed),
		runner.WithDefaultKind(checker.Kind(c.Checker.Kind)),
		runner.WithCheckerOptions(checkerOpts...),
		runner.WithLogger(logger),
	}, nil
}

// NewLogger builds the logger described by the logging section.
func (c *Config) NewLogger() (logging.Logger, error) {
	level, ok := logging.ParseLevel(c.Logging.Level)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	verbose := c.Logging.Verbose || level == logging.LevelDebug

	var logger logging.Logger
	switch c.Logging.Format {
	case "console":
		logger = logging.NewConsoleLogger(verbose)
	case "json":
		jl, err := c.jsonLogger(level, verbose)
		if err != nil {
			return nil, err
		}
		logger = jl
	case "both":
		jl, err := c.jsonLogger(level, verbose)
		if err != nil {
			return nil, err
		}
		logger = logging.NewMultiLogger(logging.NewConsoleLogger(verbose), jl)
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	if c.Logging.Redact {
		logger = logging.NewRedactingLogger(logger, c.Logging.Secrets...)
	}
	return logger, nil
}

func (c *Config) jsonLogger(level logging.LogLevel, verbose bool) (*logging.JSONLogger, error) {
	cfg := logging.LoggerConfig{
		Level:   level,
		Verbose: verbose,
	}
	if c.Logging.Dir != "" {
		cfg.OutputPath = filepath.Join(c.Logging.Dir, "praspel.log")
		cfg.EvaluationLog = filepath.Join(c.Logging.Dir, "evaluations.log")
	}
	return logging.NewJSONLogger(cfg)
}

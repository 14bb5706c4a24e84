package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/impfit/circuit"
	"github.com/arloliu/impfit/compress"
	"github.com/arloliu/impfit/results"
	"github.com/arloliu/impfit/solver"
)

// Environment variables read by Load.
const (
	EnvLogLevel = "IMPFIT_LOG_LEVEL"
	EnvOutput   = "IMPFIT_OUTPUT"
)

// ProtocolIterative enables staged fitting according to the model class.
const ProtocolIterative = "iterative"

// Config is the run configuration.
type Config struct {
	Solver      SolverConfig      `yaml:"solver"`
	Model       ModelConfig       `yaml:"model"`
	Sequential  *SequentialConfig `yaml:"sequential,omitempty"`
	Parameters  Params            `yaml:"parameters,omitempty"`
	Parameters2 Params            `yaml:"parameters2,omitempty"`
	// ConstantsFile is read instead of Constants when set.
	ConstantsFile string           `yaml:"constants_file,omitempty"`
	Constants     *Constants       `yaml:"constants,omitempty"`
	Data          DataConfig       `yaml:"data"`
	Output        OutputConfig     `yaml:"output"`
	Clustering    ClusteringConfig `yaml:"clustering"`
	Logging       LoggingConfig    `yaml:"logging"`

	// baseDir resolves relative parameter and constants files.
	baseDir string
}

// SolverConfig selects and tunes the solver.
type SolverConfig struct {
	Name          string `yaml:"name"`
	MaxIterations int    `yaml:"max_iterations,omitempty"`
	Walkers       int    `yaml:"walkers,omitempty"`
	Steps         int    `yaml:"steps,omitempty"`
	Burn          int    `yaml:"burn,omitempty"`
	Thin          int    `yaml:"thin,omitempty"`
	Seed          uint64 `yaml:"seed,omitempty"`
	Workers       int    `yaml:"workers,omitempty"`
}

// ModelConfig describes one circuit model.
type ModelConfig struct {
	// Circuit is the equivalent-circuit expression, e.g. "R + ColeCole".
	Circuit string `yaml:"circuit"`
	// Class selects the freeze schedule used by the iterative protocol.
	Class string `yaml:"class,omitempty"`
	// Protocol is "iterative" for staged fitting; anything else fits once.
	Protocol string `yaml:"protocol,omitempty"`
	// Logscale fits the base-10 logarithm of the impedance.
	Logscale bool `yaml:"logscale,omitempty"`
}

// SequentialConfig describes the second model of a sequential run.
type SequentialConfig struct {
	Model2 ModelConfig `yaml:"model2"`
	// Communicate lists the names handed from model 1 to model 2.
	Communicate []string `yaml:"communicate"`
}

// DataConfig selects the spectra to process.
type DataConfig struct {
	Directory     string   `yaml:"directory,omitempty"`
	Files         []string `yaml:"files,omitempty"`
	ExcludeEnding string   `yaml:"exclude_ending,omitempty"`
	MinFrequency  float64  `yaml:"min_frequency,omitempty"`
	MaxFrequency  float64  `yaml:"max_frequency,omitempty"`
	// DataSets caps the number of repeats used per file.
	DataSets int `yaml:"data_sets,omitempty"`
}

// OutputConfig controls the results file.
type OutputConfig struct {
	Path        string `yaml:"path,omitempty"`
	Write       bool   `yaml:"write"`
	Compression string `yaml:"compression,omitempty"`
}

// ClusteringConfig controls walker clustering of ensemble results.
type ClusteringConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Constant float64 `yaml:"constant,omitempty"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{Name: solver.NameLeastSquares},
		Output: OutputConfig{Write: true},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}

		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if out := os.Getenv(EnvOutput); out != "" {
		c.Output.Path = out
	}
}

// ValidLogFormats lists the accepted logging formats.
var ValidLogFormats = []string{"console", "json"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := solver.New(c.Solver.Name, c.Solver.Options()...); err != nil {
		return fmt.Errorf("invalid solver: %w", err)
	}
	if err := c.Model.validate("model"); err != nil {
		return err
	}
	if c.Sequential != nil {
		if err := c.Sequential.Model2.validate("sequential.model2"); err != nil {
			return err
		}
		if len(c.Sequential.Communicate) == 0 {
			return fmt.Errorf("sequential run needs at least one communicated parameter")
		}
	}
	if _, err := compress.ParseCompressionType(c.Output.Compression); err != nil {
		return fmt.Errorf("invalid output compression: %w", err)
	}
	if c.Clustering.Enabled && c.Clustering.Constant <= 0 {
		return fmt.Errorf("clustering needs a positive constant, got %v", c.Clustering.Constant)
	}
	if c.Data.MinFrequency < 0 || c.Data.MaxFrequency < 0 ||
		(c.Data.MaxFrequency > 0 && c.Data.MinFrequency > c.Data.MaxFrequency) {
		return fmt.Errorf("invalid frequency window [%v, %v]", c.Data.MinFrequency, c.Data.MaxFrequency)
	}
	if c.Data.DataSets < 0 {
		return fmt.Errorf("data_sets must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if !slices.Contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}

	return nil
}

func (m ModelConfig) validate(field string) error {
	if strings.TrimSpace(m.Circuit) == "" {
		return fmt.Errorf("%s.circuit is required", field)
	}

	return nil
}

// Iterative reports whether the model uses staged fitting.
func (m ModelConfig) Iterative() bool {
	return strings.EqualFold(m.Protocol, ProtocolIterative)
}

// Options converts the solver section to solver options. Zero fields keep the
// solver defaults.
func (s SolverConfig) Options() []solver.Option {
	var opts []solver.Option
	if s.MaxIterations > 0 {
		opts = append(opts, solver.WithMaxIterations(s.MaxIterations))
	}
	if s.Walkers > 0 {
		opts = append(opts, solver.WithWalkers(s.Walkers))
	}
	if s.Steps > 0 {
		opts = append(opts, solver.WithSteps(s.Steps))
	}
	if s.Burn > 0 {
		opts = append(opts, solver.WithBurn(s.Burn))
	}
	if s.Thin > 0 {
		opts = append(opts, solver.WithThin(s.Thin))
	}
	if s.Seed > 0 {
		opts = append(opts, solver.WithSeed(s.Seed))
	}
	if s.Workers > 0 {
		opts = append(opts, solver.WithWorkers(s.Workers))
	}

	return opts
}

// BaseDir returns the directory relative files are resolved against.
func (c *Config) BaseDir() string {
	return c.baseDir
}

// SetBaseDir changes the directory relative files are resolved against.
func (c *Config) SetBaseDir(dir string) {
	c.baseDir = dir
}

// ResolveConstants returns the constants of the run.
func (c *Config) ResolveConstants() (circuit.Constants, error) {
	if c.ConstantsFile != "" {
		path := c.ConstantsFile
		if !filepath.IsAbs(path) && c.baseDir != "" {
			path = filepath.Join(c.baseDir, path)
		}

		return LoadConstants(path)
	}

	return c.Constants.Resolve()
}

// OutputPath returns the results path, falling back to the default file name
// of the run mode.
func (c *Config) OutputPath() string {
	if c.Output.Path != "" {
		return c.Output.Path
	}
	if c.Sequential != nil {
		return results.DefaultSequentialFile
	}

	return results.DefaultFile
}

// OutputCompression returns the configured archive codec.
func (c *Config) OutputCompression() (compress.CompressionType, error) {
	return compress.ParseCompressionType(c.Output.Compression)
}

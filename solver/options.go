package solver

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/internal/options"
)

// Default solver settings.
const (
	DefaultMaxIterations = 2000
	DefaultWalkers       = 100
	DefaultSteps         = 1000
	DefaultBurn          = 0
	DefaultThin          = 1
	DefaultSeed          = 1
)

// Config holds the knobs shared by all solvers. Each solver reads the fields
// it needs.
type Config struct {
	MaxIterations int
	Walkers       int
	Steps         int
	Burn          int
	Thin          int
	Seed          uint64
	Workers       int
	Logger        *zap.Logger
}

func defaultConfig() *Config {
	return &Config{
		MaxIterations: DefaultMaxIterations,
		Walkers:       DefaultWalkers,
		Steps:         DefaultSteps,
		Burn:          DefaultBurn,
		Thin:          DefaultThin,
		Seed:          DefaultSeed,
		Workers:       runtime.GOMAXPROCS(0),
		Logger:        zap.NewNop(),
	}
}

func (c *Config) validate() error {
	if c.Burn >= c.Steps {
		return fmt.Errorf("%w: burn %d must be below steps %d", errs.ErrInvalidSampler, c.Burn, c.Steps)
	}

	return nil
}

// Option configures a solver.
type Option = options.Option[*Config]

// WithMaxIterations limits the major iterations of least-squares solvers.
func WithMaxIterations(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("max iterations must be positive, got %d", n)
		}
		c.MaxIterations = n

		return nil
	})
}

// WithWalkers sets the number of ensemble walkers.
func WithWalkers(n int) Option {
	return options.New(func(c *Config) error {
		if n < 2 {
			return fmt.Errorf("%w: need at least 2 walkers, got %d", errs.ErrInvalidSampler, n)
		}
		c.Walkers = n

		return nil
	})
}

// WithSteps sets the number of ensemble steps.
func WithSteps(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: steps must be positive, got %d", errs.ErrInvalidSampler, n)
		}
		c.Steps = n

		return nil
	})
}

// WithBurn discards the first n steps of the chain.
func WithBurn(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("%w: burn must not be negative, got %d", errs.ErrInvalidSampler, n)
		}
		c.Burn = n

		return nil
	})
}

// WithThin keeps every n-th step after burn-in.
func WithThin(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: thin must be positive, got %d", errs.ErrInvalidSampler, n)
		}
		c.Thin = n

		return nil
	})
}

// WithSeed seeds the sampler's random source.
func WithSeed(seed uint64) Option {
	return options.NoError(func(c *Config) {
		c.Seed = seed
	})
}

// WithWorkers limits the goroutines evaluating log-probabilities. Values
// below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return options.NoError(func(c *Config) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		c.Workers = n
	})
}

// WithLogger sets the diagnostics sink. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	})
}

package ensemble

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/internal/options"
)

// NativeEstimator computes confidence intervals for least-squares results with
// the solver's own routine.
type NativeEstimator interface {
	ConfInterval(ctx context.Context, res *fit.Result) (map[string]Interval, error)
}

// Estimator selects the confidence-interval path from the solver family of a
// result.
type Estimator struct {
	logger   *zap.Logger
	native   NativeEstimator
	constant float64
	cluster  bool
}

// Option configures an Estimator.
type Option = options.Option[*Estimator]

// WithLogger sets the diagnostics sink. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	})
}

// WithNative sets the estimator used for least-squares results.
func WithNative(native NativeEstimator) Option {
	return options.NoError(func(e *Estimator) {
		e.native = native
	})
}

// WithClustering clusters ensemble chains with the given constant before
// computing percentiles.
func WithClustering(constant float64) Option {
	return options.New(func(e *Estimator) error {
		if math.IsNaN(constant) || constant <= 0 {
			return fmt.Errorf("%w: clustering constant must be positive, got %g", errs.ErrInvalidConstant, constant)
		}
		e.cluster = true
		e.constant = constant

		return nil
	})
}

// NewEstimator creates an estimator. Without WithClustering the full chain is
// used; without WithNative least-squares results are rejected.
func NewEstimator(opts ...Option) (*Estimator, error) {
	e := &Estimator{logger: zap.NewNop()}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// Estimate returns the confidence intervals of res.
//
// Ensemble results use the percentile path (clustered when configured);
// least-squares results are delegated to the native estimator.
//
// Returns errs.ErrNoNativeEstimator for least-squares results without a
// native estimator.
func (e *Estimator) Estimate(ctx context.Context, res *fit.Result) (map[string]Interval, error) {
	if res == nil {
		return nil, errors.New("ensemble: nil result")
	}

	if !res.IsEnsemble() {
		if e.native == nil {
			return nil, fmt.Errorf("%w for %s results", errs.ErrNoNativeEstimator, res.Solver)
		}
		e.logger.Debug("using native confidence intervals", zap.String("solver", res.Solver))

		return e.native.ConfInterval(ctx, res)
	}

	var clustered *Clustered
	if e.cluster {
		var err error
		clustered, err = Cluster(res, e.constant)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("clustering cutoff",
			zap.Int("cut", clustered.Cut),
			zap.Int("walkers", len(clustered.Scores)),
			zap.Ints("retained", clustered.Walkers))
	}

	return ConfInterval(res, clustered)
}

// BoundValues returns two copies of best, with every parameter that has an
// interval replaced by its lower and upper bound at sigma. Evaluating the model
// at both gives the uncertainty band around the best fit.
func BoundValues(best map[string]float64, ci map[string]Interval, sigma int) (map[string]float64, map[string]float64, error) {
	lower := maps.Clone(best)
	upper := maps.Clone(best)
	for name, iv := range ci {
		if _, ok := best[name]; !ok {
			continue
		}
		lo, hi, err := iv.Bounds(sigma)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		lower[name] = lo
		upper[name] = hi
	}

	return lower, upper, nil
}

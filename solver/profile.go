package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/impfit/ensemble"
	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/internal/options"
)

const (
	profileMaxSteps   = 200
	profileBisections = 40
)

// sigmaProb are the two-sided probabilities of 1σ, 2σ and 3σ.
var sigmaProb = [3]float64{0.6826894921370859, 0.9544997361036416, 0.9973002039367398}

// Profiler computes profile-likelihood confidence intervals for least-squares
// results.
//
// For each varying parameter it steps away from the best value, refitting the
// remaining parameters with the profiled one fixed, until the F-test
// probability
//
//	P = F_cdf((χ² - χ²best)/χ²best · (N - nvary); 1, N - nvary)
//
// passes each σ target, then bisects the crossing. Bounds that are never
// reached within the parameter limits are reported as the limit itself.
type Profiler struct {
	problem fit.Problem
	solver  fit.Solver
	logger  *zap.Logger
}

var _ ensemble.NativeEstimator = (*Profiler)(nil)

// NewProfiler creates a profiler for results of problem. The refits use a
// least_squares solver built from opts.
func NewProfiler(problem fit.Problem, opts ...Option) (*Profiler, error) {
	cfg, err := options.Build(defaultConfig(), (*Config).validate, opts...)
	if err != nil {
		return nil, err
	}
	s := &LeastSquares{name: NameLeastSquares, method: methods[NameLeastSquares], cfg: *cfg}

	return &Profiler{problem: problem, solver: s, logger: cfg.Logger}, nil
}

// ConfInterval returns the profile interval of every varying parameter of res.
// The median slot holds the best value.
func (pr *Profiler) ConfInterval(ctx context.Context, res *fit.Result) (map[string]ensemble.Interval, error) {
	if res == nil || res.Params == nil {
		return nil, errors.New("profile needs a result with a fitted parameter set")
	}
	if res.IsEnsemble() {
		return nil, errors.New("profile intervals need a least-squares result")
	}

	dof := res.NData - res.NVarys
	if dof <= 0 {
		return nil, fmt.Errorf("%w: %d data points for %d varying parameters",
			errs.ErrShapeMismatch, res.NData, res.NVarys)
	}

	out := make(map[string]ensemble.Interval, len(res.VarNames))
	for _, name := range res.VarNames {
		iv, err := pr.profile(ctx, res, name, dof)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		out[name] = iv
	}

	return out, nil
}

// profile computes the interval of one parameter.
func (pr *Profiler) profile(ctx context.Context, res *fit.Result, name string, dof int) (ensemble.Interval, error) {
	p, _ := res.Params.Get(name)
	best := res.BestValues[name]

	step := 0.0
	if res.Stderr != nil {
		step = res.Stderr[name]
	}
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = 0.01 * math.Abs(best)
	}
	if step == 0 {
		step = 0.01
	}

	fdist := distuv.F{D1: 1, D2: float64(dof)}
	chi2best := math.Max(res.Chi2, math.SmallestNonzeroFloat64)
	prob := func(x float64) (float64, error) {
		chi2, err := pr.chi2At(ctx, res, name, x)
		if err != nil {
			return 0, err
		}
		ratio := math.Max(chi2-chi2best, 0) / chi2best * float64(dof)

		return fdist.CDF(ratio), nil
	}

	var values [7]float64
	values[3] = best
	for dir := -1; dir <= 1; dir += 2 {
		limit := p.Max
		if dir < 0 {
			limit = p.Min
		}

		bounds, err := pr.walk(prob, best, step*float64(dir), limit)
		if err != nil {
			return nil, err
		}
		for i, v := range bounds {
			if dir < 0 {
				values[2-i] = v
			} else {
				values[4+i] = v
			}
		}
	}

	pr.logger.Debug("profile interval", zap.String("param", name), zap.Float64s("values", values[:]))

	return ensemble.NewInterval(values), nil
}

// walk steps from best by step until every σ target is crossed or limit is
// reached, then bisects each crossing. It returns the 1σ, 2σ and 3σ bound.
func (pr *Profiler) walk(prob func(float64) (float64, error), best, step, limit float64) ([3]float64, error) {
	var out [3]float64

	prevX := best
	target := 0
	for i := 1; i <= profileMaxSteps && target < len(sigmaProb); i++ {
		x := best + float64(i)*step
		atLimit := false
		if (step > 0 && x >= limit) || (step < 0 && x <= limit) {
			x = limit
			atLimit = true
		}

		pv, err := prob(x)
		if err != nil {
			return out, err
		}
		for target < len(sigmaProb) && pv >= sigmaProb[target] {
			b, err := bisect(prob, prevX, x, sigmaProb[target])
			if err != nil {
				return out, err
			}
			out[target] = b
			target++
		}
		if atLimit {
			break
		}
		prevX = x
	}

	for ; target < len(sigmaProb); target++ {
		out[target] = limit
		if math.IsInf(limit, 0) {
			out[target] = math.NaN()
		}
	}

	return out, nil
}

// bisect finds x in [a, b] with prob(x) ≈ target, assuming prob(a) < target ≤ prob(b).
func bisect(prob func(float64) (float64, error), a, b, target float64) (float64, error) {
	for range profileBisections {
		mid := 0.5 * (a + b)
		pv, err := prob(mid)
		if err != nil {
			return 0, err
		}
		if pv < target {
			a = mid
		} else {
			b = mid
		}
		if math.Abs(b-a) <= 1e-10*math.Max(math.Abs(b), 1e-300) {
			break
		}
	}

	return 0.5 * (a + b), nil
}

// chi2At refits res with name fixed at x and returns the resulting χ².
func (pr *Profiler) chi2At(ctx context.Context, res *fit.Result, name string, x float64) (float64, error) {
	params := res.Params.Clone()
	if err := params.Fix(name, x); err != nil {
		return 0, err
	}

	p := pr.problem
	p.Params = params

	if len(params.Varying()) == 0 {
		z, err := p.Evaluator(p.Omega, params.Values())
		if err != nil {
			return 0, err
		}

		return fit.SumSquares(fit.Residual(nil, z, p.Z)), nil
	}

	refit, err := pr.solver.Fit(ctx, p)
	if err != nil {
		return 0, err
	}

	return refit.Chi2, nil
}

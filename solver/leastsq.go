package solver

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/arloliu/impfit/fit"
)

// LeastSquares minimises the sum of squared residuals with a gonum method.
type LeastSquares struct {
	name   string
	method func() optimize.Method
	cfg    Config
}

var _ fit.Solver = (*LeastSquares)(nil)

// Name returns the solver name.
func (s *LeastSquares) Name() string { return s.name }

// Family returns fit.FamilyLeastSquares.
func (s *LeastSquares) Family() fit.Family { return fit.FamilyLeastSquares }

// Fit minimises Σ r² over the varying parameters of p.
func (s *LeastSquares) Fit(ctx context.Context, p fit.Problem) (*fit.Result, error) {
	obj, err := newObjective(p)
	if err != nil {
		return nil, err
	}

	u0 := obj.toInternal(obj.initial())
	problem := optimize.Problem{
		Func: obj.cost,
		Grad: func(grad, u []float64) {
			fd.Gradient(grad, obj.cost, u, &fd.Settings{Formula: fd.Central})
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		MajorIterations: s.cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-15,
			Relative:   1e-12,
			Iterations: 50,
		},
	}

	opt, minErr := optimize.Minimize(problem, u0, settings, s.method())
	if opt == nil {
		return nil, fmt.Errorf("%s: %w", s.name, minErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if obj.err != nil && math.IsInf(opt.F, 1) {
		return nil, fmt.Errorf("%s: evaluator: %w", s.name, obj.err)
	}

	x := obj.toExternal(opt.X)
	best, err := obj.best(x)
	if err != nil {
		return nil, err
	}

	res, err := fit.Summarize(p, best, s.name, fit.FamilyLeastSquares)
	if err != nil {
		return nil, err
	}
	res.NFev = int(obj.nfev.Load())
	res.Outcome = outcome(opt, minErr)
	res.Stderr = s.stderr(obj, opt.X, res.RedChi2)

	s.cfg.Logger.Debug("least squares finished",
		zap.String("solver", s.name),
		zap.String("status", opt.Status.String()),
		zap.Int("iterations", opt.Stats.MajorIterations),
		zap.Int("nfev", res.NFev),
		zap.Float64("chi2", res.Chi2))

	return res, nil
}

// outcome converts gonum's termination status into a fit.Outcome.
func outcome(opt *optimize.Result, err error) fit.Outcome {
	converged := err == nil
	switch opt.Status {
	case optimize.Failure, optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		converged = false
	}

	msg := fmt.Sprintf("%s after %d iterations and %d function evaluations",
		opt.Status, opt.Stats.MajorIterations, opt.Stats.FuncEvaluations)
	if err != nil {
		msg += ": " + err.Error()
	}

	return fit.Outcome{Message: msg, Source: "optimize.Status", Converged: converged}
}

// stderr estimates standard errors from the residual Jacobian at the optimum
// u (internal coordinates). It returns nil when the covariance is singular.
func (s *LeastSquares) stderr(obj *objective, u []float64, redchi2 float64) map[string]float64 {
	cov, ok := covariance(obj, u, redchi2)
	if !ok {
		s.cfg.Logger.Debug("covariance unavailable", zap.String("solver", s.name))
		return nil
	}

	out := make(map[string]float64, len(obj.names))
	for i, name := range obj.names {
		out[name] = math.Abs(obj.transforms[i].Scale(u[i])) * math.Sqrt(cov.At(i, i))
	}

	return out
}

// covariance returns (JᵀJ)⁻¹·redchi2 in internal coordinates.
func covariance(obj *objective, u []float64, redchi2 float64) (*mat.Dense, bool) {
	if math.IsNaN(redchi2) || math.IsInf(redchi2, 0) {
		return nil, false
	}

	m, n := obj.p.NData(), len(u)
	jac := mat.NewDense(m, n, nil)

	var failed bool
	fd.Jacobian(jac, func(y, u []float64) {
		r, err := obj.residual(y, obj.toExternal(u))
		if err != nil {
			failed = true
			return
		}
		copy(y, r)
	}, u, &fd.JacobianSettings{Formula: fd.Central})
	if failed {
		return nil, false
	}

	var jtj, inv mat.Dense
	jtj.Mul(jac.T(), jac)
	if err := inv.Inverse(&jtj); err != nil {
		return nil, false
	}
	inv.Scale(redchi2, &inv)

	for i := range n {
		if v := inv.At(i, i); v < 0 || math.IsNaN(v) {
			return nil, false
		}
	}

	return &inv, true
}

package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/impfit/circuit"
	"github.com/arloliu/impfit/dataset"
	"github.com/arloliu/impfit/ensemble"
	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/internal/options"
	"github.com/arloliu/impfit/model"
	"github.com/arloliu/impfit/param"
	"github.com/arloliu/impfit/results"
)

// ModelSpec describes how one model is fitted to every record.
type ModelSpec struct {
	// Name labels the model in logs.
	Name string
	// Class selects the freeze schedule when Staged is set.
	Class     string
	Staged    bool
	Evaluator model.Evaluator
	// Logscale fits log10 of the impedance instead of the impedance.
	Logscale bool
	Params   *param.Set
	Solver   fit.Solver
}

func (s ModelSpec) validate(label string) error {
	if s.Evaluator == nil {
		return fmt.Errorf("%s: nil evaluator", label)
	}
	if s.Params == nil {
		return fmt.Errorf("%s: nil parameter set", label)
	}
	if s.Solver == nil {
		return fmt.Errorf("%s: nil solver", label)
	}

	return nil
}

func (s ModelSpec) request(rec dataset.Record, params *param.Set) fit.Request {
	ev, z := s.Evaluator, rec.Z
	if s.Logscale {
		ev, z = circuit.Logscale(ev), circuit.LogscaleData(z)
	}

	return fit.Request{
		Class:     s.Class,
		Staged:    s.Staged,
		Evaluator: ev,
		Omega:     rec.Omega,
		Z:         z,
		Params:    params,
		Solver:    s.Solver,
	}
}

// Problem returns the optimizer problem spec poses for rec, e.g. to compute
// profile confidence intervals of a finished fit.
func (s ModelSpec) Problem(rec dataset.Record, params *param.Set) fit.Problem {
	req := s.request(rec, params)

	return fit.Problem{Evaluator: req.Evaluator, Omega: req.Omega, Z: req.Z, Params: params}
}

// RecordResult is passed to the record hook.
type RecordResult struct {
	Record dataset.Record
	Result *fit.Result
	Trail  *fit.Trail
	// Model2 and Trail2 are set in sequential runs.
	Model2 *fit.Result
	Trail2 *fit.Trail
}

// Summary describes a finished run.
type Summary struct {
	// Processed counts the records that produced a result.
	Processed int
	Document  *results.Document
	// Last is the result of the last record (model 2 in sequential runs).
	Last *fit.Result
	// LastPair holds both results of the last record of a sequential run.
	LastPair [2]*fit.Result
	// LastRecord is the last record that produced a result.
	LastRecord dataset.Record
}

// Runner drives the controller over a dataset. It holds no per-run state.
type Runner struct {
	controller   *fit.Controller
	logger       *zap.Logger
	writer       *results.Writer
	hook         func(RecordResult)
	chainReports bool
}

// New creates a runner.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{logger: zap.NewNop()}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}
	if r.controller == nil {
		r.controller = fit.NewController(fit.WithLogger(r.logger))
	}

	return r, nil
}

// Run fits spec to every record of ds.
//
// Parameters:
//   - ctx: Cancels the run between records and inside solvers
//   - ds: Records to process
//   - spec: The model to fit
//
// Returns:
//   - *Summary: Collected results; Processed is zero when there was nothing to do
//   - error: First fit failure, cancellation or write failure
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset, spec ModelSpec) (*Summary, error) {
	if err := spec.validate("model"); err != nil {
		return nil, err
	}

	sum := &Summary{Document: results.NewDocument()}
	for rec := range ds.Records() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := rec.ID()
		r.logger.Info("processing record", zap.String("record", id), zap.String("model", spec.Name))

		res, trail, err := r.controller.Fit(ctx, spec.request(rec, spec.Params))
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		r.report(id, res)

		sum.Document.Set(id, results.Single(res.BestValues))
		sum.Processed++
		sum.Last = res
		sum.LastRecord = rec
		if r.hook != nil {
			r.hook(RecordResult{Record: rec, Result: res, Trail: trail})
		}
	}

	if err := r.flush(sum); err != nil {
		return nil, err
	}

	return sum, nil
}

// RunSequential fits spec1 and then spec2 to every record. After the first
// fit, each name in communicate is copied from the first result into the
// second model's parameters and fixed there.
//
// A name that the second model does not have is logged and aborts the run
// with errs.ErrInvalidHandoff; the record is not added and nothing is
// written.
func (r *Runner) RunSequential(ctx context.Context, ds *dataset.Dataset, spec1, spec2 ModelSpec, communicate []string) (*Summary, error) {
	if err := spec1.validate("model1"); err != nil {
		return nil, err
	}
	if err := spec2.validate("model2"); err != nil {
		return nil, err
	}

	sum := &Summary{Document: results.NewDocument()}
	for rec := range ds.Records() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := rec.ID()
		r.logger.Info("processing record", zap.String("record", id), zap.String("model", spec1.Name))

		res1, trail1, err := r.controller.Fit(ctx, spec1.request(rec, spec1.Params))
		if err != nil {
			return nil, fmt.Errorf("record %s model1: %w", id, err)
		}
		r.report(id, res1)

		params2, err := r.handoff(id, res1, spec2.Params, communicate)
		if err != nil {
			return nil, err
		}

		r.logger.Info("processing record", zap.String("record", id), zap.String("model", spec2.Name))
		res2, trail2, err := r.controller.Fit(ctx, spec2.request(rec, params2))
		if err != nil {
			return nil, fmt.Errorf("record %s model2: %w", id, err)
		}
		r.report(id, res2)

		sum.Document.Set(id, results.Pair(res1.BestValues, res2.BestValues))
		sum.Processed++
		sum.Last = res2
		sum.LastPair = [2]*fit.Result{res1, res2}
		sum.LastRecord = rec
		if r.hook != nil {
			r.hook(RecordResult{Record: rec, Result: res1, Trail: trail1, Model2: res2, Trail2: trail2})
		}
	}

	if err := r.flush(sum); err != nil {
		return nil, err
	}

	return sum, nil
}

// handoff returns a copy of target with every communicated value fixed.
func (r *Runner) handoff(id string, from *fit.Result, target *param.Set, communicate []string) (*param.Set, error) {
	params := target.Clone()
	for _, name := range communicate {
		v, ok := from.BestValues[name]
		if !ok || !params.Has(name) {
			r.logger.Error("invalid hand-off parameter",
				zap.String("record", id),
				zap.String("param", name),
				zap.Bool("in_model1", ok),
				zap.Bool("in_model2", params.Has(name)))

			return nil, fmt.Errorf("record %s: %w: %s", id, errs.ErrInvalidHandoff, name)
		}
		if err := params.Fix(name, v); err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
	}

	return params, nil
}

func (r *Runner) report(id string, res *fit.Result) {
	if !r.chainReports || !res.IsEnsemble() {
		return
	}
	rep, err := ensemble.Report(res)
	if err != nil {
		if !errors.Is(err, errs.ErrNoChain) {
			r.logger.Warn("chain report failed", zap.String("record", id), zap.Error(err))
		}
		return
	}
	rep.Log(r.logger.With(zap.String("record", id)))
}

func (r *Runner) flush(sum *Summary) error {
	if sum.Processed == 0 {
		r.logger.Info("there was no file to process")
		return nil
	}
	if r.writer == nil {
		return nil
	}
	if err := r.writer.Write(sum.Document); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	r.logger.Info("results written", zap.String("path", r.writer.Path()), zap.Int("records", sum.Processed))

	return nil
}

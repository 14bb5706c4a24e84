package fit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/impfit/internal/options"
	"github.com/arloliu/impfit/model"
	"github.com/arloliu/impfit/param"
)

// Request describes one staged fit of one record.
type Request struct {
	// Class names the model class; its schedule applies only when Staged is set.
	Class string
	// Staged enables the iterative protocol. Without it the fit has one stage.
	Staged    bool
	Evaluator model.Evaluator
	Omega     []float64
	Z         []complex128
	// Params is the initial set. It is cloned and never modified.
	Params *param.Set
	Solver Solver
}

// StageRecord is the trail entry of one stage.
type StageRecord struct {
	// Index is the 0-based stage index.
	Index int
	// Frozen lists the names frozen going into this stage.
	Frozen []string
	// Params is the working set handed to the solver.
	Params *param.Set
	// Fingerprint identifies Params; it is logged with the stage.
	Fingerprint uint64
	// Outcome is the solver diagnostic of this stage.
	Outcome Outcome
	Chi2    float64
}

// Trail is the per-stage diagnostic history of a staged fit.
type Trail struct {
	Class  string
	Stages []StageRecord
}

// Last returns the final stage record, or nil for an empty trail.
func (t *Trail) Last() *StageRecord {
	if t == nil || len(t.Stages) == 0 {
		return nil
	}

	return &t.Stages[len(t.Stages)-1]
}

// Controller runs staged fits. It holds no per-fit state and may be shared.
type Controller struct {
	logger   *zap.Logger
	registry *model.Registry
}

// NewController creates a controller with the built-in class registry and a
// no-op logger.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		logger:   zap.NewNop(),
		registry: model.Builtin(),
	}
	_ = options.Apply(c, opts...)

	return c
}

// Registry returns the class registry used by the controller.
func (c *Controller) Registry() *model.Registry {
	return c.registry
}

// schedule resolves the class and stage count for req.
func (c *Controller) schedule(req Request) (model.Class, int) {
	if !req.Staged {
		return model.Class{Name: req.Class, Stages: 1}, 1
	}

	class, ok := c.registry.Lookup(req.Class)
	if !ok {
		c.logger.Info("no iterative scheme for this model class, fitting in one stage",
			zap.String("class", req.Class))
		return model.Class{Name: req.Class, Stages: 1}, 1
	}

	return class, class.Stages
}

// Fit runs every stage of req and returns the final stage's result.
//
// Before stage i > 0 every value of the previous result is carried into the
// working set, then the class freeze list for stage i is applied. A freeze
// name missing from the working set fails with errs.ErrUnknownParameter.
//
// Parameters:
//   - ctx: Checked between stages and passed to the solver
//   - req: The fit request
//
// Returns:
//   - *Result: Final stage result
//   - *Trail: One record per completed stage, also on error
//   - error: Invalid request, solver failure or schedule error
func (c *Controller) Fit(ctx context.Context, req Request) (*Result, *Trail, error) {
	if req.Solver == nil {
		return nil, nil, errors.New("fit: nil solver")
	}
	if req.Params == nil {
		return nil, nil, errors.New("fit: nil parameter set")
	}

	class, stages := c.schedule(req)
	trail := &Trail{Class: class.Name, Stages: make([]StageRecord, 0, stages)}
	working := req.Params.Clone()

	var prev *Result
	for i := range stages {
		if err := ctx.Err(); err != nil {
			return nil, trail, err
		}

		var frozen []string
		if i > 0 {
			for _, name := range working.Names() {
				v, ok := prev.BestValues[name]
				if !ok {
					continue
				}
				if err := working.SetValue(name, v); err != nil {
					return nil, trail, fmt.Errorf("stage %d: %w", i+1, err)
				}
			}

			frozen = class.FreezeBefore(i)
			if err := working.Freeze(frozen...); err != nil {
				return nil, trail, fmt.Errorf("stage %d of %s: %w", i+1, class.Name, err)
			}
		}

		snapshot := working.Clone()
		fp := snapshot.Fingerprint()
		c.logger.Info("fitting round",
			zap.Int("stage", i+1),
			zap.Int("stages", stages),
			zap.Strings("frozen", frozen),
			zap.String("solver", req.Solver.Name()),
			zap.String("params", fmt.Sprintf("%016x", fp)))

		res, err := req.Solver.Fit(ctx, Problem{
			Evaluator: req.Evaluator,
			Omega:     req.Omega,
			Z:         req.Z,
			Params:    working.Clone(),
		})
		if err != nil {
			return nil, trail, fmt.Errorf("stage %d: %w", i+1, err)
		}

		if msg, ok := res.Outcome.Diagnostic(); ok {
			c.logger.Info("solver message",
				zap.Int("stage", i+1),
				zap.String("family", req.Solver.Family().String()),
				zap.String("source", res.Outcome.Source),
				zap.String("message", msg))
		}
		c.logger.Debug("fit report", zap.Int("stage", i+1), zap.Stringer("result", res))

		trail.Stages = append(trail.Stages, StageRecord{
			Index:       i,
			Frozen:      frozen,
			Params:      snapshot,
			Fingerprint: fp,
			Outcome:     res.Outcome,
			Chi2:        res.Chi2,
		})
		prev = res
	}

	return prev, trail, nil
}

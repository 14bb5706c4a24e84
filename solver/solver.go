package solver

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/optimize"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/internal/options"
)

// Solver names accepted by New.
const (
	NameLeastSquares = "least_squares"
	NameLBFGS        = "lbfgs"
	NameBFGS         = "bfgs"
	NameNelderMead   = "nelder"
	NameEmcee        = "emcee"
)

var methods = map[string]func() optimize.Method{
	NameLeastSquares: func() optimize.Method { return &optimize.LBFGS{} },
	NameLBFGS:        func() optimize.Method { return &optimize.LBFGS{} },
	NameBFGS:         func() optimize.Method { return &optimize.BFGS{} },
	NameNelderMead:   func() optimize.Method { return &optimize.NelderMead{} },
}

// aliases maps alternative spellings to canonical names.
var aliases = map[string]string{
	"leastsq":     NameLeastSquares,
	"nelder-mead": NameNelderMead,
	"neldermead":  NameNelderMead,
}

// Names returns the canonical solver names, sorted.
func Names() []string {
	out := make([]string, 0, len(methods)+1)
	for name := range methods {
		out = append(out, name)
	}
	out = append(out, NameEmcee)
	slices.Sort(out)

	return out
}

// New creates the solver registered under name. The empty name selects
// least_squares.
//
// Parameters:
//   - name: Solver name, case-insensitive
//   - opts: Solver options; options irrelevant to the solver are ignored
//
// Returns:
//   - fit.Solver: The solver
//   - error: errs.ErrUnknownSolver or an invalid option
func New(name string, opts ...Option) (fit.Solver, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = NameLeastSquares
	}
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}

	cfg, err := options.Build(defaultConfig(), (*Config).validate, opts...)
	if err != nil {
		return nil, err
	}

	if key == NameEmcee {
		return &Sampler{cfg: *cfg}, nil
	}

	method, ok := methods[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownSolver, name)
	}

	return &LeastSquares{name: key, method: method, cfg: *cfg}, nil
}

package circuit

import (
	"fmt"
	"math/cmplx"
	"slices"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/internal/pool"
	"github.com/arloliu/impfit/model"
)

// node is one block of a parsed circuit. eval writes the block impedance at
// every frequency into dst, which has len(omega) elements.
type node interface {
	eval(dst []complex128, omega []float64, values map[string]float64, s *setup) error
	collect(names []string) []string
}

type leaf struct {
	elem  *Element
	names []string
}

func (l *leaf) eval(dst []complex128, omega []float64, values map[string]float64, s *setup) error {
	var buf [8]float64
	p := buf[:0]
	for _, name := range l.names {
		v, ok := values[name]
		if !ok {
			return fmt.Errorf("%w: %s (element %s)", errs.ErrUnknownParameter, name, l.elem.Name)
		}
		p = append(p, v)
	}
	for i, w := range omega {
		dst[i] = l.elem.impedance(w, p, s)
	}

	return nil
}

func (l *leaf) collect(names []string) []string {
	return append(names, l.names...)
}

type series []node

func (sr series) eval(dst []complex128, omega []float64, values map[string]float64, s *setup) error {
	if err := sr[0].eval(dst, omega, values, s); err != nil {
		return err
	}

	tmp, cleanup := pool.GetComplex128Slice(len(omega))
	defer cleanup()

	for _, n := range sr[1:] {
		if err := n.eval(tmp, omega, values, s); err != nil {
			return err
		}
		for i := range dst {
			dst[i] += tmp[i]
		}
	}

	return nil
}

func (sr series) collect(names []string) []string {
	for _, n := range sr {
		names = n.collect(names)
	}

	return names
}

type parallel struct {
	left, right node
}

func (pl *parallel) eval(dst []complex128, omega []float64, values map[string]float64, s *setup) error {
	if err := pl.left.eval(dst, omega, values, s); err != nil {
		return err
	}

	tmp, cleanup := pool.GetComplex128Slice(len(omega))
	defer cleanup()

	if err := pl.right.eval(tmp, omega, values, s); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = 1 / (1/dst[i] + 1/tmp[i])
	}

	return nil
}

func (pl *parallel) collect(names []string) []string {
	return pl.right.collect(pl.left.collect(names))
}

// Model is a parsed equivalent circuit bound to a set of constants.
// A Model is immutable and safe for concurrent use.
type Model struct {
	expr  string
	root  node
	names []string
	setup *setup
}

// Parse parses an equivalent-circuit expression.
//
// Parameters:
//   - expr: Circuit expression, e.g. "R + parallel(R_f1, C_f1)"
//   - consts: Constants used by the suspension elements
//
// Returns:
//   - *Model: The parsed model
//   - error: ErrInvalidCircuit on syntax errors or repeated parameter names,
//     ErrUnknownElement for unknown element names, ErrInvalidConstant for
//     unusable constants
func Parse(expr string, consts Constants) (*Model, error) {
	if err := consts.Validate(); err != nil {
		return nil, err
	}
	root, err := parse(expr)
	if err != nil {
		return nil, err
	}

	names := root.collect(nil)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: parameter %q appears twice, use element suffixes", errs.ErrInvalidCircuit, name)
		}
		seen[name] = struct{}{}
	}

	return &Model{expr: expr, root: root, names: names, setup: newSetup(consts)}, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// package-level model definitions.
func MustParse(expr string, consts Constants) *Model {
	m, err := Parse(expr, consts)
	if err != nil {
		panic(err)
	}

	return m
}

// String returns the expression the model was parsed from.
func (m *Model) String() string {
	return m.expr
}

// ParamNames returns the parameter names in the order the elements appear in
// the expression.
func (m *Model) ParamNames() []string {
	return slices.Clone(m.names)
}

// Constants returns the constants the model was bound to.
func (m *Model) Constants() Constants {
	return m.setup.Constants
}

// Evaluate computes the model impedance at each angular frequency.
//
// values must contain every name returned by ParamNames; extra names are
// ignored.
func (m *Model) Evaluate(omega []float64, values map[string]float64) ([]complex128, error) {
	z := make([]complex128, len(omega))
	if len(omega) == 0 {
		return z, nil
	}
	if err := m.root.eval(z, omega, values, m.setup); err != nil {
		return nil, err
	}

	return z, nil
}

// Evaluator adapts the model to the objective signature used by the solvers.
func (m *Model) Evaluator() model.Evaluator {
	return m.Evaluate
}

// Logscale wraps an evaluator so that it returns the complex base-10 logarithm
// of the impedance. Fit such an evaluator against LogscaleData of the measured
// spectrum.
func Logscale(ev model.Evaluator) model.Evaluator {
	return func(omega []float64, values map[string]float64) ([]complex128, error) {
		z, err := ev(omega, values)
		if err != nil {
			return nil, err
		}

		return LogscaleData(z), nil
	}
}

// LogscaleData returns the complex base-10 logarithm of z as a new slice.
func LogscaleData(z []complex128) []complex128 {
	out := make([]complex128, len(z))
	for i, v := range z {
		out[i] = cmplx.Log10(v)
	}

	return out
}

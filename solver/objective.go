package solver

import (
	"fmt"
	"maps"
	"math"
	"sync"
	"sync/atomic"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/internal/pool"
	"github.com/arloliu/impfit/param"
)

// objective maps optimizer coordinates to parameter values and residuals.
//
// It is safe for concurrent use: every evaluation builds its own value map and
// residual buffer.
type objective struct {
	p          fit.Problem
	names      []string
	params     []param.Parameter
	transforms []param.Transform
	base       map[string]float64

	nfev    atomic.Int64
	errOnce sync.Once
	err     error
}

func newObjective(p fit.Problem) (*objective, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	names := p.Params.Varying()
	if len(names) == 0 {
		return nil, errs.ErrNoVaryingParams
	}

	o := &objective{
		p:          p,
		names:      names,
		params:     make([]param.Parameter, len(names)),
		transforms: make([]param.Transform, len(names)),
		base:       p.Params.Values(),
	}
	for i, name := range names {
		pp, _ := p.Params.Get(name)
		o.params[i] = pp
		o.transforms[i] = param.NewTransform(pp)
	}

	return o, nil
}

// initial returns the starting values of the varying parameters.
func (o *objective) initial() []float64 {
	x := make([]float64, len(o.params))
	for i, p := range o.params {
		x[i] = p.Value
	}

	return x
}

// toInternal maps external values to optimizer coordinates.
func (o *objective) toInternal(x []float64) []float64 {
	u := make([]float64, len(x))
	for i, v := range x {
		u[i] = o.transforms[i].ToInternal(v)
	}

	return u
}

// toExternal maps optimizer coordinates to parameter values.
func (o *objective) toExternal(u []float64) []float64 {
	x := make([]float64, len(u))
	for i, v := range u {
		x[i] = o.transforms[i].ToExternal(v)
	}

	return x
}

// inBounds reports whether the external values satisfy every bound.
func (o *objective) inBounds(x []float64) bool {
	for i, v := range x {
		if v < o.params[i].Min || v > o.params[i].Max || math.IsNaN(v) {
			return false
		}
	}

	return true
}

// values returns the full name → value map with the varying values set to x.
func (o *objective) values(x []float64) map[string]float64 {
	m := maps.Clone(o.base)
	for i, name := range o.names {
		m[name] = x[i]
	}

	return m
}

// residual writes the stacked residual at external values x into dst.
func (o *objective) residual(dst []float64, x []float64) ([]float64, error) {
	o.nfev.Add(1)

	z, err := o.p.Evaluator(o.p.Omega, o.values(x))
	if err != nil {
		return nil, err
	}
	if len(z) != len(o.p.Z) {
		return nil, fmt.Errorf("%w: evaluator returned %d points for %d frequencies",
			errs.ErrShapeMismatch, len(z), len(o.p.Z))
	}

	return fit.Residual(dst, z, o.p.Z), nil
}

// chi2 returns Σ r² at external values x, +Inf when the evaluator fails. The
// first evaluator error is kept for reporting.
func (o *objective) chi2(x []float64) float64 {
	buf, release := pool.GetFloat64Slice(o.p.NData())
	defer release()

	r, err := o.residual(buf, x)
	if err != nil {
		o.errOnce.Do(func() { o.err = err })
		return math.Inf(1)
	}

	s := fit.SumSquares(r)
	if math.IsNaN(s) {
		return math.Inf(1)
	}

	return s
}

// cost is chi2 in optimizer coordinates.
func (o *objective) cost(u []float64) float64 {
	return o.chi2(o.toExternal(u))
}

// best builds the parameter set holding external values x.
func (o *objective) best(x []float64) (*param.Set, error) {
	s := o.p.Params.Clone()
	for i, name := range o.names {
		if err := s.SetValue(name, x[i]); err != nil {
			return nil, err
		}
	}

	return s, nil
}

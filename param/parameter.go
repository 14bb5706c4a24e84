package param

import (
	"fmt"
	"math"

	"github.com/arloliu/impfit/errs"
)

// Parameter is a single named model parameter.
type Parameter struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
	Vary  bool
}

// New creates a varying parameter with the given bounds.
// Use math.Inf for an open side.
func New(name string, value, lower, upper float64) (Parameter, error) {
	p := Parameter{Name: name, Value: value, Min: lower, Max: upper, Vary: true}
	if err := p.Validate(); err != nil {
		return Parameter{}, err
	}

	return p, nil
}

// Fixed creates a parameter the optimizer may not change.
func Fixed(name string, value float64) Parameter {
	return Parameter{Name: name, Value: value, Min: math.Inf(-1), Max: math.Inf(1), Vary: false}
}

// Validate checks the bound invariants: Min ≤ Max, and Min ≤ Value ≤ Max for
// varying parameters.
func (p Parameter) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", errs.ErrInvalidBounds)
	}
	if math.IsNaN(p.Min) || math.IsNaN(p.Max) || math.IsNaN(p.Value) {
		return fmt.Errorf("%w: %s has NaN value or bound", errs.ErrInvalidBounds, p.Name)
	}
	if p.Min > p.Max {
		return fmt.Errorf("%w: %s min %g > max %g", errs.ErrInvalidBounds, p.Name, p.Min, p.Max)
	}
	if p.Vary && (p.Value < p.Min || p.Value > p.Max) {
		return fmt.Errorf("%w: %s value %g outside [%g, %g]", errs.ErrInvalidBounds, p.Name, p.Value, p.Min, p.Max)
	}

	return nil
}

// Clip returns v limited to the parameter bounds.
func (p Parameter) Clip(v float64) float64 {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}

	return v
}

// String returns a compact representation, e.g. "km=0.2 [0, 1] vary".
func (p Parameter) String() string {
	state := "fixed"
	if p.Vary {
		state = "vary"
	}

	return fmt.Sprintf("%s=%g [%g, %g] %s", p.Name, p.Value, p.Min, p.Max, state)
}

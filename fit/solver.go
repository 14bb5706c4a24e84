package fit

import (
	"context"
	"fmt"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/model"
	"github.com/arloliu/impfit/param"
)

// Family groups solvers by the kind of result they produce.
type Family int

const (
	// FamilyLeastSquares marks point-estimate optimizers with native confidence intervals.
	FamilyLeastSquares Family = iota
	// FamilyEnsemble marks affine-invariant ensemble samplers that return a chain.
	FamilyEnsemble
)

var familyNames = map[Family]string{
	FamilyLeastSquares: "least_squares",
	FamilyEnsemble:     "ensemble",
}

// String returns the string representation of the family.
func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}

	return "unknown"
}

// Solver fits a Problem.
//
// Fit must not modify p.Params; it receives a private clone from the
// controller but may be called directly by users with shared sets.
type Solver interface {
	// Name returns the solver identifier, e.g. "least_squares" or "emcee".
	Name() string
	// Family returns the result family.
	Family() Family
	// Fit runs the optimizer.
	Fit(ctx context.Context, p Problem) (*Result, error)
}

// Problem is one optimizer invocation.
type Problem struct {
	Evaluator model.Evaluator
	Omega     []float64
	Z         []complex128
	Params    *param.Set
}

// Validate checks that the problem is complete and the data shapes agree.
func (p Problem) Validate() error {
	if p.Evaluator == nil {
		return fmt.Errorf("%w: nil evaluator", errs.ErrShapeMismatch)
	}
	if p.Params == nil {
		return fmt.Errorf("%w: nil parameter set", errs.ErrShapeMismatch)
	}
	if len(p.Omega) == 0 || len(p.Omega) != len(p.Z) {
		return fmt.Errorf("%w: %d frequencies, %d impedance values",
			errs.ErrShapeMismatch, len(p.Omega), len(p.Z))
	}

	return nil
}

// NData returns the number of real-valued residuals (real and imaginary parts).
func (p Problem) NData() int {
	return 2 * len(p.Omega)
}

// Outcome is the normalised diagnostic reported by every solver.
type Outcome struct {
	// Message is the solver's human-readable status, empty when it has nothing to say.
	Message string
	// Source names the family-specific status it was derived from,
	// e.g. "optimize.Status" or "acceptance".
	Source string
	// Converged reports whether the solver considers the fit successful.
	Converged bool
}

// Diagnostic returns the message and whether one is present.
func (o Outcome) Diagnostic() (string, bool) {
	return o.Message, o.Message != ""
}

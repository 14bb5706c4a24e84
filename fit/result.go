package fit

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/param"
)

// Result is the outcome of one solver invocation.
type Result struct {
	// Params is the final parameter set with values at the best fit.
	Params *param.Set
	// BestValues maps every parameter name (fixed and varying) to its best value.
	BestValues map[string]float64
	// BestFit is the model impedance at BestValues.
	BestFit []complex128
	// InitFit is the model impedance at the initial values.
	InitFit []complex128
	// Outcome is the solver diagnostic.
	Outcome Outcome

	// Solver is the identifier of the solver that produced the result.
	Solver string
	// Family is the solver family.
	Family Family

	Chi2    float64
	RedChi2 float64
	// RSquared and RMSE compare BestFit with the data in the complex plane.
	RSquared float64
	RMSE     float64
	NData    int
	NVarys   int
	// NFev counts evaluator calls.
	NFev int

	// VarNames lists the varying parameters in chain column order.
	VarNames []string
	// Stderr holds standard errors of varying parameters (least squares only).
	Stderr map[string]float64

	// Chain holds ensemble samples indexed [iteration][walker][param]. Nil for
	// least-squares results.
	Chain [][][]float64
	// LnProb holds the log-probability of every sample, [iteration][walker].
	LnProb [][]float64
	// AcceptanceFraction is the per-walker fraction of accepted proposals.
	AcceptanceFraction []float64
	// MaxLnProb is the highest log-probability seen in the chain.
	MaxLnProb float64
}

// IsEnsemble reports whether the result carries an ensemble chain.
func (r *Result) IsEnsemble() bool {
	return r.Family == FamilyEnsemble
}

// Walkers returns the number of walkers in the chain, 0 without one.
func (r *Result) Walkers() int {
	if len(r.Chain) == 0 {
		return 0
	}

	return len(r.Chain[0])
}

// String returns a compact report of the fit, e.g.
// "Result{Solver: least_squares, χ²: 1.2e-05, χ²ᵣ: 3.1e-08, R²: 0.9999, k=0.3, e=80}".
func (r *Result) String() string {
	names := make([]string, 0, len(r.BestValues))
	if r.Params != nil {
		names = r.Params.Names()
	} else {
		for name := range r.BestValues {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.6g", name, r.BestValues[name]))
	}

	return fmt.Sprintf("Result{Solver: %s, χ²: %.6g, χ²ᵣ: %.6g, R²: %.4f, %s}",
		r.Solver, r.Chi2, r.RedChi2, r.RSquared, strings.Join(parts, ", "))
}

// Summarize evaluates the model at the initial and best parameter values and
// fills the goodness-of-fit fields shared by every solver.
//
// Parameters:
//   - p: The problem that was solved (p.Params holds the initial values)
//   - best: Parameter set holding the best values
//   - solver: Solver identifier
//   - family: Solver family
//
// Returns:
//   - *Result: Result with Params, BestValues, BestFit, InitFit, Chi2, RedChi2, RSquared, RMSE, NData, NVarys, VarNames set
//   - error: Evaluator failure or shape mismatch
func Summarize(p Problem, best *param.Set, solver string, family Family) (*Result, error) {
	initFit, err := p.Evaluator(p.Omega, p.Params.Values())
	if err != nil {
		return nil, fmt.Errorf("evaluate initial values: %w", err)
	}

	values := best.Values()
	bestFit, err := p.Evaluator(p.Omega, values)
	if err != nil {
		return nil, fmt.Errorf("evaluate best values: %w", err)
	}
	if len(bestFit) != len(p.Z) {
		return nil, fmt.Errorf("%w: evaluator returned %d points for %d frequencies",
			errs.ErrShapeMismatch, len(bestFit), len(p.Z))
	}

	varNames := best.Varying()
	chi2 := SumSquares(Residual(nil, bestFit, p.Z))
	nData := p.NData()

	res := &Result{
		Params:     best,
		BestValues: values,
		BestFit:    bestFit,
		InitFit:    initFit,
		Solver:     solver,
		Family:     family,
		Chi2:       chi2,
		NData:      nData,
		NVarys:     len(varNames),
		VarNames:   varNames,
		RedChi2:    math.NaN(),
		RSquared:   RSquared(bestFit, p.Z),
		RMSE:       RMSE(bestFit, p.Z),
	}
	if dof := nData - len(varNames); dof > 0 {
		res.RedChi2 = chi2 / float64(dof)
	}

	return res, nil
}

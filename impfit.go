// Package impfit fits equivalent-circuit models to measured impedance spectra.
//
// A circuit is written as an expression of built-in elements joined in series
// (+) and in parallel (parallel(a, b)). Each element contributes named
// parameters; a suffix such as R_f1 renames the parameters of one element so the
// same element may appear twice.
//
// # Core Features
//
//   - Circuit expressions over R, C, L, CPE, RC, ColeCole and the single and
//     double shell suspension models
//   - Least-squares and ensemble (affine-invariant) solvers behind one interface
//   - Staged fitting that freezes parameter groups between rounds per model class
//   - Percentile confidence intervals with optional walker clustering
//   - Results archives with optional zstd, s2 or lz4 compression
//
// # Basic Usage
//
// Fitting a single spectrum:
//
//	m, _ := impfit.ParseCircuit("R + C")
//	r, _ := param.New("R", 50, 1, 1000)
//	set, _ := param.NewSet(r, param.Fixed("C", 1e-6))
//	res, _ := impfit.FitSpectrum(ctx, m, omega, z, set, solver.NameLeastSquares)
//	fmt.Println(res.BestValues["R"])
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the circuit, fit and
// solver packages. Batch runs over a data directory are driven by the runner
// package and the impfit command.
package impfit

import (
	"context"
	"fmt"

	"github.com/arloliu/impfit/circuit"
	"github.com/arloliu/impfit/dataset"
	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/param"
	"github.com/arloliu/impfit/solver"
)

// ParseCircuit parses a circuit expression with the default constants.
//
// Parameters:
//   - expr: Circuit expression, e.g. "R + parallel(R_f1, C_f1)"
//
// Returns:
//   - *circuit.Model: Parsed model, safe for concurrent evaluation
//   - error: Parse error wrapping errs.ErrInvalidCircuit or errs.ErrUnknownElement
func ParseCircuit(expr string) (*circuit.Model, error) {
	return circuit.Parse(expr, circuit.DefaultConstants())
}

// FitSpectrum fits m to one spectrum in a single stage.
//
// Parameters:
//   - ctx: Cancels the fit
//   - m: Circuit model
//   - omega: Angular frequencies in rad/s
//   - z: Measured impedance, one value per frequency
//   - params: Initial parameters; every parameter of m must be present
//   - solverName: Solver name, see solver.Names
//   - opts: Solver options
//
// Returns:
//   - *fit.Result: Best fit with goodness-of-fit statistics
//   - error: Validation or solver error
func FitSpectrum(ctx context.Context, m *circuit.Model, omega []float64, z []complex128,
	params *param.Set, solverName string, opts ...solver.Option,
) (*fit.Result, error) {
	for _, name := range m.ParamNames() {
		if !params.Has(name) {
			return nil, fmt.Errorf("parameter %s of %s is not set", name, m)
		}
	}
	sol, err := solver.New(solverName, opts...)
	if err != nil {
		return nil, err
	}

	res, _, err := fit.NewController().Fit(ctx, fit.Request{
		Evaluator: m.Evaluator(),
		Omega:     omega,
		Z:         z,
		Params:    params,
		Solver:    sol,
	})

	return res, err
}

// RecordID returns the results key of repeat index of source, e.g. "cells.csv_0".
func RecordID(source string, index int) string {
	return dataset.Record{Source: source, Index: index}.ID()
}

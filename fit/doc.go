// Package fit runs staged equivalent-circuit fits.
//
// The package defines the contract between the staged controller and the
// solvers that do the numerical work:
//
//   - Problem: an evaluator, measured data and the working parameter set.
//   - Solver: one optimizer family (least squares or ensemble sampling).
//   - Result: best values, curves, goodness of fit and the optional chain.
//   - Outcome: a single normalised solver diagnostic.
//
// # Staged fitting
//
// Controller.Fit runs the solver once per stage of the requested model class.
// Before every stage after the first, each value fitted by the previous stage is
// copied into the working set and the class' freeze list for that stage is
// applied:
//
//	ctrl := fit.NewController(fit.WithLogger(logger))
//	res, trail, err := ctrl.Fit(ctx, fit.Request{
//	    Class:     "DoubleShell",
//	    Staged:    true,
//	    Evaluator: m.Evaluator(),
//	    Omega:     omega,
//	    Z:         z,
//	    Params:    params,
//	    Solver:    s,
//	})
//
// The trail records one entry per stage with the names frozen going into it and
// a snapshot of the parameter set the solver received.
//
// Requesting a class without a schedule falls back to a single stage and logs
// the fact at info level.
package fit

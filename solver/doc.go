// Package solver provides the fit.Solver implementations.
//
// Least-squares solvers minimise Σ r² over the varying parameters, where r
// stacks the real and imaginary residuals of the model against the data. They
// run gonum's optimize package on bound-transformed coordinates (see
// param.Transform), so every method respects parameter bounds:
//
//	least_squares  L-BFGS with central-difference gradients (default)
//	lbfgs          alias of least_squares
//	bfgs           BFGS
//	nelder         Nelder-Mead simplex
//
// After convergence the covariance is estimated from the numerical Jacobian as
// (JᵀJ)⁻¹·χ²ᵣ and turned into standard errors.
//
// The emcee solver is an affine-invariant ensemble sampler using the stretch
// move. Walkers are split in two halves; each half is updated against the
// other, so proposals within a half are independent and their log-probabilities
// are evaluated in parallel. All random draws happen on the calling goroutine,
// so a given seed yields the same chain for any worker count.
//
// Profiler computes profile-likelihood confidence intervals for least-squares
// results and plugs into ensemble.Estimator as its native estimator.
package solver

// Package errs defines the sentinel errors shared by the impfit packages.
//
// Callers should compare with errors.Is, since most packages wrap these values
// with additional context (record id, parameter name, stage index).
package errs

import "errors"

// Parameter set errors.
var (
	ErrUnknownParameter   = errors.New("unknown parameter")
	ErrDuplicateParameter = errors.New("duplicate parameter")
	ErrInvalidBounds      = errors.New("invalid parameter bounds")
	ErrNoVaryingParams    = errors.New("no varying parameters")
)

// Fitting and orchestration errors.
var (
	ErrUnknownSolver     = errors.New("unknown solver")
	ErrUnknownModelClass = errors.New("unknown model class")
	ErrInvalidSchedule   = errors.New("invalid freeze schedule")
	ErrInvalidHandoff    = errors.New("invalid hand-off parameter")
	ErrShapeMismatch     = errors.New("data shape mismatch")
	ErrInvalidSampler    = errors.New("invalid sampler configuration")
)

// Post-processing errors.
var (
	ErrNotEnsembleResult = errors.New("result was not produced by an ensemble sampler")
	ErrNoChain           = errors.New("result has no sampling chain")
	ErrInvalidSigma      = errors.New("sigma must be an integer between 1 and 3")
	ErrInvalidConstant   = errors.New("invalid constant")
	ErrNoNativeEstimator = errors.New("no native confidence interval estimator")
)

// Circuit and persistence errors.
var (
	ErrInvalidCircuit   = errors.New("invalid circuit expression")
	ErrUnknownElement   = errors.New("unknown circuit element")
	ErrInvalidArchive   = errors.New("invalid result archive")
	ErrChecksumMismatch = errors.New("result archive checksum mismatch")
	ErrInvalidDataFile  = errors.New("invalid data file")
)

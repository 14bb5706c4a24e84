package model

// Evaluator computes the model impedance at each angular frequency.
//
// values maps parameter names to their current values and holds every
// parameter of the set, fixed or varying. Implementations must be pure: they
// may be invoked concurrently and out of order by a solver.
type Evaluator func(omega []float64, values map[string]float64) ([]complex128, error)

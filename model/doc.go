// Package model defines model classes and their staged-fitting freeze schedules.
//
// A staged fit runs the optimizer several times on the same record. Between
// stages every fitted value is carried forward and a class-specific list of
// parameters is frozen, shrinking the parameter space before the next stage.
// The schedule is data, not control flow: each Class carries its stage count and
// an ordered freeze-list array, and a Registry maps names to classes.
//
// # Built-in classes
//
//	Class        Alias  Stages  1→2       2→3       3→4
//	SingleShell  A      2       k, e
//	DoubleShell  B      4       k, e      km, em    kcp
//	ColeCole     C      2       kdc, eh
//
// Builtin returns a fresh registry holding these three classes. Register adds
// new classes or overrides existing ones.
//
// # Evaluators
//
// Evaluator is the objective function signature shared by every solver: a pure
// function of angular frequencies and parameter values returning the complex
// impedance at each frequency. Evaluators may be called concurrently.
package model

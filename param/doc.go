// Package param provides the parameter sets that equivalent-circuit fits operate on.
//
// A Set is an insertion-ordered collection of named Parameters, each carrying a
// value, lower and upper bounds (which may be infinite) and a vary flag telling
// the optimizer whether it may adjust the value. Sets are owned by a single fit:
// the staged controller clones the caller's set once per record and mutates the
// clone stage by stage.
//
// # Bounds
//
// Optimizers in this module work in an unbounded internal space. Transform maps
// between a bounded parameter value and that space using the MINUIT convention:
//
//   - both bounds:  u = asin(2(x-min)/(max-min) - 1),  x = min + (sin(u)+1)(max-min)/2
//   - lower only:   u = sqrt((x-min+1)² - 1),          x = min - 1 + sqrt(u²+1)
//   - upper only:   u = sqrt((max-x+1)² - 1),          x = max + 1 - sqrt(u²+1)
//   - unbounded:    identity
package param

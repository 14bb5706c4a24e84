// Package circuit evaluates equivalent-circuit models of measured impedance
// spectra.
//
// A model is described by a short expression built from circuit elements,
// series connections and parallel blocks:
//
//	R + L + parallel(ColeCole, C)
//
// Series elements add their impedances; parallel(a, b) combines two branches
// as 1/(1/Za + 1/Zb). Blocks nest freely.
//
// # Elements
//
//	Name         Parameters
//	R            R
//	C            C
//	L            L
//	CPE          k, alpha
//	RC           Rd, Cd
//	ColeCole     eh, el, tau, a, kdc
//	SingleShell  em, km, kcp, k, e
//	DoubleShell  em, km, kcp, ene, kne, knp, k, e
//
// An element may carry a suffix, R_f1, which prefixes its parameter names
// (f1_R). Suffixes allow the same element to appear more than once.
//
// The suspension elements (ColeCole, SingleShell, DoubleShell) read the cell
// geometry and the fixed permittivities from Constants.
//
// # Usage
//
//	m, err := circuit.Parse("parallel(R_f1, C_f1) + ColeCole", circuit.DefaultConstants())
//	if err != nil {
//	    return err
//	}
//	z, err := m.Evaluate(omega, values)
//
// Model.Evaluator adapts a model to the model.Evaluator signature consumed by
// the solvers and the staged fit controller.
package circuit

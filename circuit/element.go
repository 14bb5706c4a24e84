package circuit

import (
	"math/cmplx"
	"slices"
	"sort"
)

// setup is the constant context shared by all elements of a model. The volume
// ratios are derived once per model rather than per frequency.
type setup struct {
	Constants
	v1, v2, v3 float64
}

func newSetup(c Constants) *setup {
	return &setup{Constants: c, v1: c.V1(), v2: c.V2(), v3: c.V3()}
}

// Element describes one circuit element: its parameter names, in the order the
// impedance function expects them, and the impedance at a single angular
// frequency.
type Element struct {
	Name   string
	Params []string
	// impedance receives the parameter values in Params order.
	impedance func(omega float64, p []float64, s *setup) complex128
}

var elements = map[string]*Element{
	"R": {
		Name:   "R",
		Params: []string{"R"},
		impedance: func(_ float64, p []float64, _ *setup) complex128 {
			return complex(p[0], 0)
		},
	},
	"C": {
		Name:   "C",
		Params: []string{"C"},
		impedance: func(w float64, p []float64, _ *setup) complex128 {
			return 1 / complex(0, w*p[0])
		},
	},
	"L": {
		Name:   "L",
		Params: []string{"L"},
		impedance: func(w float64, p []float64, _ *setup) complex128 {
			return complex(0, w*p[0])
		},
	},
	"CPE": {
		Name:   "CPE",
		Params: []string{"k", "alpha"},
		impedance: func(w float64, p []float64, _ *setup) complex128 {
			return cmplx.Pow(complex(0, w), complex(-p[1], 0)) / complex(p[0], 0)
		},
	},
	"RC": {
		Name:   "RC",
		Params: []string{"Rd", "Cd"},
		impedance: func(w float64, p []float64, _ *setup) complex128 {
			return complex(p[0], 0) / complex(1, w*p[1]*p[0])
		},
	},
	"ColeCole": {
		Name:   "ColeCole",
		Params: []string{"eh", "el", "tau", "a", "kdc"},
		impedance: func(w float64, p []float64, s *setup) complex128 {
			eh, el, tau, a, kdc := p[0], p[1], p[2], p[3], p[4]
			es := complex(eh, 0) + complex(el-eh, 0)/(1+cmplx.Pow(complex(0, w*tau), complex(a, 0)))
			y := complex(0, 1)*es*complex(w*s.C0, 0) + complex(kdc*s.C0/VacuumPermittivity, w*s.Cf)

			return 1 / y
		},
	},
	"SingleShell": {
		Name:   "SingleShell",
		Params: []string{"em", "km", "kcp", "k", "e"},
		impedance: func(w float64, p []float64, s *setup) complex128 {
			em, km, kcp, k, e := p[0], p[1], p[2], p[3], p[4]
			epsM := complexPermittivity(em, km, w)
			epsCp := complexPermittivity(s.Ecp, kcp, w)
			epsCell := shell(epsM, epsCp, s.v1)

			return suspension(complexPermittivity(e, k, w), epsCell, w, s)
		},
	},
	"DoubleShell": {
		Name:   "DoubleShell",
		Params: []string{"em", "km", "kcp", "ene", "kne", "knp", "k", "e"},
		impedance: func(w float64, p []float64, s *setup) complex128 {
			em, km, kcp, ene, kne, knp, k, e := p[0], p[1], p[2], p[3], p[4], p[5], p[6], p[7]
			epsM := complexPermittivity(em, km, w)
			epsCp := complexPermittivity(s.Ecp, kcp, w)
			epsNe := complexPermittivity(ene, kne, w)
			epsNp := complexPermittivity(s.Enp, knp, w)

			nucleus := shell(epsNe, epsNp, s.v3)
			cytoplasm := shell(epsCp, nucleus, s.v2)
			epsCell := shell(epsM, cytoplasm, s.v1)

			return suspension(complexPermittivity(e, k, w), epsCell, w, s)
		},
	},
}

// complexPermittivity returns eps - j*kappa/(eps0*omega).
func complexPermittivity(eps, kappa, omega float64) complex128 {
	return complex(eps, -kappa/(VacuumPermittivity*omega))
}

// shell returns the effective permittivity of a sphere made of an outer shell
// (outer) around a core (inner), where v is the core-to-sphere volume ratio.
func shell(outer, inner complex128, v float64) complex128 {
	ratio := inner / outer
	cv := complex(v, 0)
	num := 2*(1-cv) + (1+2*cv)*ratio
	den := (2 + cv) + (1-cv)*ratio

	return outer * num / den
}

// suspension mixes cells of permittivity cell into the medium with volume
// fraction p (Maxwell-Wagner) and converts the result to the cell impedance.
func suspension(medium, cell complex128, omega float64, s *setup) complex128 {
	p := complex(s.P, 0)
	num := 2*(1-p)*medium + (1+2*p)*cell
	den := (2+p)*medium + (1-p)*cell
	eps := medium * num / den
	y := complex(0, 1)*eps*complex(omega*s.C0, 0) + complex(0, omega*s.Cf)

	return 1 / y
}

// LookupElement returns the named element. Names are case-sensitive.
func LookupElement(name string) (*Element, bool) {
	e, ok := elements[name]
	if !ok {
		return nil, false
	}
	cp := *e
	cp.Params = slices.Clone(e.Params)

	return &cp, true
}

// Elements returns the names of all known elements, sorted.
func Elements() []string {
	names := make([]string, 0, len(elements))
	for name := range elements {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

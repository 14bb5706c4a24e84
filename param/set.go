package param

import (
	"fmt"
	"iter"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/internal/hash"
)

// Set is an ordered mapping of parameter name to Parameter.
//
// The zero value is not usable; create sets with NewSet. A Set is not safe for
// concurrent mutation.
type Set struct {
	order  []string
	params map[string]*Parameter
}

// NewSet creates a set from the given parameters, preserving their order.
func NewSet(params ...Parameter) (*Set, error) {
	s := &Set{
		order:  make([]string, 0, len(params)),
		params: make(map[string]*Parameter, len(params)),
	}
	for _, p := range params {
		if err := s.Add(p); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Add appends a parameter. Names must be unique within the set.
func (s *Set) Add(p Parameter) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := s.params[p.Name]; exists {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateParameter, p.Name)
	}

	cp := p
	s.params[p.Name] = &cp
	s.order = append(s.order, p.Name)

	return nil
}

// Get returns a copy of the named parameter.
func (s *Set) Get(name string) (Parameter, bool) {
	p, ok := s.params[name]
	if !ok {
		return Parameter{}, false
	}

	return *p, true
}

// Has reports whether the set contains name.
func (s *Set) Has(name string) bool {
	_, ok := s.params[name]
	return ok
}

// Len returns the number of parameters.
func (s *Set) Len() int {
	return len(s.order)
}

// Names returns the parameter names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
}

// All iterates over the parameters in insertion order.
func (s *Set) All() iter.Seq2[string, Parameter] {
	return func(yield func(string, Parameter) bool) {
		for _, name := range s.order {
			if !yield(name, *s.params[name]) {
				return
			}
		}
	}
}

// SetValue replaces the value of the named parameter. Values of varying
// parameters are clipped into their bounds.
func (s *Set) SetValue(name string, v float64) error {
	p, ok := s.params[name]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnknownParameter, name)
	}
	if p.Vary {
		v = p.Clip(v)
	}
	p.Value = v

	return nil
}

// Fix sets the value of the named parameter and marks it non-varying.
func (s *Set) Fix(name string, v float64) error {
	p, ok := s.params[name]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnknownParameter, name)
	}
	p.Value = v
	p.Vary = false

	return nil
}

// Freeze marks the named parameters non-varying, keeping their current values.
// No parameter is modified when any name is unknown.
func (s *Set) Freeze(names ...string) error {
	for _, name := range names {
		if _, ok := s.params[name]; !ok {
			return fmt.Errorf("%w: %s", errs.ErrUnknownParameter, name)
		}
	}
	for _, name := range names {
		s.params[name].Vary = false
	}

	return nil
}

// Varying returns the names of the varying parameters in insertion order.
func (s *Set) Varying() []string {
	out := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if s.params[name].Vary {
			out = append(out, name)
		}
	}

	return out
}

// Frozen returns the names of the non-varying parameters in insertion order.
func (s *Set) Frozen() []string {
	out := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if !s.params[name].Vary {
			out = append(out, name)
		}
	}

	return out
}

// Values returns a name → value map of every parameter.
func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.order))
	for name, p := range s.params {
		out[name] = p.Value
	}

	return out
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{
		order:  make([]string, len(s.order)),
		params: make(map[string]*Parameter, len(s.params)),
	}
	copy(c.order, s.order)
	for name, p := range s.params {
		cp := *p
		c.params[name] = &cp
	}

	return c
}

// Fingerprint returns an xxHash64 over names, values, bounds and vary flags in
// insertion order. Two sets with the same fingerprint start identical fits; the
// controller logs it with every stage.
func (s *Set) Fingerprint() uint64 {
	f := hash.NewFingerprint()
	for _, name := range s.order {
		p := s.params[name]
		f.String(name).Float(p.Value).Float(p.Min).Float(p.Max).Bool(p.Vary)
	}

	return f.Sum64()
}

// Package options implements the generic functional-option pattern used by the
// constructors across impfit (controller, runner, solvers, analyzers).
package options

// Option configures a target of type T. Options may fail, e.g. when a knob is
// outside its valid range.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function to Option.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates an option that can reject its input.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates an option that always succeeds.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order and stops at the first error.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// Build applies opts to target and then runs validate, which checks
// cross-field invariants that single options cannot see.
func Build[T any](target T, validate func(T) error, opts ...Option[T]) (T, error) {
	if err := Apply(target, opts...); err != nil {
		var zero T
		return zero, err
	}
	if validate != nil {
		if err := validate(target); err != nil {
			var zero T
			return zero, err
		}
	}

	return target, nil
}

package param

import "math"

// Transform maps one parameter between its bounded value and the unbounded
// coordinate seen by the optimizer.
type Transform struct {
	min, max       float64
	hasMin, hasMax bool
}

// NewTransform creates the transform for p's bounds.
func NewTransform(p Parameter) Transform {
	return Transform{
		min:    p.Min,
		max:    p.Max,
		hasMin: !math.IsInf(p.Min, -1),
		hasMax: !math.IsInf(p.Max, 1),
	}
}

// ToInternal maps a bounded value to the internal coordinate.
func (t Transform) ToInternal(x float64) float64 {
	switch {
	case t.hasMin && t.hasMax:
		if t.max == t.min {
			return 0
		}
		arg := 2*(x-t.min)/(t.max-t.min) - 1
		return math.Asin(clampUnit(arg))
	case t.hasMin:
		d := x - t.min + 1
		return math.Sqrt(math.Max(d*d-1, 0))
	case t.hasMax:
		d := t.max - x + 1
		return math.Sqrt(math.Max(d*d-1, 0))
	default:
		return x
	}
}

// ToExternal maps an internal coordinate back into the bounds.
func (t Transform) ToExternal(u float64) float64 {
	switch {
	case t.hasMin && t.hasMax:
		return t.min + (math.Sin(u)+1)*(t.max-t.min)/2
	case t.hasMin:
		return t.min - 1 + math.Sqrt(u*u+1)
	case t.hasMax:
		return t.max + 1 - math.Sqrt(u*u+1)
	default:
		return u
	}
}

// Scale returns d(external)/d(internal) at u, used to carry standard errors
// from internal to external space.
func (t Transform) Scale(u float64) float64 {
	switch {
	case t.hasMin && t.hasMax:
		return math.Cos(u) * (t.max - t.min) / 2
	case t.hasMin:
		return u / math.Sqrt(u*u+1)
	case t.hasMax:
		return -u / math.Sqrt(u*u+1)
	default:
		return 1
	}
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}

	return v
}

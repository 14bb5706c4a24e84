package pool

import "sync"

// Slice pools for the solver hot loop. Residual vectors and model curves are
// sized by the spectrum length and requested once per objective evaluation, so
// reusing them removes most of the garbage produced during a fit.
var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	complex128SlicePool = sync.Pool{
		New: func() any { return &[]complex128{} },
	}
)

// GetFloat64Slice retrieves and resizes a float64 slice from the pool.
//
// The returned slice has exactly size elements; its contents are unspecified.
// The caller must call the returned cleanup function to return the slice to the pool.
//
// Example:
//
//	resid, cleanup := pool.GetFloat64Slice(2 * len(omega))
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}

// GetComplex128Slice retrieves and resizes a complex128 slice from the pool.
//
// The same ownership rules as GetFloat64Slice apply.
func GetComplex128Slice(size int) ([]complex128, func()) {
	ptr, _ := complex128SlicePool.Get().(*[]complex128)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]complex128, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { complex128SlicePool.Put(ptr) }
}

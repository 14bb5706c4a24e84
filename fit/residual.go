package fit

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Residual writes the stacked residual [Re(model-data)..., Im(model-data)...]
// into dst, growing it when needed, and returns the filled slice.
func Residual(dst []float64, modelZ, data []complex128) []float64 {
	n := len(data)
	if cap(dst) < 2*n {
		dst = make([]float64, 2*n)
	}
	dst = dst[:2*n]

	for i := range n {
		d := modelZ[i] - data[i]
		dst[i] = real(d)
		dst[n+i] = imag(d)
	}

	return dst
}

// SumSquares returns Σ r².
func SumSquares(r []float64) float64 {
	return floats.Dot(r, r)
}

// RSquared returns the coefficient of determination of modelZ against data,
// 1 - Σ|model-data|² / Σ|data-mean(data)|², treating each impedance as a point
// in the complex plane. A constant spectrum yields 0.
func RSquared(modelZ, data []complex128) float64 {
	if len(data) == 0 {
		return 0
	}

	var mean complex128
	for _, d := range data {
		mean += d
	}
	mean /= complex(float64(len(data)), 0)

	ssTot, ssRes := 0.0, 0.0
	for i, d := range data {
		ssTot += sqAbs(d - mean)
		ssRes += sqAbs(modelZ[i] - d)
	}
	if ssTot == 0 {
		return 0
	}

	return 1 - ssRes/ssTot
}

// RMSE returns √(Σ|model-data|² / n), in the units of the impedance.
func RMSE(modelZ, data []complex128) float64 {
	if len(data) == 0 {
		return 0
	}

	sum := 0.0
	for i, d := range data {
		sum += sqAbs(modelZ[i] - d)
	}

	return math.Sqrt(sum / float64(len(data)))
}

func sqAbs(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

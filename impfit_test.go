package impfit

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/param"
	"github.com/arloliu/impfit/solver"
)

func TestParseCircuit(t *testing.T) {
	m, err := ParseCircuit("R + parallel(R_f1, C_f1)")
	require.NoError(t, err)
	require.Equal(t, []string{"R", "f1_R", "f1_C"}, m.ParamNames())

	_, err = ParseCircuit("R + X")
	require.ErrorIs(t, err, errs.ErrUnknownElement)
}

func TestFitSpectrum(t *testing.T) {
	m, err := ParseCircuit("R + C")
	require.NoError(t, err)

	omega := make([]float64, 10)
	z := make([]complex128, 10)
	for i := range omega {
		omega[i] = 2 * math.Pi * math.Pow(10, float64(i)/2)
		z[i] = complex(75, -1/(omega[i]*2e-6))
	}

	r, err := param.New("R", 10, 1, 1000)
	require.NoError(t, err)
	set, err := param.NewSet(r, param.Fixed("C", 2e-6))
	require.NoError(t, err)

	res, err := FitSpectrum(context.Background(), m, omega, z, set, solver.NameLeastSquares)
	require.NoError(t, err)
	require.InDelta(t, 75, res.BestValues["R"], 0.05)
	require.Equal(t, 2e-6, res.BestValues["C"])

	_, err = FitSpectrum(context.Background(), m, omega, z, set, "nope")
	require.ErrorIs(t, err, errs.ErrUnknownSolver)

	partial, err := param.NewSet(r)
	require.NoError(t, err)
	_, err = FitSpectrum(context.Background(), m, omega, z, partial, solver.NameLeastSquares)
	require.Error(t, err)
}

func TestRecordID(t *testing.T) {
	require.Equal(t, "cells.csv_3", RecordID("cells.csv", 3))
}

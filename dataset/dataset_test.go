package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/impfit/errs"
)

const twoRepeats = `frequency,real,imag,real,imag
100,10,-1,11,-1.5
1000,9,-2,10,-2.5
10000,8,-3,9,-3.5
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestReadCSV(t *testing.T) {
	s, err := ReadCSV(strings.NewReader(twoRepeats), "cells.csv")
	require.NoError(t, err)
	require.Equal(t, "cells.csv", s.Source)
	require.Len(t, s.Omega, 3)
	require.InEpsilon(t, 2*math.Pi*100, s.Omega[0], 1e-12)
	require.Len(t, s.Z, 2)
	require.Equal(t, []complex128{complex(10, -1), complex(9, -2), complex(8, -3)}, s.Z[0])
	require.Equal(t, complex(11, -1.5), s.Z[1][0])
	require.Equal(t, complex(10, -2.5), s.Z[1][1])
}

func TestReadCSV_NoHeader(t *testing.T) {
	s, err := ReadCSV(strings.NewReader("# comment\n50, 1, 2\n60, 3, 4\n"), "x")
	require.NoError(t, err)
	require.Len(t, s.Z, 1)
	require.Equal(t, []complex128{complex(1, 2), complex(3, 4)}, s.Z[0])
}

func TestReadCSV_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"header only":     "frequency,real,imag\n",
		"missing imag":    "1,2\n",
		"ragged":          "1,2,3\n2,3,4,5,6\n",
		"bad number":      "1,2,3\n2,x,4\n",
		"zero frequency":  "0,2,3\n",
		"bad after first": "1,2,3\nfoo,2,3\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(content), "bad.csv")
			require.ErrorIs(t, err, errs.ErrInvalidDataFile)
		})
	}
}

func TestSpectrum_Window(t *testing.T) {
	s, err := ReadCSV(strings.NewReader(twoRepeats), "cells.csv")
	require.NoError(t, err)

	w := s.Window(500, 0)
	require.Len(t, w.Omega, 2)
	require.Equal(t, complex(9, -2), w.Z[0][0])
	require.Equal(t, complex(10, -2.5), w.Z[1][0])

	w = s.Window(0, 1000)
	require.Len(t, w.Omega, 2)
	require.Len(t, s.Omega, 3, "window must not modify the source")
}

func TestDataset_RecordsAndLimit(t *testing.T) {
	a := Spectrum{Source: "b.csv", Omega: []float64{1, 2}, Z: [][]complex128{{1, 2}, {3, 4}, {5, 6}}}
	b := Spectrum{Source: "a.csv", Omega: []float64{1, 2}, Z: [][]complex128{{7, 8}}}
	ds, err := New(a, b)
	require.NoError(t, err)
	require.Equal(t, []string{"a.csv", "b.csv"}, ds.Sources())
	require.Equal(t, 4, ds.Len())

	var ids []string
	for r := range ds.Records() {
		ids = append(ids, r.ID())
	}
	require.Equal(t, []string{"a.csv_0", "b.csv_0", "b.csv_1", "b.csv_2"}, ids)

	ds.SetLimit(1)
	require.Equal(t, 2, ds.Len())

	got, ok := ds.Spectrum("b.csv")
	require.True(t, ok)
	require.Len(t, got.Z, 3)

	require.ErrorIs(t, ds.Add(a), errs.ErrInvalidDataFile)
	require.ErrorIs(t, ds.Add(Spectrum{Source: "c", Omega: []float64{1}, Z: [][]complex128{{1, 2}}}), errs.ErrShapeMismatch)
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", twoRepeats)
	writeFile(t, dir, "a.csv", "100,1,2\n")
	writeFile(t, dir, "a_skip.csv", "100,1,2\n")
	writeFile(t, dir, "broken.csv", "100,1\n")
	writeFile(t, dir, "notes.txt", "ignored")

	core, logs := observer.New(zapcore.InfoLevel)
	l, err := NewLoader(dir, WithExcludeEnding("_skip.csv"), WithLoaderLogger(zap.New(core)))
	require.NoError(t, err)

	ds, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.csv", "b.csv"}, ds.Sources())
	require.Equal(t, 1, logs.FilterMessage("skipped file due to excluded ending").Len())
	require.Equal(t, 1, logs.FilterMessage("skipped unreadable file").Len())
}

func TestLoader_FilesWindowLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", twoRepeats)
	writeFile(t, dir, "a.csv", "100,1,2\n")

	l, err := NewLoader(dir, WithFiles("b.csv"), WithFrequencyWindow(500, 5000), WithLimit(1))
	require.NoError(t, err)
	ds, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	for r := range ds.Records() {
		require.Equal(t, "b.csv_0", r.ID())
		require.Len(t, r.Omega, 1)
		require.Equal(t, complex(9, -2), r.Z[0])
	}
}

func TestLoader_Errors(t *testing.T) {
	_, err := NewLoader("", WithFrequencyWindow(10, 1))
	require.Error(t, err)

	l, err := NewLoader(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	_, err = l.Load(context.Background())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "100,1,2\n")
	l, err = NewLoader(dir)
	require.NoError(t, err)
	_, err = l.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

package circuit

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/impfit/errs"
)

func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		exp := lo + (hi-lo)*float64(i)/float64(n-1)
		out[i] = math.Pow(10, exp)
	}

	return out
}

func requireClose(t *testing.T, want, got []complex128, rel float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		diff := cmplx.Abs(want[i] - got[i])
		require.LessOrEqual(t, diff, rel*cmplx.Abs(want[i]), "index %d: want %v got %v", i, want[i], got[i])
	}
}

func TestParse_ValidExpressions(t *testing.T) {
	tests := []struct {
		expr  string
		names []string
	}{
		{"R", []string{"R"}},
		{"parallel(R, C)", []string{"R", "C"}},
		{"R + C", []string{"R", "C"}},
		{"R + L + parallel(ColeCole, C)", []string{"R", "L", "eh", "el", "tau", "a", "kdc", "C"}},
		{"parallel(L, C) + R + ColeCole", []string{"L", "C", "R", "eh", "el", "tau", "a", "kdc"}},
		{"parallel(parallel(R_f1, C_f1), C)", []string{"f1_R", "f1_C", "C"}},
		{"  CPE +RC", []string{"k", "alpha", "Rd", "Cd"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			m, err := Parse(tt.expr, DefaultConstants())
			require.NoError(t, err)
			require.Equal(t, tt.names, m.ParamNames())
			require.Equal(t, tt.expr, m.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"R, L , C", errs.ErrInvalidCircuit},
		{"parallel(R + L + C)", errs.ErrInvalidCircuit},
		{"", errs.ErrInvalidCircuit},
		{"R +", errs.ErrInvalidCircuit},
		{"parallel(R, C", errs.ErrInvalidCircuit},
		{"R + R", errs.ErrInvalidCircuit},
		{"R_", errs.ErrInvalidCircuit},
		{"R_a_b", errs.ErrInvalidCircuit},
		{"R * C", errs.ErrInvalidCircuit},
		{"Warburg", errs.ErrUnknownElement},
		{"r", errs.ErrUnknownElement},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(tt.expr, DefaultConstants())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_InvalidConstants(t *testing.T) {
	c := DefaultConstants()
	c.Dm = c.Rc * 2
	_, err := Parse("R", c)
	require.ErrorIs(t, err, errs.ErrInvalidConstant)

	c = DefaultConstants()
	c.P = math.NaN()
	_, err = Parse("R", c)
	require.ErrorIs(t, err, errs.ErrInvalidConstant)
}

func TestEvaluate_ClosedForms(t *testing.T) {
	omega := logspace(0, 8, 50)
	consts := DefaultConstants()

	t.Run("series R C", func(t *testing.T) {
		m := MustParse("R + C", consts)
		z, err := m.Evaluate(omega, map[string]float64{"R": 100, "C": 1e-6})
		require.NoError(t, err)
		want := make([]complex128, len(omega))
		for i, w := range omega {
			want[i] = complex(100, -1/(w*1e-6))
		}
		requireClose(t, want, z, 1e-12)
	})

	t.Run("parallel R C equals RC", func(t *testing.T) {
		par := MustParse("parallel(R, C)", consts)
		rc := MustParse("RC", consts)
		z1, err := par.Evaluate(omega, map[string]float64{"R": 250, "C": 3e-7})
		require.NoError(t, err)
		z2, err := rc.Evaluate(omega, map[string]float64{"Rd": 250, "Cd": 3e-7})
		require.NoError(t, err)
		requireClose(t, z2, z1, 1e-10)
	})

	t.Run("inductor", func(t *testing.T) {
		m := MustParse("L", consts)
		z, err := m.Evaluate(omega, map[string]float64{"L": 1e-3})
		require.NoError(t, err)
		for i, w := range omega {
			require.InDelta(t, 0, real(z[i]), 1e-15)
			require.InEpsilon(t, w*1e-3, imag(z[i]), 1e-12)
		}
	})

	t.Run("CPE with alpha one is a capacitor", func(t *testing.T) {
		cpe := MustParse("CPE", consts)
		c := MustParse("C", consts)
		z1, err := cpe.Evaluate(omega, map[string]float64{"k": 2e-6, "alpha": 1})
		require.NoError(t, err)
		z2, err := c.Evaluate(omega, map[string]float64{"C": 2e-6})
		require.NoError(t, err)
		requireClose(t, z2, z1, 1e-9)
	})

	t.Run("ColeCole without dispersion", func(t *testing.T) {
		m := MustParse("ColeCole", consts)
		values := map[string]float64{"eh": 80, "el": 80, "tau": 1e-7, "a": 0.9, "kdc": 0.3}
		z, err := m.Evaluate(omega, values)
		require.NoError(t, err)
		want := make([]complex128, len(omega))
		for i, w := range omega {
			y := complex(0.3*consts.C0/VacuumPermittivity, w*80*consts.C0+w*consts.Cf)
			want[i] = 1 / y
		}
		requireClose(t, want, z, 1e-10)
	})
}

// With identical material everywhere the cell model collapses to a
// homogeneous medium, whatever the geometry.
func TestEvaluate_ShellModelsHomogeneous(t *testing.T) {
	omega := logspace(2, 8, 30)
	consts := DefaultConstants()
	consts.Ecp = 80
	consts.Enp = 80

	want := make([]complex128, len(omega))
	for i, w := range omega {
		eps := complexPermittivity(80, 1.2, w)
		want[i] = 1 / (complex(0, 1)*eps*complex(w*consts.C0, 0) + complex(0, w*consts.Cf))
	}

	single := MustParse("SingleShell", consts)
	z, err := single.Evaluate(omega, map[string]float64{"em": 80, "km": 1.2, "kcp": 1.2, "k": 1.2, "e": 80})
	require.NoError(t, err)
	requireClose(t, want, z, 1e-9)

	double := MustParse("DoubleShell", consts)
	z, err = double.Evaluate(omega, map[string]float64{
		"em": 80, "km": 1.2, "kcp": 1.2, "ene": 80, "kne": 1.2, "knp": 1.2, "k": 1.2, "e": 80,
	})
	require.NoError(t, err)
	requireClose(t, want, z, 1e-9)
}

func TestEvaluate_ShellModelsDiffer(t *testing.T) {
	omega := logspace(3, 8, 20)
	m := MustParse("SingleShell", DefaultConstants())
	z, err := m.Evaluate(omega, map[string]float64{"em": 10, "km": 1e-8, "kcp": 0.4, "k": 1.5, "e": 80})
	require.NoError(t, err)
	for _, v := range z {
		require.False(t, cmplx.IsNaN(v))
		require.Greater(t, real(v), 0.0)
	}
}

func TestEvaluate_MissingParameter(t *testing.T) {
	m := MustParse("parallel(R_f1, C_f1) + C", DefaultConstants())
	_, err := m.Evaluate([]float64{1, 10}, map[string]float64{"f1_R": 1, "C": 1e-6})
	require.ErrorIs(t, err, errs.ErrUnknownParameter)
	require.Contains(t, err.Error(), "f1_C")
}

func TestEvaluate_Empty(t *testing.T) {
	m := MustParse("R", DefaultConstants())
	z, err := m.Evaluate(nil, map[string]float64{"R": 1})
	require.NoError(t, err)
	require.Empty(t, z)
}

func TestLogscale(t *testing.T) {
	m := MustParse("parallel(parallel(R_f1, C_f1), C)", DefaultConstants())
	omega := logspace(0, 8, 50)
	values := map[string]float64{"f1_R": 100, "f1_C": 1e-6, "C": 1e-6}

	z, err := m.Evaluate(omega, values)
	require.NoError(t, err)
	logZ, err := Logscale(m.Evaluator())(omega, values)
	require.NoError(t, err)
	requireClose(t, LogscaleData(z), logZ, 1e-12)

	for i := range z {
		require.InDelta(t, math.Log10(cmplx.Abs(z[i])), real(logZ[i]), 1e-12)
	}
}

func TestEvaluate_Concurrent(t *testing.T) {
	m := MustParse("R + parallel(R_f1, CPE_f1) + ColeCole", DefaultConstants())
	omega := logspace(1, 7, 64)
	values := map[string]float64{
		"R": 10, "f1_R": 500, "f1_k": 1e-6, "f1_alpha": 0.8,
		"eh": 70, "el": 1e4, "tau": 1e-6, "a": 0.9, "kdc": 0.5,
	}
	ref, err := m.Evaluate(omega, values)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				z, err := m.Evaluate(omega, values)
				if err != nil || len(z) != len(ref) {
					t.Errorf("evaluate: %v", err)
					return
				}
				for i := range z {
					if z[i] != ref[i] {
						t.Errorf("index %d: %v != %v", i, z[i], ref[i])
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestConstants(t *testing.T) {
	c := DefaultConstants()
	require.NoError(t, c.Validate())
	require.InEpsilon(t, math.Pow(1-7e-9/9.05e-6, 3), c.V1(), 1e-12)
	require.InEpsilon(t, 0.6*math.Pow(9.05e-6/(9.05e-6-7e-9), 3), c.V2(), 1e-9)
	require.InEpsilon(t, math.Pow(1-40e-9/c.Rn, 3), c.V3(), 1e-12)
}

func TestLookupElement(t *testing.T) {
	e, ok := LookupElement("DoubleShell")
	require.True(t, ok)
	require.Len(t, e.Params, 8)

	e.Params[0] = "mutated"
	again, _ := LookupElement("DoubleShell")
	require.Equal(t, "em", again.Params[0])

	_, ok = LookupElement("Nope")
	require.False(t, ok)
	require.Equal(t, []string{"C", "CPE", "ColeCole", "DoubleShell", "L", "R", "RC", "SingleShell"}, Elements())
}

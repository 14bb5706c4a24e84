package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/impfit/errs"
)

func TestBuiltinFreezeTable(t *testing.T) {
	tests := []struct {
		name   string
		stages int
		freeze [][]string
	}{
		{"SingleShell", 2, [][]string{{"k", "e"}}},
		{"DoubleShell", 4, [][]string{{"k", "e"}, {"km", "em"}, {"kcp"}}},
		{"ColeCole", 2, [][]string{{"kdc", "eh"}}},
	}

	reg := Builtin()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := reg.Lookup(tt.name)
			require.True(t, ok)
			require.Equal(t, tt.stages, c.Stages)
			require.Len(t, c.Freeze, tt.stages-1)
			for i := 1; i < tt.stages; i++ {
				require.ElementsMatch(t, tt.freeze[i-1], c.FreezeBefore(i), "stage %d", i)
			}
		})
	}
}

func TestParseClass(t *testing.T) {
	reg := Builtin()

	for _, name := range []string{"DoubleShell", "doubleshell", "DOUBLESHELL", "B", "b", " B "} {
		c, err := reg.ParseClass(name)
		require.NoError(t, err, name)
		require.Equal(t, "DoubleShell", c.Name)
	}

	c, err := reg.ParseClass("a")
	require.NoError(t, err)
	require.Equal(t, "SingleShell", c.Name)

	_, err = reg.ParseClass("TripleShell")
	require.ErrorIs(t, err, errs.ErrUnknownModelClass)
}

func TestRegister(t *testing.T) {
	t.Run("adds a new class", func(t *testing.T) {
		reg := Builtin()
		err := reg.Register(Class{Name: "Debye", Stages: 3, Freeze: [][]string{{"tau"}, {"eh", "el"}}})
		require.NoError(t, err)

		c, ok := reg.Lookup("debye")
		require.True(t, ok)
		require.Equal(t, []string{"eh", "el"}, c.FreezeBefore(2))
		require.Equal(t, []string{"ColeCole", "Debye", "DoubleShell", "SingleShell"}, reg.Names())
	})

	t.Run("overrides a builtin", func(t *testing.T) {
		reg := Builtin()
		require.NoError(t, reg.Register(Class{Name: "SingleShell", Stages: 1}))

		c, ok := reg.Lookup("SingleShell")
		require.True(t, ok)
		require.Equal(t, 1, c.Stages)

		_, ok = reg.Lookup("A")
		require.False(t, ok, "alias of the replaced class is dropped")

		fresh, _ := Builtin().Lookup("SingleShell")
		require.Equal(t, 2, fresh.Stages, "registries are independent")
	})

	t.Run("rejects inconsistent schedules", func(t *testing.T) {
		reg := NewRegistry()
		require.ErrorIs(t, reg.Register(Class{Name: "X", Stages: 3, Freeze: [][]string{{"a"}}}), errs.ErrInvalidSchedule)
		require.ErrorIs(t, reg.Register(Class{Name: "X", Stages: 0}), errs.ErrInvalidSchedule)
		require.ErrorIs(t, reg.Register(Class{Stages: 1}), errs.ErrInvalidSchedule)
	})
}

func TestLookupReturnsCopy(t *testing.T) {
	reg := Builtin()
	c, _ := reg.Lookup("DoubleShell")
	c.Freeze[0][0] = "mutated"

	again, _ := reg.Lookup("DoubleShell")
	require.Equal(t, "k", again.Freeze[0][0])
}

func TestFrozenThrough(t *testing.T) {
	require.Empty(t, DoubleShell.FrozenThrough(0))
	require.Equal(t, []string{"k", "e"}, DoubleShell.FrozenThrough(1))
	require.Equal(t, []string{"k", "e", "km", "em"}, DoubleShell.FrozenThrough(2))
	require.Equal(t, []string{"k", "e", "km", "em", "kcp"}, DoubleShell.FrozenThrough(3))
	require.Equal(t, DoubleShell.FrozenThrough(3), DoubleShell.FrozenThrough(10))
	require.Nil(t, DoubleShell.FreezeBefore(0))
	require.Nil(t, DoubleShell.FreezeBefore(4))
}

func TestClassString(t *testing.T) {
	require.Equal(t, "DoubleShell(4 stages: [k e] → [km em] → [kcp])", DoubleShell.String())
	require.Equal(t, "Plain(1 stage)", Class{Name: "Plain", Stages: 1}.String())
}

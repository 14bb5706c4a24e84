package hash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, Sum([]byte(tt.data)))
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := NewFingerprint().String("k").Float(1.5).Bool(true).Sum64()
		b := NewFingerprint().String("k").Float(1.5).Bool(true).Sum64()
		require.Equal(t, a, b)
	})

	t.Run("length prefix separates strings", func(t *testing.T) {
		a := NewFingerprint().String("ab").String("c").Sum64()
		b := NewFingerprint().String("a").String("bc").Sum64()
		require.NotEqual(t, a, b)
	})

	t.Run("float bits matter", func(t *testing.T) {
		a := NewFingerprint().Float(0).Sum64()
		b := NewFingerprint().Float(math.Copysign(0, -1)).Sum64()
		require.NotEqual(t, a, b)
	})

	t.Run("flag matters", func(t *testing.T) {
		a := NewFingerprint().String("e").Bool(true).Sum64()
		b := NewFingerprint().String("e").Bool(false).Sum64()
		require.NotEqual(t, a, b)
	})
}

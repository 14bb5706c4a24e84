package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(4)
	n, err := bb.Write([]byte("IMPF"))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.NoError(t, bb.WriteByte(1))
	require.Equal(t, []byte("IMPF\x01"), bb.Bytes())
	require.Equal(t, 5, bb.Len())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity is a no-op", func(t *testing.T) {
		bb := NewByteBuffer(64)
		before := cap(bb.B)
		bb.Grow(10)
		require.Equal(t, before, cap(bb.B))
	})

	t.Run("preserves data", func(t *testing.T) {
		bb := NewByteBuffer(2)
		_, _ = bb.Write([]byte("ab"))
		bb.Grow(ArchiveBufferDefaultSize * 2)
		require.Equal(t, []byte("ab"), bb.Bytes())
		require.GreaterOrEqual(t, cap(bb.B)-len(bb.B), ArchiveBufferDefaultSize*2)
	})
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.Equal(t, "payload", out.String())
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	big := p.Get()
	big.Grow(1024)
	p.Put(big)

	got := p.Get()
	require.LessOrEqual(t, cap(got.B), 16, "oversized buffers must not be recycled")
	p.Put(nil)
}

func TestArchiveBuffer_ReturnedEmpty(t *testing.T) {
	bb := GetArchiveBuffer()
	_, _ = bb.Write([]byte("data"))
	PutArchiveBuffer(bb)

	again := GetArchiveBuffer()
	defer PutArchiveBuffer(again)
	require.Equal(t, 0, again.Len())
}

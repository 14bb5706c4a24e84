package compress

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// resultsPayload builds a YAML document shaped like a sequential run output.
func resultsPayload(records int) []byte {
	var buf bytes.Buffer
	for i := range records {
		fmt.Fprintf(&buf, "cells_%d:\n  model1:\n    k: %.17g\n    e: %.17g\n", i, 0.3+float64(i)*1e-4, 80.0-float64(i)*1e-3)
		fmt.Fprintf(&buf, "  model2:\n    km: %.17g\n    em: %.17g\n    kcp: %.17g\n", 1e-7*float64(i+1), 11.5, 0.48)
	}

	return buf.Bytes()
}

func allCodecs() map[CompressionType]Codec {
	return map[CompressionType]Codec{
		CompressionNone: NewNoOpCompressor(),
		CompressionZstd: NewZstdCompressor(),
		CompressionS2:   NewS2Compressor(),
		CompressionLZ4:  NewLZ4Compressor(),
	}
}

func TestCompressionType_String(t *testing.T) {
	tests := []struct {
		ct       CompressionType
		expected string
	}{
		{CompressionNone, "None"},
		{CompressionZstd, "Zstd"},
		{CompressionS2, "S2"},
		{CompressionLZ4, "LZ4"},
		{CompressionType(0xff), "Unknown"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.ct.String())
	}
}

func TestParseCompressionType(t *testing.T) {
	for _, in := range []string{"zstd", "ZSTD", " Zstd "} {
		ct, err := ParseCompressionType(in)
		require.NoError(t, err)
		require.Equal(t, CompressionZstd, ct)
	}

	ct, err := ParseCompressionType("")
	require.NoError(t, err)
	require.Equal(t, CompressionNone, ct)

	ct, err = ParseCompressionType("lz4")
	require.NoError(t, err)
	require.Equal(t, CompressionLZ4, ct)

	_, err = ParseCompressionType("gzip")
	require.Error(t, err)
}

func TestCreateCodec(t *testing.T) {
	for ct := range allCodecs() {
		codec, err := CreateCodec(ct, "results")
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := CreateCodec(CompressionType(0), "results")
	require.ErrorContains(t, err, "invalid results compression")

	_, err = GetCodec(CompressionType(9))
	require.Error(t, err)
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	sizes := []int{1, 10, 500}

	for ct, codec := range allCodecs() {
		for _, n := range sizes {
			t.Run(fmt.Sprintf("%s/%d", ct, n), func(t *testing.T) {
				payload := resultsPayload(n)

				packed, err := codec.Compress(payload)
				require.NoError(t, err)

				unpacked, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Equal(t, payload, unpacked)
			})
		}
	}
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for ct, codec := range allCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			out, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x13, 0x37, 0xff, 0xff, 0xff}

	for ct, codec := range allCodecs() {
		// LZ4 blocks only report corruption after exhausting buffer growth.
		if ct == CompressionNone || ct == CompressionLZ4 {
			continue
		}
		t.Run(ct.String(), func(t *testing.T) {
			_, err := codec.Decompress(garbage)
			require.Error(t, err)
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	payload := resultsPayload(200)

	for ct, codec := range allCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			var wg sync.WaitGroup
			errCh := make(chan error, 16)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					packed, err := codec.Compress(payload)
					if err != nil {
						errCh <- err
						return
					}
					out, err := codec.Decompress(packed)
					if err != nil {
						errCh <- err
						return
					}
					if !bytes.Equal(out, payload) {
						errCh <- fmt.Errorf("%s: payload mismatch", ct)
					}
				}()
			}
			wg.Wait()
			close(errCh)
			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}

func TestCompressWithStats(t *testing.T) {
	payload := resultsPayload(300)

	packed, stats, err := CompressWithStats(CompressionZstd, payload)
	require.NoError(t, err)
	require.Equal(t, CompressionZstd, stats.Algorithm)
	require.Equal(t, int64(len(payload)), stats.OriginalSize)
	require.Equal(t, int64(len(packed)), stats.CompressedSize)
	require.Less(t, stats.CompressionRatio(), 1.0)
	require.Greater(t, stats.SpaceSavings(), 0.0)

	_, _, err = CompressWithStats(CompressionType(0), payload)
	require.Error(t, err)
}

func TestCompressionStats_ZeroSize(t *testing.T) {
	var s CompressionStats
	require.Equal(t, 0.0, s.CompressionRatio())
	require.Equal(t, 100.0, s.SpaceSavings())
}

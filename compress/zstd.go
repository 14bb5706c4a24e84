package compress

// ZstdCompressor provides Zstandard compression for results archives.
//
// The implementation is selected at build time: the pure Go encoder from
// klauspost/compress by default, or libzstd via gozstd with the gozstd tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(payload)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

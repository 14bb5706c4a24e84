// Package compress provides the codecs used for compressed results archives.
//
// Fit results are persisted as YAML. Large batch runs (thousands of records with
// two models each) produce documents that compress very well, so the results
// package can wrap the YAML payload in an archive whose header names one of the
// codecs below.
//
// # Supported Algorithms
//
//   - None (CompressionNone): payload stored as-is; the results writer emits plain YAML.
//   - Zstd (CompressionZstd): best ratio, suited to archival of finished runs.
//   - S2 (CompressionS2): fast with a good ratio.
//   - LZ4 (CompressionLZ4): fastest decompression.
//
// # Usage
//
//	codec, err := compress.GetCodec(compress.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// CompressWithStats wraps the same call and reports sizes and timing, which the
// results writer logs at debug level.
//
// # Build Tags
//
// Zstd uses github.com/klauspost/compress/zstd by default. Building with
// `-tags gozstd` (cgo required) switches to the libzstd binding from
// github.com/valyala/gozstd.
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use. Zstd and LZ4 keep
// pooled encoders and decoders internally.
package compress

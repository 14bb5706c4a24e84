package results

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/arloliu/impfit/compress"
	"github.com/arloliu/impfit/endian"
	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/internal/hash"
	"github.com/arloliu/impfit/internal/options"
	"github.com/arloliu/impfit/internal/pool"
)

// Default output file names.
const (
	DefaultFile           = "outfile.yaml"
	DefaultSequentialFile = "outfile-sequential.yaml"
)

// Writer persists documents to a file.
type Writer struct {
	path        string
	compression compress.CompressionType
	engine      endian.EndianEngine
	logger      *zap.Logger
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithCompression selects the archive codec. CompressionNone writes plain YAML.
func WithCompression(t compress.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if _, err := compress.GetCodec(t); err != nil {
			return err
		}
		w.compression = t

		return nil
	})
}

// WithByteOrder selects the byte order of the archive header.
func WithByteOrder(engine endian.EndianEngine) WriterOption {
	return options.NoError(func(w *Writer) {
		if engine != nil {
			w.engine = engine
		}
	})
}

// WithLogger sets the logger used to report archive statistics.
func WithLogger(logger *zap.Logger) WriterOption {
	return options.NoError(func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	})
}

// NewWriter creates a writer for path.
func NewWriter(path string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		path:        path,
		compression: compress.CompressionNone,
		engine:      endian.GetLittleEndianEngine(),
		logger:      zap.NewNop(),
	}

	return options.Build(w, func(w *Writer) error {
		if w.path == "" {
			return fmt.Errorf("results writer needs a path")
		}

		return nil
	}, opts...)
}

// Path returns the destination file.
func (w *Writer) Path() string {
	return w.path
}

// Write encodes doc and replaces the destination file atomically.
func (w *Writer) Write(doc *Document) error {
	data, stats, err := w.encode(doc)
	if err != nil {
		return err
	}
	if err := writeAtomic(w.path, data); err != nil {
		return err
	}

	w.logger.Debug("results written",
		zap.String("path", w.path),
		zap.Int("records", doc.Len()),
		zap.Stringer("compression", stats.Algorithm),
		zap.Int64("payload_bytes", stats.OriginalSize),
		zap.Int64("stored_bytes", stats.CompressedSize),
	)

	return nil
}

func (w *Writer) encode(doc *Document) ([]byte, compress.CompressionStats, error) {
	payload, err := Marshal(doc)
	if err != nil {
		return nil, compress.CompressionStats{}, fmt.Errorf("encode results: %w", err)
	}
	if w.compression == compress.CompressionNone {
		size := int64(len(payload))
		return payload, compress.CompressionStats{Algorithm: compress.CompressionNone, OriginalSize: size, CompressedSize: size}, nil
	}

	packed, stats, err := compress.CompressWithStats(w.compression, payload)
	if err != nil {
		return nil, stats, err
	}

	h := Header{
		Version:     Version,
		Compression: w.compression,
		Checksum:    hash.Sum(payload),
		PayloadSize: uint64(len(payload)),
	}
	if endian.IsBigEndian(w.engine) {
		h.Flags |= flagBigEndian
	}

	buf := pool.GetArchiveBuffer()
	defer pool.PutArchiveBuffer(buf)

	buf.Grow(HeaderSize + len(packed))
	_, _ = buf.Write(h.Bytes())
	_, _ = buf.Write(packed)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, stats, nil
}

// Encode returns the stored form of doc for the given compression.
func Encode(doc *Document, t compress.CompressionType) ([]byte, error) {
	w := &Writer{compression: t, engine: endian.GetLittleEndianEngine(), logger: zap.NewNop()}
	if _, err := compress.GetCodec(t); err != nil {
		return nil, err
	}
	data, _, err := w.encode(doc)

	return data, err
}

// Decode parses either plain YAML or an archive.
func Decode(data []byte) (*Document, error) {
	if !IsArchive(data) {
		return Unmarshal(data)
	}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: truncated header", errs.ErrInvalidArchive)
	}

	var h Header
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(data[HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidArchive, err)
	}
	if uint64(len(payload)) != h.PayloadSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", errs.ErrInvalidArchive, len(payload), h.PayloadSize)
	}
	if hash.Sum(payload) != h.Checksum {
		return nil, errs.ErrChecksumMismatch
	}

	return Unmarshal(payload)
}

// WriteFile writes doc to path with the given compression.
func WriteFile(path string, doc *Document, t compress.CompressionType) error {
	w, err := NewWriter(path, WithCompression(t))
	if err != nil {
		return err
	}

	return w.Write(doc)
}

// ReadFile reads a document written by WriteFile or a Writer.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

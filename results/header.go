package results

import (
	"fmt"

	"github.com/arloliu/impfit/compress"
	"github.com/arloliu/impfit/endian"
	"github.com/arloliu/impfit/errs"
)

const (
	// HeaderSize is the size of the archive header in bytes.
	HeaderSize = 24
	// Version is the archive format version written by this package.
	Version = 1

	flagBigEndian = 0x0001
)

// Magic starts every results archive.
var Magic = [4]byte{'I', 'M', 'P', 'F'}

// Header is the fixed-size header of a results archive.
type Header struct {
	Version     uint8
	Compression compress.CompressionType
	// Flags is always stored little-endian so a reader can pick the engine
	// for the remaining fields.
	Flags uint16
	// Checksum is the xxHash64 of the uncompressed YAML payload.
	Checksum uint64
	// PayloadSize is the length of the uncompressed YAML payload.
	PayloadSize uint64
}

func (h *Header) engine() endian.EndianEngine {
	return endian.ForFlag(h.Flags&flagBigEndian != 0)
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly HeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidArchive for a wrong size, magic, version or compression
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", errs.ErrInvalidArchive, len(data), HeaderSize)
	}
	if [4]byte(data[0:4]) != Magic {
		return fmt.Errorf("%w: bad magic", errs.ErrInvalidArchive)
	}

	h.Version = data[4]
	h.Compression = compress.CompressionType(data[5])
	h.Flags = uint16(data[6]) | uint16(data[7])<<8

	engine := h.engine()
	h.Checksum = engine.Uint64(data[8:16])
	h.PayloadSize = engine.Uint64(data[16:24])

	if h.Version == 0 || h.Version > Version {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidArchive, h.Version)
	}
	if _, err := compress.GetCodec(h.Compression); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidArchive, err)
	}

	return nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], Magic[:])
	b[4] = h.Version
	b[5] = uint8(h.Compression)
	b[6] = byte(h.Flags)
	b[7] = byte(h.Flags >> 8)

	engine := h.engine()
	engine.PutUint64(b[8:16], h.Checksum)
	engine.PutUint64(b[16:24], h.PayloadSize)

	return b
}

// IsArchive reports whether data starts with the archive magic.
func IsArchive(data []byte) bool {
	return len(data) >= len(Magic) && [4]byte(data[0:4]) == Magic
}

package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Sum computes the xxHash64 of a byte payload, e.g. the results archive checksum.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fingerprint accumulates a stable xxHash64 over a sequence of strings, floats
// and flags. Floats are hashed by their IEEE-754 bit pattern, so -0 and +0 differ
// and every NaN payload is hashed as-is.
type Fingerprint struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewFingerprint creates an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{d: xxhash.New()}
}

// String adds a length-prefixed string so that ("ab","c") and ("a","bc") differ.
func (f *Fingerprint) String(s string) *Fingerprint {
	binary.LittleEndian.PutUint64(f.buf[:], uint64(len(s)))
	_, _ = f.d.Write(f.buf[:])
	_, _ = f.d.WriteString(s)

	return f
}

// Float adds a float64.
func (f *Fingerprint) Float(v float64) *Fingerprint {
	binary.LittleEndian.PutUint64(f.buf[:], math.Float64bits(v))
	_, _ = f.d.Write(f.buf[:])

	return f
}

// Bool adds a flag.
func (f *Fingerprint) Bool(v bool) *Fingerprint {
	b := byte(0)
	if v {
		b = 1
	}
	_, _ = f.d.Write([]byte{b})

	return f
}

// Sum64 returns the current digest.
func (f *Fingerprint) Sum64() uint64 {
	return f.d.Sum64()
}

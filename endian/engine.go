// Package endian selects the byte order of the fixed-size header of a results
// archive.
//
// Archives are written little-endian by default. The header records the order
// in a flag bit so that a reader can decode archives produced with either
// engine:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, checksum)
//
// All functions in this package are safe for concurrent use. The returned
// engines are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine == GetBigEndianEngine()
}

// ForFlag returns the engine recorded by an archive header flag.
func ForFlag(bigEndian bool) EndianEngine {
	if bigEndian {
		return GetBigEndianEngine()
	}

	return GetLittleEndianEngine()
}

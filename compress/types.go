package compress

import (
	"fmt"
	"strings"
)

// CompressionType identifies the codec used for a results archive payload.
// The numeric values are persisted in archive headers and must not change.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores the payload as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
)

var compressionNames = map[CompressionType]string{
	CompressionNone: "None",
	CompressionZstd: "Zstd",
	CompressionS2:   "S2",
	CompressionLZ4:  "LZ4",
}

func (c CompressionType) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}

	return "Unknown"
}

// ParseCompressionType converts a configuration string such as "zstd" or "LZ4"
// to a CompressionType. The empty string selects CompressionNone.
func ParseCompressionType(s string) (CompressionType, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return CompressionNone, nil
	}
	for t, n := range compressionNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown compression type %q", s)
}

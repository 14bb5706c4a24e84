package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()
	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.LittleEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x02), bytes[0], "little endian puts LSB first")
	require.Equal(t, byte(0x01), bytes[1])
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()
	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.BigEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x01), bytes[0], "big endian puts MSB first")
	require.Equal(t, byte(0x02), bytes[1])
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestForFlag(t *testing.T) {
	require.Equal(t, GetLittleEndianEngine(), ForFlag(false))
	require.Equal(t, GetBigEndianEngine(), ForFlag(true))
	require.True(t, IsBigEndian(ForFlag(true)))
	require.False(t, IsBigEndian(ForFlag(false)))
}

func TestEngines_Uint64(t *testing.T) {
	little := GetLittleEndianEngine()
	big := GetBigEndianEngine()

	var checksum uint64 = 0x0102030405060708
	lb := little.AppendUint64(nil, checksum)
	bb := big.AppendUint64(nil, checksum)

	require.NotEqual(t, lb, bb)
	require.Equal(t, checksum, little.Uint64(lb))
	require.Equal(t, checksum, big.Uint64(bb))
}

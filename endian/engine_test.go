package endian

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result)
		require.False(IsNativeLittleEndian())
	case 0x02:
		require.Equal(binary.LittleEndian, result)
		require.True(IsNativeLittleEndian())
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()
	require.Equal(t, binary.LittleEndian, engine)

	buf := engine.AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
}

func TestSizeOf(t *testing.T) {
	require.Equal(t, 1, SizeOf[int8]())
	require.Equal(t, 1, SizeOf[uint8]())
	require.Equal(t, 2, SizeOf[int16]())
	require.Equal(t, 2, SizeOf[uint16]())
	require.Equal(t, 4, SizeOf[int32]())
	require.Equal(t, 4, SizeOf[float32]())
	require.Equal(t, 8, SizeOf[uint64]())
	require.Equal(t, 8, SizeOf[float64]())
}

func TestPutGet(t *testing.T) {
	engine := GetLittleEndianEngine()

	t.Run("int8", func(t *testing.T) {
		buf := make([]byte, 1)
		Put(engine, buf, int8(-2))
		require.Equal(t, []byte{0xFE}, buf)
		require.Equal(t, int8(-2), Get[int8](engine, buf))
	})

	t.Run("int16", func(t *testing.T) {
		buf := make([]byte, 2)
		Put(engine, buf, int16(-300))
		require.Equal(t, int16(-300), Get[int16](engine, buf))
		require.Equal(t, uint16(math.MaxUint16-299), binary.LittleEndian.Uint16(buf))
	})

	t.Run("uint32", func(t *testing.T) {
		buf := make([]byte, 4)
		Put(engine, buf, uint32(0xDEADBEEF))
		require.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, buf)
		require.Equal(t, uint32(0xDEADBEEF), Get[uint32](engine, buf))
	})

	t.Run("float32", func(t *testing.T) {
		buf := make([]byte, 4)
		Put(engine, buf, float32(1.5))
		require.Equal(t, math.Float32bits(1.5), binary.LittleEndian.Uint32(buf))
		require.Equal(t, float32(1.5), Get[float32](engine, buf))
	})

	t.Run("float64", func(t *testing.T) {
		buf := make([]byte, 8)
		Put(engine, buf, -math.Pi)
		require.Equal(t, math.Float64bits(-math.Pi), binary.LittleEndian.Uint64(buf))
		require.Equal(t, -math.Pi, Get[float64](engine, buf))
	})

	t.Run("named type", func(t *testing.T) {
		type color int8
		buf := make([]byte, 1)
		Put(engine, buf, color(3))
		require.Equal(t, color(3), Get[color](engine, buf))
	})
}

func TestBits(t *testing.T) {
	require.Equal(t, uint64(0xFF), Bits(int8(-1)))
	require.Equal(t, uint64(0xFFFF), Bits(int16(-1)))
	require.Equal(t, uint64(math.Float32bits(2.5)), Bits(float32(2.5)))
	require.Equal(t, math.Float64bits(2.5), Bits(2.5))

	require.Equal(t, int8(-1), FromBits[int8](0xFF))
	require.Equal(t, int16(-1), FromBits[int16](0xFFFF))
	require.Equal(t, float32(2.5), FromBits[float32](uint64(math.Float32bits(2.5))))
	require.Equal(t, 2.5, FromBits[float64](math.Float64bits(2.5)))
}

func TestPutGetBits(t *testing.T) {
	engine := GetLittleEndianEngine()

	for _, width := range []int{1, 2, 4, 8} {
		buf := make([]byte, width)
		bits := uint64(0x0102030405060708) & (uint64(1)<<(uint(width)*8) - 1)
		if width == 8 {
			bits = 0x0102030405060708
		}
		PutBits(engine, buf, width, bits)
		require.Equal(t, bits, GetBits(engine, buf, width), "width %d", width)
	}

	require.Equal(t, uint64(0), GetBits(engine, []byte{1, 2, 3}, 3))
}

// Package endian provides the byte order primitives used by the flatwire wire format.
//
// All multi-byte scalars in a flatwire buffer are little-endian, regardless of the
// host. EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so the
// same value can be used for in-place writes and appends.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint32(buf[pos:], n)
//
// Generic helpers cover every fixed-width numeric type with a single code path:
//
//	endian.Put(engine, buf[pos:], float32(1.5))
//	v := endian.Get[int16](engine, buf[pos:])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Number is the set of fixed-width scalar types that can be stored in a buffer.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host stores scalars in wire order,
// which is the precondition for zero-copy typed views over buffer bytes.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine used by the wire format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// SizeOf returns the encoded width of T in bytes.
func SizeOf[T Number]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// Put writes v into b using engine. b must hold at least SizeOf[T]() bytes.
//
// The value is reinterpreted through its bit pattern, so floats are stored as
// their IEEE 754 representation and signed values as two's complement.
func Put[T Number](engine EndianEngine, b []byte, v T) {
	switch unsafe.Sizeof(v) {
	case 1:
		b[0] = *(*uint8)(unsafe.Pointer(&v))
	case 2:
		engine.PutUint16(b, *(*uint16)(unsafe.Pointer(&v)))
	case 4:
		engine.PutUint32(b, *(*uint32)(unsafe.Pointer(&v)))
	case 8:
		engine.PutUint64(b, *(*uint64)(unsafe.Pointer(&v)))
	}
}

// Get reads a T from b using engine. b must hold at least SizeOf[T]() bytes.
func Get[T Number](engine EndianEngine, b []byte) T {
	var v T
	switch unsafe.Sizeof(v) {
	case 1:
		u := b[0]
		v = *(*T)(unsafe.Pointer(&u))
	case 2:
		u := engine.Uint16(b)
		v = *(*T)(unsafe.Pointer(&u))
	case 4:
		u := engine.Uint32(b)
		v = *(*T)(unsafe.Pointer(&u))
	case 8:
		u := engine.Uint64(b)
		v = *(*T)(unsafe.Pointer(&u))
	}

	return v
}

// Bits returns the raw bit pattern of v widened to 64 bits.
func Bits[T Number](v T) uint64 {
	switch unsafe.Sizeof(v) {
	case 1:
		return uint64(*(*uint8)(unsafe.Pointer(&v)))
	case 2:
		return uint64(*(*uint16)(unsafe.Pointer(&v)))
	case 4:
		return uint64(*(*uint32)(unsafe.Pointer(&v)))
	default:
		return *(*uint64)(unsafe.Pointer(&v))
	}
}

// FromBits is the inverse of Bits: it narrows bits to the width of T.
func FromBits[T Number](bits uint64) T {
	var v T
	switch unsafe.Sizeof(v) {
	case 1:
		u := uint8(bits)
		v = *(*T)(unsafe.Pointer(&u))
	case 2:
		u := uint16(bits)
		v = *(*T)(unsafe.Pointer(&u))
	case 4:
		u := uint32(bits)
		v = *(*T)(unsafe.Pointer(&u))
	case 8:
		v = *(*T)(unsafe.Pointer(&bits))
	}

	return v
}

// PutBits writes the low width bytes of bits into b. width must be 1, 2, 4 or 8.
func PutBits(engine EndianEngine, b []byte, width int, bits uint64) {
	switch width {
	case 1:
		b[0] = uint8(bits)
	case 2:
		engine.PutUint16(b, uint16(bits))
	case 4:
		engine.PutUint32(b, uint32(bits))
	case 8:
		engine.PutUint64(b, bits)
	}
}

// GetBits reads width bytes from b and widens them to 64 bits.
func GetBits(engine EndianEngine, b []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(engine.Uint16(b))
	case 4:
		return uint64(engine.Uint32(b))
	case 8:
		return engine.Uint64(b)
	default:
		return 0
	}
}

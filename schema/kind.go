package schema

import (
	"fmt"
	"math"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/section"
)

// Kind is the storage type of a field, struct member or vector element.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindVector
	KindStruct
	KindTable
)

// String returns the schema language name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "byte"
	case KindUint8:
		return "ubyte"
	case KindInt16:
		return "short"
	case KindUint16:
		return "ushort"
	case KindInt32:
		return "int"
	case KindUint32:
		return "uint"
	case KindInt64:
		return "long"
	case KindUint64:
		return "ulong"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindTable:
		return "table"
	default:
		return "none"
	}
}

// IsScalar reports whether the kind is stored inline as a fixed-width number or bool.
func (k Kind) IsScalar() bool {
	return k >= KindBool && k <= KindFloat64
}

// IsInteger reports whether the kind is a signed or unsigned integer.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUint64
}

// IsFloat reports whether the kind is a floating point number.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Size returns the inline byte size of a scalar kind, or of the uoffset that
// refers to a string, vector or table. Structs have no fixed size; use
// Struct.Size.
func (k Kind) Size() int {
	switch k {
	case KindBool, KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	case KindString, KindVector, KindTable:
		return section.SizeUOffset
	default:
		return 0
	}
}

// integerRange returns the bounds of an integer kind.
func (k Kind) integerRange() (int64, uint64) {
	switch k {
	case KindInt8:
		return math.MinInt8, math.MaxInt8
	case KindUint8:
		return 0, math.MaxUint8
	case KindInt16:
		return math.MinInt16, math.MaxInt16
	case KindUint16:
		return 0, math.MaxUint16
	case KindInt32:
		return math.MinInt32, math.MaxInt32
	case KindUint32:
		return 0, math.MaxUint32
	case KindInt64:
		return math.MinInt64, math.MaxInt64
	default:
		return 0, math.MaxUint64
	}
}

// ScalarBits converts v to the little-endian bit pattern of kind.
//
// v may be nil (zero), a bool, or any Go integer or float type. Integers must
// fit the kind's range; integers are accepted for float kinds, floats are not
// accepted for integer kinds.
func ScalarBits(kind Kind, v any) (uint64, error) {
	if !kind.IsScalar() {
		return 0, fmt.Errorf("%w: %s is not a scalar kind", errs.ErrKindMismatch, kind)
	}

	var (
		i        int64
		u        uint64
		f        float64
		isSigned bool
		isFloat  bool
	)

	switch x := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if kind != KindBool {
			return 0, fmt.Errorf("%w: bool value for %s", errs.ErrKindMismatch, kind)
		}
		if x {
			return 1, nil
		}

		return 0, nil
	case int:
		i, isSigned = int64(x), true
	case int8:
		i, isSigned = int64(x), true
	case int16:
		i, isSigned = int64(x), true
	case int32:
		i, isSigned = int64(x), true
	case int64:
		i, isSigned = x, true
	case uint:
		u = uint64(x)
	case uint8:
		u = uint64(x)
	case uint16:
		u = uint64(x)
	case uint32:
		u = uint64(x)
	case uint64:
		u = x
	case float32:
		f, isFloat = float64(x), true
	case float64:
		f, isFloat = x, true
	default:
		return 0, fmt.Errorf("%w: %T value for %s", errs.ErrKindMismatch, v, kind)
	}

	switch {
	case kind == KindBool:
		return 0, fmt.Errorf("%w: numeric value for bool", errs.ErrKindMismatch)
	case kind == KindFloat32:
		switch {
		case isFloat:
		case isSigned:
			f = float64(i)
		default:
			f = float64(u)
		}

		return uint64(math.Float32bits(float32(f))), nil
	case kind == KindFloat64:
		switch {
		case isFloat:
		case isSigned:
			f = float64(i)
		default:
			f = float64(u)
		}

		return math.Float64bits(f), nil
	case isFloat:
		return 0, fmt.Errorf("%w: float value for %s", errs.ErrKindMismatch, kind)
	}

	lo, hi := kind.integerRange()
	if isSigned {
		if i < lo || (i > 0 && uint64(i) > hi) {
			return 0, fmt.Errorf("%w: %d overflows %s", errs.ErrKindMismatch, i, kind)
		}
		u = uint64(i)
	} else if u > hi {
		return 0, fmt.Errorf("%w: %d overflows %s", errs.ErrKindMismatch, u, kind)
	}

	return u & sizeMask(kind.Size()), nil
}

// ScalarValue converts a bit pattern of kind into the matching Go type:
// bool, int8 to int64, uint8 to uint64, float32 or float64.
func ScalarValue(kind Kind, bits uint64) any {
	switch kind {
	case KindBool:
		return bits != 0
	case KindInt8:
		return endian.FromBits[int8](bits)
	case KindUint8:
		return endian.FromBits[uint8](bits)
	case KindInt16:
		return endian.FromBits[int16](bits)
	case KindUint16:
		return endian.FromBits[uint16](bits)
	case KindInt32:
		return endian.FromBits[int32](bits)
	case KindUint32:
		return endian.FromBits[uint32](bits)
	case KindInt64:
		return endian.FromBits[int64](bits)
	case KindUint64:
		return bits
	case KindFloat32:
		return endian.FromBits[float32](bits)
	case KindFloat64:
		return endian.FromBits[float64](bits)
	default:
		return nil
	}
}

func sizeMask(size int) uint64 {
	if size >= 8 {
		return math.MaxUint64
	}

	return uint64(1)<<(uint(size)*8) - 1
}

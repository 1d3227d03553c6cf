package builder

import (
	"github.com/arloliu/flatwire/endian"
)

// Prepend writes a scalar at the front of the buffer, aligned to its own width.
//
// Scalars written this way are raw bytes: inside a vector they are the
// elements, anywhere else the caller is responsible for referencing them.
func Prepend[T endian.Number](b *Builder, v T) error {
	size := endian.SizeOf[T]()
	if err := b.prep(size, 0); err != nil {
		return err
	}
	endian.Put(b.engine, b.buf.Place(size), v)

	return nil
}

// PrependBool writes a bool as one byte, 1 for true.
func (b *Builder) PrependBool(v bool) error {
	var u uint8
	if v {
		u = 1
	}

	return Prepend(b, u)
}

func (b *Builder) PrependByte(v byte) error       { return Prepend(b, v) }
func (b *Builder) PrependUint8(v uint8) error     { return Prepend(b, v) }
func (b *Builder) PrependUint16(v uint16) error   { return Prepend(b, v) }
func (b *Builder) PrependUint32(v uint32) error   { return Prepend(b, v) }
func (b *Builder) PrependUint64(v uint64) error   { return Prepend(b, v) }
func (b *Builder) PrependInt8(v int8) error       { return Prepend(b, v) }
func (b *Builder) PrependInt16(v int16) error     { return Prepend(b, v) }
func (b *Builder) PrependInt32(v int32) error     { return Prepend(b, v) }
func (b *Builder) PrependInt64(v int64) error     { return Prepend(b, v) }
func (b *Builder) PrependFloat32(v float32) error { return Prepend(b, v) }
func (b *Builder) PrependFloat64(v float64) error { return Prepend(b, v) }

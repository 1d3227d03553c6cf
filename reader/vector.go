package reader

import (
	"fmt"
	"unsafe"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/section"
)

var nativeLittleEndian = endian.IsNativeLittleEndian()

// Vector is a view of a length-prefixed vector.
//
// The element type is not stored in the buffer; the accessor used decides
// how elements are interpreted.
type Vector struct {
	r     Reader
	pos   uint32 // position of the length prefix
	count int
}

// Pos returns the absolute position of the vector's length prefix.
func (v Vector) Pos() uint32 {
	return v.pos
}

// Len returns the number of elements.
func (v Vector) Len() int {
	return v.count
}

// Bytes returns the elements of a byte vector. For strings this excludes the
// terminator. The slice aliases the buffer.
func (v Vector) Bytes() []byte {
	start := int(v.pos) + section.SizePrefix
	return v.r.buf[start : start+v.count]
}

// Data returns the element region of a vector whose elements are elemSize
// bytes each. The slice aliases the buffer.
func (v Vector) Data(elemSize int) ([]byte, error) {
	start := uint64(v.pos) + section.SizePrefix
	n := v.count * elemSize
	if err := v.r.check(start, n); err != nil {
		return nil, err
	}

	return v.r.buf[start : start+uint64(n)], nil //nolint:gosec
}

// elem returns the absolute position of element i of size bytes.
func (v Vector) elem(i int, size int) (uint32, error) {
	if i < 0 || i >= v.count {
		return 0, fmt.Errorf("%w: index %d, length %d", errs.ErrIndexOutOfRange, i, v.count)
	}

	pos := uint64(v.pos) + section.SizePrefix + uint64(i)*uint64(size) //nolint:gosec
	if err := v.r.check(pos, size); err != nil {
		return 0, err
	}

	return uint32(pos), nil //nolint:gosec
}

// At returns scalar element i.
func At[T endian.Number](v Vector, i int) (T, error) {
	pos, err := v.elem(i, endian.SizeOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}

	return endian.Get[T](v.r.engine, v.r.buf[pos:]), nil
}

// Bool returns one-byte bool element i.
func (v Vector) Bool(i int) (bool, error) {
	pos, err := v.elem(i, 1)
	if err != nil {
		return false, err
	}

	return v.r.buf[pos] != 0, nil
}

// Offset returns the absolute position referenced by uoffset element i.
func (v Vector) Offset(i int) (uint32, error) {
	pos, err := v.elem(i, section.SizeUOffset)
	if err != nil {
		return 0, err
	}

	return v.r.deref(pos)
}

// Table returns table element i of a vector of tables.
func (v Vector) Table(i int) (Table, error) {
	pos, err := v.Offset(i)
	if err != nil {
		return Table{}, err
	}

	return v.r.TableAt(pos)
}

// Vector returns vector element i of a vector of vectors.
func (v Vector) Vector(i int) (Vector, error) {
	pos, err := v.Offset(i)
	if err != nil {
		return Vector{}, err
	}

	return v.r.VectorAt(pos)
}

// StringBytes returns string element i of a vector of strings. The slice
// aliases the buffer.
func (v Vector) StringBytes(i int) ([]byte, error) {
	pos, err := v.Offset(i)
	if err != nil {
		return nil, err
	}

	return v.r.StringAt(pos)
}

// String returns a copy of string element i.
func (v Vector) String(i int) (string, error) {
	b, err := v.StringBytes(i)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Struct returns inline struct element i of a vector of size-byte structs.
// The slice aliases the buffer.
func (v Vector) Struct(i int, size int) ([]byte, error) {
	pos, err := v.elem(i, size)
	if err != nil {
		return nil, err
	}

	return v.r.buf[pos : int(pos)+size], nil
}

// Materialize copies a scalar vector into a new slice.
func Materialize[T endian.Number](v Vector) ([]T, error) {
	size := endian.SizeOf[T]()
	data, err := v.Data(size)
	if err != nil {
		return nil, err
	}

	out := make([]T, v.count)
	for i := range out {
		out[i] = endian.Get[T](v.r.engine, data[i*size:])
	}

	return out, nil
}

// Strings copies a vector of strings into a new slice.
func (v Vector) Strings() ([]string, error) {
	out := make([]string, v.count)
	for i := range out {
		s, err := v.String(i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}

	return out, nil
}

// View returns the elements of a scalar vector as a []T that aliases the
// buffer, without copying.
//
// It needs a little-endian host and element storage aligned for T; otherwise
// it returns errs.ErrViewUnavailable and Materialize should be used instead.
// Buffers produced by the builder keep every vector aligned to its element
// size, so the view is available whenever the buffer's own backing array is
// aligned to the largest scalar in it. The returned slice must not be modified.
func View[T endian.Number](v Vector) ([]T, error) {
	if !nativeLittleEndian {
		return nil, errs.ErrViewUnavailable
	}

	size := endian.SizeOf[T]()
	data, err := v.Data(size)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	if uintptr(unsafe.Pointer(&data[0]))%uintptr(size) != 0 {
		return nil, fmt.Errorf("%w: element data at %p not aligned to %d", errs.ErrViewUnavailable, &data[0], size)
	}

	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), v.count), nil
}

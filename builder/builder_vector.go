package builder

import (
	"fmt"
	"unsafe"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/internal/pool"
	"github.com/arloliu/flatwire/section"
)

var nativeLittleEndian = endian.IsNativeLittleEndian()

// vectorState holds the bookkeeping of the open vector.
type vectorState struct {
	start uint32 // buffer offset when the vector was started
	bytes int    // expected element bytes
	count int
}

// StartVector opens a vector of count elements of elemSize bytes each.
//
// IMPORTANT: the buffer grows backward, so elements must be prepended in
// REVERSE order: the last element first, element 0 last. Readers see them in
// forward index order. CreateVector and CreateOffsetVector take forward
// ordered slices and do the reversal themselves.
//
// Parameters:
//   - elemSize: Byte size of one element
//   - count: Number of elements that will be prepended
//   - alignment: Alignment of the element data, a power of two
//
// Returns:
//   - error: ErrNestedTable or ErrNestedVector if another object is open,
//     ErrInvalidAlignment, or a capacity error
func (b *Builder) StartVector(elemSize, count, alignment int) error {
	if err := b.checkIdle(); err != nil {
		return err
	}
	if elemSize <= 0 || count < 0 {
		return fmt.Errorf("%w: vector of %d elements of %d bytes", errs.ErrInvalidDescriptor, count, elemSize)
	}
	if !isPowerOfTwo(alignment) {
		return fmt.Errorf("%w: vector alignment %d", errs.ErrInvalidAlignment, alignment)
	}
	if count > pool.MaxBackBufferSize/elemSize {
		return fmt.Errorf("%w: vector of %d elements of %d bytes", errs.ErrBufferTooLarge, count, elemSize)
	}

	total := elemSize * count
	if err := b.prep(section.SizePrefix, total); err != nil {
		return err
	}
	if err := b.prep(alignment, total); err != nil {
		return err
	}

	b.vector = vectorState{start: b.buf.Offset(), bytes: total, count: count}
	b.state = stateVector

	return nil
}

// EndVector closes the open vector by writing its element count.
//
// Returns:
//   - VectorOffset: Offset of the vector
//   - error: ErrNotInVector, or ErrVectorLengthMismatch if the bytes prepended
//     since StartVector differ from elemSize*count; the vector is closed
//     either way
func (b *Builder) EndVector() (VectorOffset, error) {
	off, err := b.endVector()
	if err != nil {
		return VectorOffset{}, err
	}

	return VectorOffset{ref{off: off, epoch: b.epoch}}, nil
}

func (b *Builder) endVector() (uint32, error) {
	if b.state != stateVector {
		return 0, errs.ErrNotInVector
	}
	b.state = stateIdle

	written := int(b.buf.Offset() - b.vector.start)
	if written != b.vector.bytes {
		return 0, fmt.Errorf("%w: wrote %d bytes, want %d", errs.ErrVectorLengthMismatch, written, b.vector.bytes)
	}

	if err := b.buf.Reserve(section.SizePrefix); err != nil {
		return 0, err
	}
	invariant(alignPad(int(b.buf.Offset()), section.SizePrefix) == 0)
	b.placeUint32(uint32(b.vector.count)) //nolint:gosec

	return b.buf.Offset(), nil
}

// PrependOffset writes a uoffset to a finished object. It is used to fill
// vectors of tables, strings or vectors.
func (b *Builder) PrependOffset(off Offset) error {
	target, err := b.resolve(off)
	if err != nil {
		return err
	}
	if err := b.prep(section.SizeUOffset, 0); err != nil {
		return err
	}

	dst := b.buf.Place(section.SizeUOffset)
	b.engine.PutUint32(dst, b.buf.Offset()-target)

	return nil
}

// PrependStruct writes an inline struct, aligned to alignment. It is used to
// fill vectors of structs.
func (b *Builder) PrependStruct(data []byte, alignment int) error {
	if !isPowerOfTwo(alignment) {
		return fmt.Errorf("%w: struct alignment %d", errs.ErrInvalidAlignment, alignment)
	}
	if err := b.prep(alignment, len(data)); err != nil {
		return err
	}
	copy(b.buf.Place(len(data)), data)

	return nil
}

// CreateString writes s as a string: a length prefix, the bytes, and a
// trailing zero that is not counted. Equal strings are not shared; every call
// writes a new object.
func (b *Builder) CreateString(s string) (StringOffset, error) {
	off, err := createBytes(b, s, true)
	if err != nil {
		return StringOffset{}, err
	}

	return StringOffset{ref{off: off, epoch: b.epoch}}, nil
}

// CreateByteString is like CreateString but takes its content as bytes.
func (b *Builder) CreateByteString(s []byte) (StringOffset, error) {
	off, err := createBytes(b, s, true)
	if err != nil {
		return StringOffset{}, err
	}

	return StringOffset{ref{off: off, epoch: b.epoch}}, nil
}

// CreateByteVector writes data as a vector of bytes, without a terminator.
func (b *Builder) CreateByteVector(data []byte) (VectorOffset, error) {
	off, err := createBytes(b, data, false)
	if err != nil {
		return VectorOffset{}, err
	}

	return VectorOffset{ref{off: off, epoch: b.epoch}}, nil
}

func createBytes[S ~string | ~[]byte](b *Builder, data S, terminator bool) (uint32, error) {
	if err := b.checkIdle(); err != nil {
		return 0, err
	}

	n := len(data)
	extra := 0
	if terminator {
		extra = 1
	}
	if n > pool.MaxBackBufferSize-extra-section.SizePrefix {
		return 0, fmt.Errorf("%w: %d bytes", errs.ErrBufferTooLarge, n)
	}

	if err := b.prep(section.SizePrefix, n+extra); err != nil {
		return 0, err
	}
	if terminator {
		b.buf.Place(1)[0] = 0
	}
	copy(b.buf.Place(n), data)
	b.placeUint32(uint32(n)) //nolint:gosec

	return b.buf.Offset(), nil
}

// CreateVector writes values as a vector of scalars. values is in forward
// order; the reversal required by StartVector is handled here.
func CreateVector[T endian.Number](b *Builder, values []T) (VectorOffset, error) {
	size := endian.SizeOf[T]()
	if err := b.StartVector(size, len(values), size); err != nil {
		return VectorOffset{}, err
	}

	dst := b.buf.Place(size * len(values))
	if nativeLittleEndian && len(values) > 0 {
		copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(dst)))
	} else {
		for i, v := range values {
			endian.Put(b.engine, dst[i*size:], v)
		}
	}

	return b.EndVector()
}

// CreateBoolVector writes values as a vector of one-byte bools.
func (b *Builder) CreateBoolVector(values []bool) (VectorOffset, error) {
	if err := b.StartVector(1, len(values), 1); err != nil {
		return VectorOffset{}, err
	}

	dst := b.buf.Place(len(values))
	for i, v := range values {
		dst[i] = uint8(boolBits(v))
	}

	return b.EndVector()
}

// CreateOffsetVector writes a vector of offsets to finished tables, strings or
// vectors. offs is in forward order. All offsets are validated before
// anything is written.
func CreateOffsetVector[O Offset](b *Builder, offs []O) (VectorOffset, error) {
	for i, off := range offs {
		if _, err := b.resolve(off); err != nil {
			return VectorOffset{}, fmt.Errorf("element %d: %w", i, err)
		}
	}

	if err := b.StartVector(section.SizeUOffset, len(offs), section.SizeUOffset); err != nil {
		return VectorOffset{}, err
	}

	for i := len(offs) - 1; i >= 0; i-- {
		if err := b.PrependOffset(offs[i]); err != nil {
			b.state = stateIdle
			return VectorOffset{}, err
		}
	}

	return b.EndVector()
}

// CreateStructVector writes a vector of inline structs of size bytes each.
// data holds the structs back to back in forward order.
func (b *Builder) CreateStructVector(data []byte, size, alignment int) (VectorOffset, error) {
	if size <= 0 || len(data)%size != 0 {
		return VectorOffset{}, fmt.Errorf("%w: %d bytes of %d-byte structs", errs.ErrInvalidDescriptor, len(data), size)
	}

	if err := b.StartVector(size, len(data)/size, alignment); err != nil {
		return VectorOffset{}, err
	}
	copy(b.buf.Place(len(data)), data)

	return b.EndVector()
}

package section

import (
	"fmt"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
)

// Vtable is a read-only view over an encoded vtable.
type Vtable struct {
	data []byte
}

// ParseVtable wraps the vtable that starts at data[0].
//
// It checks that the declared vtable size is well-formed and fits data;
// slot values are not checked against the object size here.
func ParseVtable(data []byte) (Vtable, error) {
	if len(data) < VtableMetadataSize {
		return Vtable{}, fmt.Errorf("%w: vtable header needs %d bytes, have %d", errs.ErrOutOfBounds, VtableMetadataSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()
	size := int(engine.Uint16(data))
	if size < VtableMetadataSize || size%SizeVOffset != 0 {
		return Vtable{}, fmt.Errorf("%w: malformed vtable size %d", errs.ErrOutOfBounds, size)
	}
	if size > len(data) {
		return Vtable{}, fmt.Errorf("%w: vtable size %d exceeds %d available bytes", errs.ErrOutOfBounds, size, len(data))
	}

	return Vtable{data: data[:size]}, nil
}

// Size returns the vtable byte size.
func (v Vtable) Size() int {
	return len(v.data)
}

// ObjectSize returns the byte size of the table the vtable describes,
// including its leading soffset.
func (v Vtable) ObjectSize() int {
	return int(endian.GetLittleEndianEngine().Uint16(v.data[SizeVOffset:]))
}

// NumSlots returns the number of field slots stored in the vtable.
func (v Vtable) NumSlots() int {
	return (len(v.data) - VtableMetadataSize) / SizeVOffset
}

// Slot returns the in-object offset of field id, or 0 if the field is absent.
// Ids beyond the stored slots are absent.
func (v Vtable) Slot(id int) uint16 {
	if id < 0 || id >= v.NumSlots() {
		return 0
	}

	return endian.GetLittleEndianEngine().Uint16(v.data[VtableMetadataSize+id*SizeVOffset:])
}

// Bytes returns the encoded vtable.
func (v Vtable) Bytes() []byte {
	return v.data
}

// VtableSize returns the encoded size of a vtable with numSlots slots.
func VtableSize(numSlots int) int {
	return VtableMetadataSize + numSlots*SizeVOffset
}

// AppendVtable appends the encoding of a vtable to dst.
//
// slots[i] is the in-object offset of field i, or 0 when the field is absent.
// Trailing absent slots are trimmed so that equal shapes always encode to the
// same bytes.
func AppendVtable(dst []byte, objectSize uint16, slots []uint16) []byte {
	n := len(slots)
	for n > 0 && slots[n-1] == 0 {
		n--
	}

	engine := endian.GetLittleEndianEngine()
	dst = engine.AppendUint16(dst, uint16(VtableSize(n))) //nolint:gosec
	dst = engine.AppendUint16(dst, objectSize)
	for _, slot := range slots[:n] {
		dst = engine.AppendUint16(dst, slot)
	}

	return dst
}

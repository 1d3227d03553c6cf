package reader

import (
	"fmt"
	"unsafe"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/section"
)

// Table is a view of one table in a buffer.
//
// Fields are addressed by id. A scalar field that is absent reads as the
// caller-supplied default without touching the buffer. An offset field that is
// absent returns errs.ErrFieldAbsent, which is distinct from a present but
// empty vector or string.
type Table struct {
	r      Reader
	pos    uint32
	vtPos  uint32
	vtable section.Vtable
}

// Pos returns the absolute position of the table.
func (t Table) Pos() uint32 {
	return t.pos
}

// VtablePos returns the absolute position of the table's vtable. Tables of
// the same shape share it.
func (t Table) VtablePos() uint32 {
	return t.vtPos
}

// Vtable returns the table's vtable.
func (t Table) Vtable() section.Vtable {
	return t.vtable
}

// ObjectSize returns the byte size of the table, including its vtable offset.
func (t Table) ObjectSize() int {
	return t.vtable.ObjectSize()
}

// Has reports whether field id is present.
func (t Table) Has(id int) bool {
	return t.vtable.Slot(id) != 0
}

// field returns the absolute position of field id, checked to hold width bytes
// inside the table. ok is false when the field is absent.
func (t Table) field(id int, width int) (uint32, bool, error) {
	slot := t.vtable.Slot(id)
	if slot == 0 {
		return 0, false, nil
	}
	if int(slot)+width > t.vtable.ObjectSize() {
		return 0, false, fmt.Errorf("%w: field %d at %d with %d bytes exceeds table of %d bytes",
			errs.ErrOutOfBounds, id, slot, width, t.vtable.ObjectSize())
	}

	return t.pos + uint32(slot), true, nil
}

// ScalarBits reads the raw bit pattern of a scalar field of width bytes, or
// returns defBits when the field is absent.
func (t Table) ScalarBits(id int, width int, defBits uint64) (uint64, error) {
	switch width {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("%w: scalar width %d", errs.ErrInvalidDescriptor, width)
	}

	pos, ok, err := t.field(id, width)
	if err != nil || !ok {
		return defBits, err
	}

	return endian.GetBits(t.r.engine, t.r.buf[pos:], width), nil
}

// GetField reads a scalar field, or returns def when it is absent.
func GetField[T endian.Number](t Table, id int, def T) (T, error) {
	size := endian.SizeOf[T]()

	pos, ok, err := t.field(id, size)
	if err != nil || !ok {
		return def, err
	}

	return endian.Get[T](t.r.engine, t.r.buf[pos:]), nil
}

// GetBool reads a one-byte bool field, or returns def when it is absent.
func (t Table) GetBool(id int, def bool) (bool, error) {
	pos, ok, err := t.field(id, 1)
	if err != nil || !ok {
		return def, err
	}

	return t.r.buf[pos] != 0, nil
}

// Offset returns the absolute position of the object referenced by offset field id.
func (t Table) Offset(id int) (uint32, error) {
	pos, ok, err := t.field(id, section.SizeUOffset)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: field %d", errs.ErrFieldAbsent, id)
	}

	return t.r.deref(pos)
}

// Table returns the table referenced by field id.
func (t Table) Table(id int) (Table, error) {
	pos, err := t.Offset(id)
	if err != nil {
		return Table{}, err
	}

	return t.r.TableAt(pos)
}

// Vector returns the vector referenced by field id.
func (t Table) Vector(id int) (Vector, error) {
	pos, err := t.Offset(id)
	if err != nil {
		return Vector{}, err
	}

	return t.r.VectorAt(pos)
}

// StringBytes returns the string referenced by field id. The slice aliases
// the buffer.
func (t Table) StringBytes(id int) ([]byte, error) {
	pos, err := t.Offset(id)
	if err != nil {
		return nil, err
	}

	return t.r.StringAt(pos)
}

// String returns a copy of the string referenced by field id.
func (t Table) String(id int) (string, error) {
	b, err := t.StringBytes(id)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// UnsafeString returns the string referenced by field id without copying.
// The result is only valid while the buffer is alive and unmodified.
func (t Table) UnsafeString(id int) (string, error) {
	b, err := t.StringBytes(id)
	if err != nil || len(b) == 0 {
		return "", err
	}

	return unsafe.String(&b[0], len(b)), nil
}

// Struct returns the size bytes of the inline struct field id. The slice
// aliases the buffer.
func (t Table) Struct(id int, size int) ([]byte, error) {
	pos, ok, err := t.field(id, size)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: field %d", errs.ErrFieldAbsent, id)
	}

	return t.r.buf[pos : int(pos)+size], nil
}

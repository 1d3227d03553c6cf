package reader

import (
	"fmt"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
	"github.com/arloliu/flatwire/section"
)

// Reader is a read-only view over a finished buffer.
//
// A Reader never copies or mutates the buffer. All positions are absolute
// byte positions within Bytes(). The caller must not modify the buffer while
// a Reader, or any Table or Vector obtained from it, is in use.
type Reader struct {
	buf    []byte
	engine endian.EndianEngine
}

// New creates a Reader over buf, a buffer produced by Finish or
// FinishWithFileIdentifier.
//
// Returns:
//   - Reader: The reader
//   - error: ErrBufferTooShort if buf cannot hold a root offset
func New(buf []byte) (Reader, error) {
	if len(buf) < section.SizeUOffset {
		return Reader{}, fmt.Errorf("%w: %d bytes", errs.ErrBufferTooShort, len(buf))
	}

	return Reader{buf: buf, engine: endian.GetLittleEndianEngine()}, nil
}

// NewSizePrefixed creates a Reader over a size-prefixed buffer produced by
// FinishSizePrefixed. The prefix is validated and stripped; trailing bytes
// beyond the declared size are ignored.
func NewSizePrefixed(buf []byte) (Reader, error) {
	if len(buf) < section.SizePrefix+section.SizeUOffset {
		return Reader{}, fmt.Errorf("%w: %d bytes", errs.ErrBufferTooShort, len(buf))
	}

	engine := endian.GetLittleEndianEngine()
	size := uint64(engine.Uint32(buf))
	if size > uint64(len(buf)-section.SizePrefix) {
		return Reader{}, fmt.Errorf("%w: size prefix %d exceeds %d available bytes", errs.ErrOutOfBounds, size, len(buf)-section.SizePrefix)
	}

	return New(buf[section.SizePrefix : section.SizePrefix+int(size)])
}

// Bytes returns the underlying buffer.
func (r Reader) Bytes() []byte {
	return r.buf
}

// Len returns the buffer size in bytes.
func (r Reader) Len() int {
	return len(r.buf)
}

// RootPos returns the absolute position of the root table.
func (r Reader) RootPos() (uint32, error) {
	return r.deref(0)
}

// Root returns the root table.
func (r Reader) Root() (Table, error) {
	pos, err := r.RootPos()
	if err != nil {
		return Table{}, err
	}

	return r.TableAt(pos)
}

// Identifier returns the 4 bytes following the root offset. The second
// result is false when the buffer is too short to hold one. A buffer
// finished without identifier returns whatever bytes follow the root offset.
func (r Reader) Identifier() (format.Identifier, bool) {
	var id format.Identifier
	if len(r.buf) < section.SizeUOffset+section.FileIdentifierLength {
		return id, false
	}
	copy(id[:], r.buf[section.SizeUOffset:])

	return id, true
}

// HasIdentifier reports whether the buffer carries the file identifier id.
func (r Reader) HasIdentifier(id format.Identifier) bool {
	got, ok := r.Identifier()
	return ok && got == id
}

// check verifies that n bytes are readable at pos.
func (r Reader) check(pos uint64, n int) error {
	if pos+uint64(n) > uint64(len(r.buf)) { //nolint:gosec
		return fmt.Errorf("%w: %d bytes at %d, buffer has %d", errs.ErrOutOfBounds, n, pos, len(r.buf))
	}

	return nil
}

// deref follows the uoffset stored at pos.
func (r Reader) deref(pos uint32) (uint32, error) {
	if err := r.check(uint64(pos), section.SizeUOffset); err != nil {
		return 0, err
	}

	target := uint64(pos) + uint64(r.engine.Uint32(r.buf[pos:]))
	if target >= uint64(len(r.buf)) {
		return 0, fmt.Errorf("%w: offset at %d points to %d, buffer has %d", errs.ErrOutOfBounds, pos, target, len(r.buf))
	}

	return uint32(target), nil //nolint:gosec
}

// TableAt returns the table at absolute position pos.
//
// The vtable is located and validated: it must lie inside the buffer and the
// table's declared object size must fit as well.
func (r Reader) TableAt(pos uint32) (Table, error) {
	if err := r.check(uint64(pos), section.SizeSOffset); err != nil {
		return Table{}, err
	}

	soffset := int32(r.engine.Uint32(r.buf[pos:])) //nolint:gosec
	vtPos := int64(pos) - int64(soffset)
	if vtPos < 0 || vtPos >= int64(len(r.buf)) {
		return Table{}, fmt.Errorf("%w: vtable of table at %d is at %d", errs.ErrOutOfBounds, pos, vtPos)
	}

	vt, err := section.ParseVtable(r.buf[vtPos:])
	if err != nil {
		return Table{}, err
	}

	objectSize := vt.ObjectSize()
	if objectSize < section.SizeSOffset {
		return Table{}, fmt.Errorf("%w: table at %d declares object size %d", errs.ErrOutOfBounds, pos, objectSize)
	}
	if err := r.check(uint64(pos), objectSize); err != nil {
		return Table{}, err
	}

	return Table{r: r, pos: pos, vtPos: uint32(vtPos), vtable: vt}, nil //nolint:gosec
}

// VectorAt returns the vector whose length prefix is at absolute position pos.
func (r Reader) VectorAt(pos uint32) (Vector, error) {
	if err := r.check(uint64(pos), section.SizePrefix); err != nil {
		return Vector{}, err
	}

	count := r.engine.Uint32(r.buf[pos:])
	// Every element takes at least one byte.
	if err := r.check(uint64(pos)+section.SizePrefix, int(count)); err != nil {
		return Vector{}, err
	}

	return Vector{r: r, pos: pos, count: int(count)}, nil
}

// StringAt returns the bytes of the string at absolute position pos, without
// its terminator. The slice aliases the buffer.
func (r Reader) StringAt(pos uint32) ([]byte, error) {
	v, err := r.VectorAt(pos)
	if err != nil {
		return nil, err
	}

	return v.Bytes(), nil
}

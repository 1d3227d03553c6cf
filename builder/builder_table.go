package builder

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/section"
)

type fieldKind uint8

const (
	fieldScalar fieldKind = iota
	fieldOffset
	fieldStruct
)

// pendingField is a field recorded between StartTable and EndTable.
// Field bytes are only written by EndTable, once the layout is known.
type pendingField struct {
	id     int
	kind   fieldKind
	width  int
	align  int
	bits   uint64 // scalar bit pattern
	target uint32 // end-relative position of the referenced object
	start  int    // start of inline struct bytes in tableState.structs
	pos    uint32 // end-relative position once written
}

// tableState holds the transient records of the open table.
type tableState struct {
	fields  []pendingField
	seen    []uint64 // bitset of field ids added to the open table
	structs []byte   // copies of inline struct fields
	slots   []uint16
	vtable  []byte
}

func (t *tableState) reset() {
	t.fields = t.fields[:0]
	clear(t.seen)
	t.structs = t.structs[:0]
}

// mark records id as added and reports whether it already was.
func (t *tableState) mark(id int) bool {
	word, bit := id/64, uint64(1)<<(id%64)
	if word >= len(t.seen) {
		t.seen = append(t.seen, make([]uint64, word+1-len(t.seen))...)
	}
	if t.seen[word]&bit != 0 {
		return true
	}
	t.seen[word] |= bit

	return false
}

// StartTable opens a new table.
//
// Returns:
//   - error: ErrNestedTable or ErrNestedVector if another object is open,
//     ErrAlreadyFinished after Finish
func (b *Builder) StartTable() error {
	if err := b.checkIdle(); err != nil {
		return err
	}

	b.table.reset()
	b.state = stateTable

	return nil
}

// checkField validates the table state and the field id.
func (b *Builder) checkField(id int) error {
	if b.state != stateTable {
		return errs.ErrNotInTable
	}
	if id < 0 || id > section.MaxFieldID {
		return fmt.Errorf("%w: %d (max %d)", errs.ErrInvalidFieldID, id, section.MaxFieldID)
	}

	return nil
}

func (b *Builder) markField(id int) error {
	if b.table.mark(id) {
		return fmt.Errorf("%w: %d", errs.ErrDuplicateField, id)
	}

	return nil
}

// AddFieldBits records a scalar field from its raw bit pattern.
//
// width is the slot width in bytes (1, 2, 4 or 8); bits and defBits are
// truncated to it. The field is elided when bits equals defBits, unless the
// builder was created WithForceDefaults. An elided field still counts as
// added for duplicate detection.
//
// Parameters:
//   - id: Field id, the slot index in the vtable
//   - width: Scalar width in bytes
//   - bits: Little-endian bit pattern of the value
//   - defBits: Bit pattern of the field's default value
func (b *Builder) AddFieldBits(id int, width int, bits, defBits uint64) error {
	if err := b.checkField(id); err != nil {
		return err
	}

	var mask uint64
	switch width {
	case 1, 2, 4:
		mask = uint64(1)<<(uint(width)*8) - 1
	case 8:
		mask = ^uint64(0)
	default:
		return fmt.Errorf("%w: scalar width %d", errs.ErrInvalidDescriptor, width)
	}

	if err := b.markField(id); err != nil {
		return err
	}

	bits &= mask
	if bits == defBits&mask && !b.forceDefaults {
		return nil
	}

	b.table.fields = append(b.table.fields, pendingField{
		id:    id,
		kind:  fieldScalar,
		width: width,
		align: width,
		bits:  bits,
	})

	return nil
}

// AddField records a scalar field. It is elided when v equals def.
func AddField[T endian.Number](b *Builder, id int, v, def T) error {
	return b.AddFieldBits(id, endian.SizeOf[T](), endian.Bits(v), endian.Bits(def))
}

// AddFieldBool records a bool field stored as one byte.
func (b *Builder) AddFieldBool(id int, v, def bool) error {
	return b.AddFieldBits(id, 1, boolBits(v), boolBits(def))
}

// AddFieldOffset records a field referring to a finished table, string or vector.
//
// Returns:
//   - error: ErrUnresolvedOffset if off is unset, comes from another builder
//     or from before the last Reset
func (b *Builder) AddFieldOffset(id int, off Offset) error {
	if err := b.checkField(id); err != nil {
		return err
	}

	target, err := b.resolve(off)
	if err != nil {
		return err
	}

	if err := b.markField(id); err != nil {
		return err
	}

	b.table.fields = append(b.table.fields, pendingField{
		id:     id,
		kind:   fieldOffset,
		width:  section.SizeUOffset,
		align:  section.SizeUOffset,
		target: target,
	})

	return nil
}

// AddFieldStruct records an inline struct field.
//
// data is the struct's little-endian encoding, including its internal
// padding; it is copied. alignment is the struct's alignment, the largest
// alignment of its members unless forced higher.
func (b *Builder) AddFieldStruct(id int, data []byte, alignment int) error {
	if err := b.checkField(id); err != nil {
		return err
	}
	if !isPowerOfTwo(alignment) {
		return fmt.Errorf("%w: struct alignment %d", errs.ErrInvalidAlignment, alignment)
	}
	if len(data) == 0 || len(data) > section.MaxObjectSize {
		return fmt.Errorf("%w: struct size %d", errs.ErrInvalidDescriptor, len(data))
	}

	if err := b.markField(id); err != nil {
		return err
	}

	start := len(b.table.structs)
	b.table.structs = append(b.table.structs, data...)
	b.table.fields = append(b.table.fields, pendingField{
		id:    id,
		kind:  fieldStruct,
		width: len(data),
		align: alignment,
		start: start,
	})

	return nil
}

// EndTable writes the open table and returns its offset.
//
// Fields are laid out largest alignment first so padding stays minimal, then
// the table's vtable is looked up by content and only written when no
// identical vtable exists in the buffer yet.
//
// The layout is computed before any byte is written. If the table cannot be
// represented (ErrTableTooLarge) or the buffer cannot grow, the open table is
// discarded and the buffer is left unchanged.
func (b *Builder) EndTable() (TableOffset, error) {
	return b.endTable(true)
}

// EndTableOriginalOrder is like EndTable but lays the fields out in the order
// they were added, the first added field ending up at the highest address.
// Padding is inserted wherever alignment requires it.
func (b *Builder) EndTableOriginalOrder() (TableOffset, error) {
	return b.endTable(false)
}

func (b *Builder) endTable(sorted bool) (TableOffset, error) {
	if b.state != stateTable {
		return TableOffset{}, errs.ErrNotInTable
	}
	b.state = stateIdle

	t := &b.table
	if sorted {
		slices.SortStableFunc(t.fields, func(x, y pendingField) int {
			return cmp.Compare(y.align, x.align)
		})
	}

	// The object starts on its largest alignment, so its inner padding and
	// size depend only on its shape. The leading pad is not part of it.
	objectAlign := section.SizeSOffset
	numSlots := 0
	for _, f := range t.fields {
		objectAlign = max(objectAlign, f.align)
		numSlots = max(numSlots, f.id+1)
	}

	lead := alignPad(int(b.buf.Offset()), objectAlign)
	start := int(b.buf.Offset()) + lead
	pos := start
	for _, f := range t.fields {
		pos += alignPad(pos+f.width, f.align) + f.width
	}
	pos += alignPad(pos+section.SizeSOffset, section.SizeSOffset) + section.SizeSOffset

	objectSize := pos - start
	if objectSize > section.MaxObjectSize {
		return TableOffset{}, fmt.Errorf("%w: object needs %d bytes", errs.ErrTableTooLarge, objectSize)
	}

	vtSize := section.VtableSize(numSlots)
	if vtSize > section.MaxVtableSize {
		return TableOffset{}, fmt.Errorf("%w: vtable needs %d bytes", errs.ErrTableTooLarge, vtSize)
	}

	if err := b.buf.Reserve(lead + objectSize + vtSize); err != nil {
		return TableOffset{}, err
	}
	b.alignFor(objectAlign, 0)
	invariant(int(b.buf.Offset()) == start)

	for i := range t.fields {
		f := &t.fields[i]
		b.alignFor(f.align, f.width)
		dst := b.buf.Place(f.width)

		switch f.kind {
		case fieldScalar:
			endian.PutBits(b.engine, dst, f.width, f.bits)
		case fieldOffset:
			b.engine.PutUint32(dst, b.buf.Offset()-f.target)
		case fieldStruct:
			copy(dst, t.structs[f.start:f.start+f.width])
		}
		f.pos = b.buf.Offset()
	}

	b.alignFor(section.SizeSOffset, section.SizeSOffset)
	objectOffset := b.buf.Offset() + section.SizeSOffset
	invariant(int(objectOffset)-start == objectSize)

	t.slots = slices.Grow(t.slots[:0], numSlots)[:numSlots]
	clear(t.slots)
	for _, f := range t.fields {
		t.slots[f.id] = uint16(objectOffset - f.pos) //nolint:gosec
	}
	t.vtable = section.AppendVtable(t.vtable[:0], uint16(objectSize), t.slots) //nolint:gosec

	b.writeVtable(objectOffset, t.vtable)
	b.tables++

	return TableOffset{ref{off: objectOffset, epoch: b.epoch}}, nil
}

// writeVtable writes the table's soffset, followed by the vtable itself when
// no identical vtable is stored yet. Capacity must already be reserved.
func (b *Builder) writeVtable(objectOffset uint32, vt []byte) {
	vtOff, digest, ok := b.vtables.Find(vt, b.buf.At)
	if ok {
		// The stored vtable lies after the table: a negative distance.
		b.engine.PutUint32(b.buf.Place(section.SizeSOffset), uint32(int32(vtOff)-int32(objectOffset))) //nolint:gosec
		invariant(b.buf.Offset() == objectOffset)

		return
	}

	b.engine.PutUint32(b.buf.Place(section.SizeSOffset), uint32(len(vt))) //nolint:gosec
	copy(b.buf.Place(len(vt)), vt)
	invariant(b.buf.Offset() == objectOffset+uint32(len(vt))) //nolint:gosec

	b.vtables.Add(digest, b.buf.Offset())
}

func boolBits(v bool) uint64 {
	if v {
		return 1
	}

	return 0
}

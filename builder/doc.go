// Package builder constructs flatwire buffers.
//
// A buffer is built back to front: leaf objects first, then the tables that
// refer to them, and finally the root. Every constructor returns a typed
// offset (TableOffset, StringOffset, VectorOffset) that can only be stored
// where that kind of object is expected.
//
// # Basic Usage
//
//	b, _ := builder.NewBuilder()
//
//	name, _ := b.CreateString("Orc")
//	inventory, _ := builder.CreateVector(b, []uint8{0, 1, 2, 3})
//
//	_ = b.StartTable()
//	_ = builder.AddField[int16](b, 2, 150, 100)   // hp, default 100
//	_ = b.AddFieldOffset(3, name)
//	_ = b.AddFieldOffset(5, inventory)
//	monster, _ := b.EndTable()
//
//	_ = b.Finish(monster)
//	buf, _ := b.FinishedBytes()
//
// # Vectors
//
// StartVector/EndVector give element-level control. Elements must be
// prepended in REVERSE order because the buffer grows backward; the reader
// presents them in forward order. The CreateVector helpers take forward
// ordered slices and do the reversal.
//
// # Defaults
//
// A scalar field whose value equals its default is not written at all; the
// reader substitutes the default. WithForceDefaults disables this.
//
// # Vtable Sharing
//
// Tables with the same shape (same field positions and object size) share a
// single vtable. Vtables are interned by an xxHash64 digest of their encoding
// and confirmed byte by byte, so digest collisions never merge different
// vtables.
//
// # Errors
//
// All misuse is reported at the offending call with a sentinel from the errs
// package: nesting objects, referencing offsets that do not belong to the
// current buffer, duplicate fields, or exceeding the 16-bit table limits.
// A broken internal layout invariant panics with errs.AlignmentInvariantViolation.
//
// # Thread Safety
//
// A Builder must be used by one goroutine at a time. Finished bytes are
// immutable and may be shared freely.
package builder

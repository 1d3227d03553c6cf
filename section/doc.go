// Package section defines the low-level binary structures and constants of the flatwire formats.
//
// It covers two layouts: the vtable that describes a table's field positions,
// and the fixed header of the frame envelope that wraps finished buffers.
//
// # Buffer Layout
//
// A finished buffer is read from low to high addresses:
//
//	┌──────────────────────────────────────────────┐
//	│ [size:u32]   optional, size-prefixed buffers  │
//	│ root:u32     forward offset to the root table │
//	│ [id:4]       optional file identifier         │
//	├──────────────────────────────────────────────┤
//	│ vtables, tables, vectors and strings         │
//	└──────────────────────────────────────────────┘
//
// A table starts with a signed 32-bit distance to its vtable
// (vtable = table - soffset). A vtable is a sequence of uint16 values:
//
//	[vtable_byte_size][object_byte_size][slot 0][slot 1]...
//
// where each slot holds the field's byte offset inside the table, or 0 when
// the field is absent. All scalars are little-endian.
//
// # Frame Layout
//
// The frame header is 24 bytes:
//
//	┌────────┬──────┬─────┬──────────┬─────────────┬──────┬──────────┐
//	│options │ comp │ rsv │ raw_size │ stored_size │  id  │ checksum │
//	│  u16   │  u8  │ u8  │   u32    │     u32     │  4B  │   u64    │
//	└────────┴──────┴─────┴──────────┴─────────────┴──────┴──────────┘
//
// followed by stored_size bytes of (possibly compressed) payload.
//
// # Thread Safety
//
// All types in this package are values and are safe to share once built.
package section

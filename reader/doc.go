// Package reader provides zero-copy access to finished flatwire buffers.
//
// A Reader interprets buffer bytes in place. Tables, vectors and strings are
// small value types that point into the buffer; nothing is decoded up front,
// and each accessor reads only the bytes it needs, under bounds checks.
//
// # Basic Usage
//
//	r, err := reader.New(buf)
//	if err != nil {
//	    return err
//	}
//	monster, err := r.Root()
//	hp, err := reader.GetField[int16](monster, 2, 100)
//	name, err := monster.String(3)
//	inventory, err := monster.Vector(5)
//	first, err := reader.At[uint8](inventory, 0)
//
// # Absent Fields
//
// Absent scalar fields return the default passed by the caller. Absent
// offset fields (tables, vectors, strings, structs) return errs.ErrFieldAbsent,
// which is distinct from a present vector or string of length zero.
//
// # Copies
//
// String, Strings and Materialize copy; StringBytes, Bytes, Struct and View
// alias the buffer. View returns errs.ErrViewUnavailable on big-endian hosts
// or when the storage is not aligned for the element type.
//
// # Errors
//
// Malformed buffers produce errs.ErrOutOfBounds instead of panics; vector
// indexes beyond the length produce errs.ErrIndexOutOfRange. A failed read
// never modifies the buffer.
//
// # Thread Safety
//
// Reader, Table and Vector are immutable values and are safe for concurrent
// use from any number of goroutines.
package reader

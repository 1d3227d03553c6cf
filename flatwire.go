// Package flatwire builds and reads FlatBuffers-compatible binary buffers
// without code generation.
//
// A buffer is written back to front by a Builder: leaf objects (strings,
// vectors, nested tables) first, then the tables that refer to them, and
// finally the root. Tables store only the fields that differ from their
// defaults and share identical vtables. Readers access the finished bytes in
// place, with every position bounds checked.
//
// # Core Features
//
//   - Little-endian wire format readable by any FlatBuffers implementation
//   - Vtable deduplication keyed by xxHash64 digests
//   - Typed offsets that reject references into other or reset builders
//   - Optional file identifiers and size prefixes
//   - Zero-copy strings, byte vectors and numeric vector views
//   - Schema descriptors with defaults, enums, keys and JSON Schema export
//   - Framed envelopes with Zstd, S2 or LZ4 compression and checksums
//
// # Basic Usage
//
// Building a buffer:
//
//	import "github.com/arloliu/flatwire"
//
//	b, _ := flatwire.NewBuilder()
//	name, _ := b.CreateString("Orc")
//
//	b.StartTable()
//	builder.AddField[int16](b, 2, 300, 100) // hp, default 100
//	b.AddFieldOffset(3, name)
//	root, _ := b.EndTable()
//	b.Finish(root)
//
//	buf, _ := b.FinishedBytes()
//
// Reading it back:
//
//	monster, _ := flatwire.GetRoot(buf)
//	hp, _ := reader.GetField[int16](monster, 2, 100)
//	name, _ := monster.String(3)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the builder,
// reader and frame packages. For fine-grained control use those packages
// directly, and package schema for descriptor-driven access.
package flatwire

import (
	"github.com/arloliu/flatwire/builder"
	"github.com/arloliu/flatwire/format"
	"github.com/arloliu/flatwire/frame"
	"github.com/arloliu/flatwire/reader"
)

// NewBuilder creates a builder.
//
// Available options:
//   - builder.WithInitialSize(n)
//   - builder.WithMaxSize(n)
//   - builder.WithForceDefaults(true|false)
//   - builder.WithPooledBuffer()
//
// Example:
//
//	b, err := flatwire.NewBuilder(builder.WithMaxSize(1 << 20))
func NewBuilder(opts ...builder.Option) (*builder.Builder, error) {
	return builder.NewBuilder(opts...)
}

// NewPooledBuilder creates a builder whose storage comes from a shared pool.
//
// Call Release when the builder and every slice returned by FinishedBytes are
// no longer used. Suited to services that build many short-lived buffers.
//
// Example:
//
//	b, err := flatwire.NewPooledBuilder()
//	if err != nil {
//	    return err
//	}
//	defer b.Release()
func NewPooledBuilder(opts ...builder.Option) (*builder.Builder, error) {
	return builder.NewBuilder(append([]builder.Option{builder.WithPooledBuffer()}, opts...)...)
}

// NewReader creates a reader over a finished buffer.
func NewReader(buf []byte) (reader.Reader, error) {
	return reader.New(buf)
}

// NewSizePrefixedReader creates a reader over a size-prefixed buffer.
func NewSizePrefixedReader(buf []byte) (reader.Reader, error) {
	return reader.NewSizePrefixed(buf)
}

// GetRoot returns the root table of a finished buffer.
func GetRoot(buf []byte) (reader.Table, error) {
	r, err := reader.New(buf)
	if err != nil {
		return reader.Table{}, err
	}

	return r.Root()
}

// FileIdentifier converts a 4-character string to a file identifier.
func FileIdentifier(s string) (format.Identifier, error) {
	return format.NewIdentifier(s)
}

// EncodeFrame wraps a finished buffer in a frame, compressed with compression.
//
// Parameters:
//   - buf: Finished buffer
//   - compression: format.CompressionNone, CompressionZstd, CompressionS2 or CompressionLZ4
//
// Returns:
//   - []byte: The framed buffer with an xxHash64 checksum
//   - error: ErrInvalidCompression for unknown types, or codec errors
func EncodeFrame(buf []byte, compression format.CompressionType) ([]byte, error) {
	return frame.Encode(buf, frame.WithCompression(compression))
}

// DecodeFrame unwraps a frame created by EncodeFrame or frame.Encode and
// returns the finished buffer.
func DecodeFrame(data []byte) ([]byte, error) {
	buf, _, err := frame.Decode(data)
	return buf, err
}

// OpenFrame unwraps a frame and returns a reader over its buffer.
func OpenFrame(data []byte) (reader.Reader, error) {
	return frame.Open(data)
}

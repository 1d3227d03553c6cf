package compress

import "github.com/arloliu/flatwire/format"

// NoOpCodec stores payloads as-is.
//
// It is selected for frames whose payload is already small or incompressible,
// and is the fallback when another codec reports errs.ErrIncompressible.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a new no-operation codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Type returns format.CompressionNone.
func (c NoOpCodec) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress appends data to dst unchanged.
func (c NoOpCodec) Compress(dst, data []byte) ([]byte, error) {
	return append(dst, data...), nil
}

// Decompress appends data to dst unchanged. rawSize is ignored.
func (c NoOpCodec) Decompress(dst, data []byte, _ int) ([]byte, error) {
	return append(dst, data...), nil
}

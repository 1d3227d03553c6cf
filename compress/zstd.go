package compress

import "github.com/arloliu/flatwire/format"

// ZstdCodec provides Zstandard compression.
//
// It gives the best ratio of the built-in codecs and suits frames that are
// stored or sent over constrained links. The default build uses the pure-Go
// klauspost encoder; building with the gozstd tag (and cgo) switches to the
// libzstd binding.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd codec with default settings.
//
// Example:
//
//	codec := NewZstdCodec()
//	compressed, err := codec.Compress(nil, data)
//	if err != nil {
//		return err
//	}
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// Type returns format.CompressionZstd.
func (c ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}

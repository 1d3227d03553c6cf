package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
)

type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Type returns format.CompressionS2.
func (c S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress appends the S2 block encoding of data to dst.
func (c S2Codec) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	bound := s2.MaxEncodedLen(len(data))
	if bound < 0 {
		return nil, fmt.Errorf("%w: %d bytes exceed the s2 block limit", errs.ErrIncompressible, len(data))
	}

	dst, start := grow(dst, bound)
	encoded := s2.Encode(dst[start:], data)

	return dst[:start+len(encoded)], nil
}

// Decompress appends the decoded S2 block to dst.
func (c S2Codec) Decompress(dst, data []byte, _ int) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	dst, start := grow(dst, n)
	decoded, err := s2.Decode(dst[start:], data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return dst[:start+len(decoded)], nil
}

package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxBlockSize bounds the adaptive output buffer when the raw size is unknown.
const lz4MaxBlockSize = 128 * 1024 * 1024 // 128MB safety limit

type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates a new LZ4 block codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Type returns format.CompressionLZ4.
func (c LZ4Codec) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress appends the LZ4 block encoding of data to dst.
//
// LZ4 reports a zero-length result for input it cannot shrink; that case is
// returned as errs.ErrIncompressible.
func (c LZ4Codec) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	dst, start := grow(dst, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[start:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		return nil, errs.ErrIncompressible
	}

	return dst[:start+n], nil
}

// Decompress appends the decoded LZ4 block to dst.
//
// With a known rawSize the output is sized exactly. Otherwise it starts at
// 4x the compressed size and doubles on ErrInvalidSourceShortBuffer, up to
// 128MB.
func (c LZ4Codec) Decompress(dst, data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	if rawSize > 0 {
		out, start := grow(dst, rawSize)
		n, err := lz4.UncompressBlock(data, out[start:])
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}

		return out[:start+n], nil
	}

	bufSize := len(data) * 4
	for bufSize <= lz4MaxBlockSize {
		out, start := grow(dst, bufSize)
		n, err := lz4.UncompressBlock(data, out[start:])
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < lz4MaxBlockSize {
				bufSize *= 2
				continue
			}

			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}

		return out[:start+n], nil
	}

	return nil, fmt.Errorf("lz4 decompression failed: %w", lz4.ErrInvalidSourceShortBuffer)
}

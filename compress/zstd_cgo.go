//go:build gozstd && cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

const zstdCompressionLevel = 3

// Compress appends the Zstandard encoding of data to dst.
func (c ZstdCodec) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	return gozstd.CompressLevel(dst, data, zstdCompressionLevel), nil
}

// Decompress appends the decoded Zstandard frame to dst.
func (c ZstdCodec) Decompress(dst, data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	if rawSize > 0 {
		dst, _ = grow(dst, rawSize)
		dst = dst[:len(dst)-rawSize]
	}

	decompressed, err := gozstd.Decompress(dst, data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}

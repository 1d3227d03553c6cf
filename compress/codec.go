package compress

import (
	"fmt"

	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
)

// Compressor compresses finished flatwire buffers for framing.
//
// Finished buffers are dominated by small scalars, zero padding and repeated
// vtables, which general-purpose codecs shrink well.
type Compressor interface {
	// Compress appends the compressed form of data to dst and returns the
	// extended slice.
	//
	// Memory management:
	//   - dst may be nil; the result may reuse its spare capacity
	//   - Input slice is not modified
	//   - Internal encoder state is pooled and reused
	//
	// Codecs that cannot shrink data may return errs.ErrIncompressible, in
	// which case the caller should store data uncompressed.
	Compress(dst, data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Example:
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	raw, err := codec.Decompress(nil, payload, int(header.RawSize))
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
//
// Thread Safety: all built-in implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress appends the decompressed form of data to dst and returns the
	// extended slice.
	//
	// rawSize is the expected decompressed length as recorded by the caller,
	// used to size the output once. A value <= 0 means unknown.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with incompatible algorithm
	Decompress(dst, data []byte, rawSize int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor

	// Type returns the compression type recorded in frame headers.
	Type() format.CompressionType
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: ErrInvalidCompression for unknown types
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%w: %s (%d)", errs.ErrInvalidCompression, compressionType, uint8(compressionType))
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves a shared built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (%d)", errs.ErrInvalidCompression, compressionType, uint8(compressionType))
}

// grow extends dst by n bytes and returns the extended slice along with the
// start of the new region.
func grow(dst []byte, n int) ([]byte, int) {
	start := len(dst)
	if cap(dst)-start < n {
		newBuf := make([]byte, start, start+n)
		copy(newBuf, dst)
		dst = newBuf
	}

	return dst[:start+n], start
}

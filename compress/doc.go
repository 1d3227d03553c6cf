// Package compress provides the payload codecs used by the frame envelope.
//
// A finished flatwire buffer is already a compact binary layout, but it
// carries alignment padding, zero-filled struct bytes and repeated small
// scalars that general-purpose codecs shrink further. Compression is applied
// to the whole buffer when it is framed; the buffer itself is never
// compressed in place, so zero-copy reading always works on the
// decompressed bytes.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): payload stored as-is
//   - Zstd (format.CompressionZstd): best ratio, moderate speed
//   - S2 (format.CompressionS2): balanced ratio and speed
//   - LZ4 (format.CompressionLZ4): fastest decompression
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionS2)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(nil, buf)
//	...
//	raw, err := codec.Decompress(nil, payload, len(buf))
//
// All codecs append to a caller-supplied destination slice so frame encoding
// can write the header and the payload into one pooled buffer.
//
// # Zstd Implementations
//
// The default build uses github.com/klauspost/compress/zstd with pooled
// encoders and decoders. Building with `-tags gozstd` (cgo required) switches
// to github.com/valyala/gozstd.
//
// # Thread Safety
//
// All built-in codecs are stateless values backed by sync.Pool and are safe
// for concurrent use.
package compress

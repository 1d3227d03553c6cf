package frame

import (
	"errors"
	"fmt"
	"math"

	"github.com/arloliu/flatwire/compress"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
	"github.com/arloliu/flatwire/internal/hash"
	"github.com/arloliu/flatwire/internal/pool"
	"github.com/arloliu/flatwire/reader"
	"github.com/arloliu/flatwire/section"
)

// Encode wraps a finished buffer in a frame.
//
// The payload is compressed with the configured codec. When the codec cannot
// shrink the buffer the frame stores it uncompressed and records
// format.CompressionNone.
//
// Parameters:
//   - buf: Finished buffer
//   - opts: Optional configuration (WithCompression, WithChecksum, WithIdentifier)
//
// Returns:
//   - []byte: Header followed by the payload
//   - error: ErrInvalidCompression for an unknown codec, ErrBufferTooLarge for
//     buffers above 4GiB, or codec errors
func Encode(buf []byte, opts ...Option) ([]byte, error) {
	return AppendEncode(nil, buf, opts...)
}

// AppendEncode is like Encode but appends the frame to dst.
func AppendEncode(dst, buf []byte, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return dst, err
	}

	return cfg.appendEncode(dst, buf)
}

func (c *Config) appendEncode(dst, buf []byte) ([]byte, error) {
	if uint64(len(buf)) > math.MaxUint32 {
		return dst, fmt.Errorf("%w: %d bytes", errs.ErrBufferTooLarge, len(buf))
	}

	codec, err := compress.GetCodec(c.compression)
	if err != nil {
		return dst, err
	}

	header := section.NewFrameHeader()
	header.Flag.SetHasChecksum(c.checksum)
	header.RawSize = uint32(len(buf)) //nolint:gosec
	header.Identifier = c.identifier
	if c.checksum {
		header.Checksum = hash.Sum(buf)
	}

	payload := buf
	scratch := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(scratch)

	if codec.Type() != format.CompressionNone {
		// Output that is not smaller than the input is discarded anyway.
		scratch.Grow(len(buf))
		compressed, err := codec.Compress(scratch.B[:0], buf)
		switch {
		case errors.Is(err, errs.ErrIncompressible):
		case err != nil:
			return dst, fmt.Errorf("failed to compress payload: %w", err)
		case len(compressed) < len(buf):
			payload = compressed
			header.Flag.SetCompression(codec.Type())
		}
		scratch.B = compressed[:0]
	}
	header.StoredSize = uint32(len(payload)) //nolint:gosec

	dst = header.AppendTo(dst)
	dst = append(dst, payload...)

	return dst, nil
}

// Header parses and returns the header of a frame without touching its payload.
func Header(data []byte) (section.FrameHeader, error) {
	return section.ParseFrameHeader(data)
}

// Split returns the first frame in data and the bytes that follow it, for
// reading frames written back to back.
func Split(data []byte) ([]byte, []byte, error) {
	h, err := section.ParseFrameHeader(data)
	if err != nil {
		return nil, data, err
	}

	end := uint64(section.FrameHeaderSize) + uint64(h.StoredSize)
	if uint64(len(data)) < end {
		return nil, data, fmt.Errorf("%w: frame needs %d bytes, have %d", errs.ErrBufferTooShort, end, len(data))
	}

	return data[:end], data[end:], nil
}

// Decode unwraps one frame and returns the finished buffer it carries.
//
// data must hold exactly one frame. The header is validated, the payload is
// decompressed and, when the frame carries a checksum, verified.
//
// Returns:
//   - []byte: The finished buffer, newly allocated
//   - section.FrameHeader: The parsed header
//   - error: ErrInvalidFrameHeader, ErrInvalidMagicNumber, ErrInvalidCompression,
//     ErrBufferTooShort, ErrDecompressedSize or ErrChecksumMismatch
func Decode(data []byte, opts ...Option) ([]byte, section.FrameHeader, error) {
	return AppendDecode(nil, data, opts...)
}

// AppendDecode is like Decode but appends the buffer to dst.
func AppendDecode(dst, data []byte, opts ...Option) ([]byte, section.FrameHeader, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return dst, section.FrameHeader{}, err
	}

	return cfg.appendDecode(dst, data)
}

func (c *Config) appendDecode(dst, data []byte) ([]byte, section.FrameHeader, error) {
	h, err := section.ParseFrameHeader(data)
	if err != nil {
		return dst, h, err
	}

	payload := data[section.FrameHeaderSize:]
	switch {
	case uint64(len(payload)) < uint64(h.StoredSize):
		return dst, h, fmt.Errorf("%w: payload needs %d bytes, have %d", errs.ErrBufferTooShort, h.StoredSize, len(payload))
	case uint64(len(payload)) > uint64(h.StoredSize):
		return dst, h, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidFrameHeader, uint64(len(payload))-uint64(h.StoredSize))
	case uint64(h.RawSize) > uint64(c.maxRawSize): //nolint:gosec
		return dst, h, fmt.Errorf("%w: raw size %d exceeds limit %d", errs.ErrInvalidFrameHeader, h.RawSize, c.maxRawSize)
	case h.Flag.Compression() == format.CompressionNone && h.StoredSize != h.RawSize:
		return dst, h, fmt.Errorf("%w: stored %d bytes, raw %d", errs.ErrDecompressedSize, h.StoredSize, h.RawSize)
	case !h.Flag.HasChecksum() && h.Checksum != 0:
		return dst, h, fmt.Errorf("%w: checksum set without checksum flag", errs.ErrInvalidFrameHeader)
	}

	codec, err := compress.GetCodec(h.Flag.Compression())
	if err != nil {
		return dst, h, err
	}

	start := len(dst)
	out, err := codec.Decompress(dst, payload, int(h.RawSize))
	if err != nil {
		return dst, h, fmt.Errorf("failed to decompress payload: %w", err)
	}

	raw := out[start:]
	if len(raw) != int(h.RawSize) {
		return dst, h, fmt.Errorf("%w: got %d bytes, header says %d", errs.ErrDecompressedSize, len(raw), h.RawSize)
	}

	if h.Flag.HasChecksum() {
		if sum := hash.Sum(raw); sum != h.Checksum {
			return dst, h, fmt.Errorf("%w: got %#016x, header says %#016x", errs.ErrChecksumMismatch, sum, h.Checksum)
		}
	}

	return out, h, nil
}

// Open decodes a frame and returns a reader over the buffer it carries.
// When the header records a file identifier, the buffer must carry the same one.
func Open(data []byte, opts ...Option) (reader.Reader, error) {
	buf, h, err := Decode(data, opts...)
	if err != nil {
		return reader.Reader{}, err
	}

	r, err := reader.New(buf)
	if err != nil {
		return reader.Reader{}, err
	}

	if !h.Identifier.IsZero() && !r.HasIdentifier(h.Identifier) {
		return reader.Reader{}, fmt.Errorf("%w: frame says %q", errs.ErrInvalidIdentifier, h.Identifier.String())
	}

	return r, nil
}

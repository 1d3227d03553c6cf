package section

import (
	"fmt"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
)

// FrameHeader represents the fixed-size header in front of a framed buffer.
type FrameHeader struct {
	// Flag is a packed field for options, magic number and compression.
	Flag FrameFlag // byte offset 0-2
	// RawSize is the byte length of the finished buffer before compression.
	RawSize uint32 // byte offset 4-7
	// StoredSize is the byte length of the payload that follows the header.
	StoredSize uint32 // byte offset 8-11
	// Identifier is the file identifier of the framed buffer, zero if it has none.
	Identifier format.Identifier // byte offset 12-15
	// Checksum is the xxHash64 of the uncompressed buffer, zero when disabled.
	Checksum uint64 // byte offset 16-23
}

// NewFrameHeader creates a header with the default flag.
func NewFrameHeader() *FrameHeader {
	return &FrameHeader{
		Flag: NewFrameFlag(),
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 24 bytes)
//
// Returns:
//   - error: ErrInvalidFrameHeader if data has the wrong size, or flag validation errors
func (h *FrameHeader) Parse(data []byte) error {
	if len(data) != FrameHeaderSize {
		return fmt.Errorf("%w: header has %d bytes, want %d", errs.ErrInvalidFrameHeader, len(data), FrameHeaderSize)
	}

	engine := endian.GetLittleEndianEngine()

	h.Flag.Options = engine.Uint16(data[frameOptionsOffset:])
	h.Flag.CompressionType = data[frameCompressionOffset]
	if data[frameReservedOffset] != 0 {
		return fmt.Errorf("%w: reserved byte is %#x", errs.ErrInvalidFrameHeader, data[frameReservedOffset])
	}

	h.RawSize = engine.Uint32(data[frameRawSizeOffset:])
	h.StoredSize = engine.Uint32(data[frameStoredSizeOffset:])
	copy(h.Identifier[:], data[frameIdentifierOffset:frameIdentifierOffset+FileIdentifierLength])
	h.Checksum = engine.Uint64(data[frameChecksumOffset:])

	return h.Flag.Validate()
}

// Bytes serializes the FrameHeader into a byte slice.
func (h *FrameHeader) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, FrameHeaderSize))
}

// AppendTo appends the serialized header to dst.
func (h *FrameHeader) AppendTo(dst []byte) []byte {
	engine := endian.GetLittleEndianEngine()

	dst = engine.AppendUint16(dst, h.Flag.Options)
	dst = append(dst, h.Flag.CompressionType, 0)
	dst = engine.AppendUint32(dst, h.RawSize)
	dst = engine.AppendUint32(dst, h.StoredSize)
	dst = append(dst, h.Identifier[:]...)
	dst = engine.AppendUint64(dst, h.Checksum)

	return dst
}

// ParseFrameHeader parses a FrameHeader from the start of a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least 24 bytes)
//
// Returns:
//   - FrameHeader: Parsed header struct
//   - error: ErrInvalidFrameHeader or flag validation errors
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	if len(data) < FrameHeaderSize {
		return FrameHeader{}, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrInvalidFrameHeader, FrameHeaderSize, len(data))
	}

	h := FrameHeader{}
	if err := h.Parse(data[:FrameHeaderSize]); err != nil {
		return FrameHeader{}, err
	}

	return h, nil
}

package section

import (
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
)

// FrameFlag represents the packed option and compression fields of a frame header.
type FrameFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is the checksum flag, 0 means no checksum, 1 means the header carries
	// an xxHash64 of the uncompressed payload.
	// Bit 1-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are the magic number identifying the frame format:
	//   - 0xFB10 (0b1111_1011_0001_0000): frame format v1
	Options uint16

	// CompressionType is the compression applied to the payload.
	CompressionType uint8
}

// NewFrameFlag creates a new FrameFlag with checksum enabled and no compression.
func NewFrameFlag() FrameFlag {
	flag := FrameFlag{
		Options:         MagicFrameV1Opt,
		CompressionType: uint8(format.CompressionNone),
	}
	flag.SetHasChecksum(true)

	return flag
}

// HasChecksum returns whether the payload checksum is present.
func (f FrameFlag) HasChecksum() bool {
	return (f.Options & ChecksumMask) != 0
}

// SetHasChecksum enables or disables the payload checksum.
func (f *FrameFlag) SetHasChecksum(enabled bool) {
	if enabled {
		f.Options |= ChecksumMask
	} else {
		f.Options &^= ChecksumMask
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f FrameFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Compression returns the payload compression type.
func (f FrameFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the payload compression type.
func (f *FrameFlag) SetCompression(compression format.CompressionType) {
	f.CompressionType = uint8(compression)
}

// Validate checks if the flag contains valid values.
func (f FrameFlag) Validate() error {
	if f.GetMagicNumber() != MagicFrameV1Opt {
		return errs.ErrInvalidMagicNumber
	}

	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidFrameHeader
	}

	if !f.Compression().IsValid() {
		return errs.ErrInvalidCompression
	}

	return nil
}

package section

import (
	"math"

	"github.com/arloliu/flatwire/format"
)

// Wire sizes of the offset kinds used in a buffer.
const (
	SizeUOffset = 4 // unsigned forward offset to a child object
	SizeSOffset = 4 // signed table-to-vtable distance
	SizeVOffset = 2 // vtable entry
	SizePrefix  = 4 // length prefix of vectors, strings and size-prefixed buffers

	FileIdentifierLength = format.IdentifierLength
)

// Vtable layout limits.
const (
	VtableMetadataSize = 2 * SizeVOffset // vtable byte size + object byte size
	MaxVtableSize      = math.MaxUint16
	MaxObjectSize      = math.MaxUint16
	// MaxFieldID is the largest field id whose slot still fits a 16-bit vtable.
	MaxFieldID = (MaxVtableSize-VtableMetadataSize)/SizeVOffset - 1
)

const (
	// Bit masks of the frame options field
	ChecksumMask     = 0x0001 // Mask for checksum bit (bit 0)
	ReservedBitsMask = 0x000E // Mask for reserved bits (bits 1-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicFrameV1Opt = 0xFB10 // MagicFrameV1Opt is the version 1 magic number of the frame envelope.
)

// frame header layout
const (
	FrameHeaderSize = 24 // fixed frame header size in bytes

	frameOptionsOffset     = 0
	frameCompressionOffset = 2
	frameReservedOffset    = 3
	frameRawSizeOffset     = 4
	frameStoredSizeOffset  = 8
	frameIdentifierOffset  = 12
	frameChecksumOffset    = 16
)

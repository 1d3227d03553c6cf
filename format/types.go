package format

import (
	"fmt"

	"github.com/arloliu/flatwire/errs"
)

type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores the frame payload as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is one of the known compression types.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// IdentifierLength is the fixed byte length of a file identifier.
const IdentifierLength = 4

// Identifier is the optional 4-byte file identifier stored right after the
// root offset of a finished buffer.
type Identifier [IdentifierLength]byte

// NewIdentifier creates an Identifier from a 4-byte string such as "MONS".
func NewIdentifier(s string) (Identifier, error) {
	var id Identifier
	if len(s) != IdentifierLength {
		return id, fmt.Errorf("%w: %q has %d bytes", errs.ErrInvalidIdentifier, s, len(s))
	}
	copy(id[:], s)

	return id, nil
}

// MustIdentifier is like NewIdentifier but panics on invalid input.
// It is intended for package-level constants.
func MustIdentifier(s string) Identifier {
	id, err := NewIdentifier(s)
	if err != nil {
		panic(err)
	}

	return id
}

// IsZero reports whether the identifier is unset.
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

func (id Identifier) String() string {
	return string(id[:])
}

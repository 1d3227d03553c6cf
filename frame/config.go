package frame

import (
	"fmt"
	"math"

	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
	"github.com/arloliu/flatwire/internal/options"
)

// DefaultMaxRawSize bounds the decompressed size Decode accepts from a header.
const DefaultMaxRawSize = 64 << 20 // 64MiB

// Config holds the framing settings applied by Encode and Decode.
type Config struct {
	compression format.CompressionType
	checksum    bool
	identifier  format.Identifier
	maxRawSize  int
}

// Option configures a Config.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	c := &Config{
		compression: format.CompressionNone,
		checksum:    true,
		maxRawSize:  DefaultMaxRawSize,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Compression returns the codec used for payloads.
func (c *Config) Compression() format.CompressionType {
	return c.compression
}

// Checksum reports whether an xxHash64 checksum is written.
func (c *Config) Checksum() bool {
	return c.checksum
}

// WithCompression selects the payload codec. The default is
// format.CompressionNone.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if !compression.IsValid() {
			return fmt.Errorf("%w: %s (%d)", errs.ErrInvalidCompression, compression, uint8(compression))
		}
		c.compression = compression

		return nil
	})
}

// WithChecksum enables or disables the payload checksum. Enabled by default.
func WithChecksum(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.checksum = enabled
	})
}

// WithIdentifier records the buffer's file identifier in the frame header.
func WithIdentifier(id format.Identifier) Option {
	return options.NoError(func(c *Config) {
		c.identifier = id
	})
}

// WithMaxRawSize limits the decompressed size Decode will allocate for.
func WithMaxRawSize(size int) Option {
	return options.New(func(c *Config) error {
		if size <= 0 || uint64(size) > math.MaxUint32 {
			return fmt.Errorf("%w: max raw size %d", errs.ErrInvalidFrameHeader, size)
		}
		c.maxRawSize = size

		return nil
	})
}

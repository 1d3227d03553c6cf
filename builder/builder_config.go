package builder

import (
	"fmt"

	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/internal/options"
	"github.com/arloliu/flatwire/internal/pool"
)

// DefaultInitialSize is the initial capacity of a builder's buffer.
const DefaultInitialSize = pool.BuilderBufferDefaultSize

// Config holds the construction options of a Builder.
type Config struct {
	initialSize   int
	maxSize       int
	forceDefaults bool
	pooled        bool
}

func newConfig() *Config {
	return &Config{
		initialSize: DefaultInitialSize,
	}
}

func (c *Config) validate() error {
	if c.maxSize > 0 && c.initialSize > c.maxSize {
		return fmt.Errorf("%w: initial size %d exceeds max size %d", errs.ErrCapacityExceeded, c.initialSize, c.maxSize)
	}

	return nil
}

// ForceDefaults reports whether scalar fields equal to their default are still written.
func (c *Config) ForceDefaults() bool {
	return c.forceDefaults
}

// MaxSize returns the configured capacity limit, 0 when unlimited.
func (c *Config) MaxSize() int {
	return c.maxSize
}

// Option represents a functional option for configuring a Builder.
type Option = options.Option[*Config]

// WithInitialSize sets the initial buffer capacity in bytes.
// The buffer still grows by doubling when it fills up.
func WithInitialSize(size int) Option {
	return options.New(func(c *Config) error {
		if size <= 0 || size > pool.MaxBackBufferSize {
			return fmt.Errorf("%w: invalid initial size %d", errs.ErrCapacityExceeded, size)
		}
		c.initialSize = size

		return nil
	})
}

// WithMaxSize limits the buffer to size bytes. Writes that would grow the
// buffer beyond it fail with errs.ErrCapacityExceeded. Zero means no limit
// other than the 2GiB format limit.
func WithMaxSize(size int) Option {
	return options.New(func(c *Config) error {
		if size < 0 {
			return fmt.Errorf("%w: invalid max size %d", errs.ErrCapacityExceeded, size)
		}
		c.maxSize = size

		return nil
	})
}

// WithForceDefaults makes the builder write scalar fields even when they are
// equal to their default value.
func WithForceDefaults(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.forceDefaults = enabled
	})
}

// WithPooledBuffer takes the initial buffer storage from a shared pool.
// The caller must call Builder.Release once the finished bytes are no longer used.
func WithPooledBuffer() Option {
	return options.NoError(func(c *Config) {
		c.pooled = true
	})
}

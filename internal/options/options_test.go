package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	size    int
	limit   int
	name    string
	applied []string
}

var errNegative = errors.New("negative size")

func withSize(n int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if n < 0 {
			return errNegative
		}
		c.size = n
		c.applied = append(c.applied, "size")

		return nil
	})
}

func withLimit(n int) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.limit = n
		c.applied = append(c.applied, "limit")
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.name = name
		c.applied = append(c.applied, "name")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withName("a"), withSize(10), withLimit(20))
		require.NoError(t, err)
		require.Equal(t, 10, cfg.size)
		require.Equal(t, 20, cfg.limit)
		require.Equal(t, "a", cfg.name)
		require.Equal(t, []string{"name", "size", "limit"}, cfg.applied)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withSize(-1), withName("never"))
		require.ErrorIs(t, err, errNegative)
		require.Empty(t, cfg.name)
		require.Empty(t, cfg.applied)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, nil, withLimit(3))
		require.NoError(t, err)
		require.Equal(t, 3, cfg.limit)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &testConfig{size: 7}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 7, cfg.size)
	})

	t.Run("later option wins", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg, withSize(1), withSize(2)))
		require.Equal(t, 2, cfg.size)
	})
}

func TestApplyAndValidate(t *testing.T) {
	errLimit := errors.New("size above limit")
	validate := func(c *testConfig) error {
		if c.limit > 0 && c.size > c.limit {
			return errLimit
		}

		return nil
	}

	cfg := &testConfig{}
	require.NoError(t, ApplyAndValidate(cfg, validate, withSize(4), withLimit(8)))

	cfg = &testConfig{}
	require.ErrorIs(t, ApplyAndValidate(cfg, validate, withSize(16), withLimit(8)), errLimit)

	cfg = &testConfig{}
	require.ErrorIs(t, ApplyAndValidate(cfg, validate, withSize(-1)), errNegative)

	cfg = &testConfig{}
	require.NoError(t, ApplyAndValidate(cfg, nil, withSize(16)))
}

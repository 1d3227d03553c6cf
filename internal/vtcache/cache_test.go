package vtcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// store is a fake buffer that keys vtables by an end-relative offset.
type store map[uint32][]byte

func (s store) load(off uint32) []byte {
	return s[off]
}

func TestCache_FindAdd(t *testing.T) {
	c := New()
	s := store{}

	vtA := []byte{6, 0, 8, 0, 4, 0}
	vtB := []byte{8, 0, 8, 0, 0, 0, 4, 0}

	off, digest, ok := c.Find(vtA, s.load)
	require.False(t, ok)
	require.Zero(t, off)

	s[20] = vtA
	c.Add(digest, 20)

	off, _, ok = c.Find(vtA, s.load)
	require.True(t, ok)
	require.Equal(t, uint32(20), off)

	_, digestB, ok := c.Find(vtB, s.load)
	require.False(t, ok)
	require.NotEqual(t, digest, digestB)

	stats := c.Stats()
	require.Equal(t, 1, stats.Vtables)
	require.Equal(t, 1, stats.Hits)
	require.Equal(t, 0, stats.Collisions)
}

func TestCache_DigestCollisionIsNotMerged(t *testing.T) {
	c := New()
	s := store{12: {6, 0, 8, 0, 4, 0}}
	vtB := []byte{6, 0, 8, 0, 6, 0}

	// Plant vtA's offset under vtB's digest to simulate a digest collision.
	_, digestB, ok := c.Find(vtB, s.load)
	require.False(t, ok)
	c.Add(digestB, 12)

	off, _, ok := c.Find(vtB, s.load)
	require.False(t, ok, "different bytes under one digest must not match")
	require.Zero(t, off)
	require.Equal(t, 1, c.Stats().Collisions)
	require.Equal(t, 0, c.Stats().Hits)
}

func TestCache_LongerStoredSlice(t *testing.T) {
	c := New()
	vt := []byte{6, 0, 12, 0, 4, 0}
	s := store{40: append(append([]byte{}, vt...), 0xFF, 0xFF, 0xFF)}

	_, digest, _ := c.Find(vt, s.load)
	c.Add(digest, 40)

	off, _, ok := c.Find(vt, s.load)
	require.True(t, ok)
	require.Equal(t, uint32(40), off)
}

func TestCache_Reset(t *testing.T) {
	c := New()
	s := store{8: {4, 0, 4, 0}}

	_, digest, _ := c.Find(s[8], s.load)
	c.Add(digest, 8)
	require.Equal(t, 1, c.Len())

	c.Reset()
	require.Equal(t, 0, c.Len())
	require.Equal(t, Stats{}, c.Stats())

	_, _, ok := c.Find(s[8], s.load)
	require.False(t, ok)
}

// Package vtcache interns encoded vtables by content.
//
// The cache never owns vtable bytes. It maps an xxHash64 digest of the encoded
// vtable to the end-relative offsets where vtables with that digest were
// written, and confirms a candidate by comparing the bytes stored in the
// buffer. Two different vtables that share a digest are both kept; the
// collision is only counted.
package vtcache

import (
	"bytes"

	"github.com/arloliu/flatwire/internal/hash"
)

// Loader returns the stored bytes of the vtable at end-relative offset off.
// The returned slice may be longer than the vtable.
type Loader func(off uint32) []byte

// Stats reports how the cache has been used since the last Reset.
type Stats struct {
	Vtables    int // Vtables is the number of distinct vtables stored.
	Hits       int // Hits is the number of lookups answered by a stored vtable.
	Collisions int // Collisions counts lookups whose digest matched but bytes did not.
}

// Cache tracks vtables written into a single buffer.
type Cache struct {
	buckets map[uint64][]uint32 // digest → end-relative vtable offsets
	stats   Stats
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		buckets: make(map[uint64][]uint32),
	}
}

// Find looks up a stored vtable equal to vt.
//
// It returns the offset of the match and true on a hit. On a miss it returns
// false; the digest is returned in both cases so a miss can be followed by
// Add without hashing again.
func (c *Cache) Find(vt []byte, load Loader) (uint32, uint64, bool) {
	digest := hash.Sum(vt)

	candidates := c.buckets[digest]
	for _, off := range candidates {
		stored := load(off)
		if len(stored) >= len(vt) && bytes.Equal(stored[:len(vt)], vt) {
			c.stats.Hits++
			return off, digest, true
		}
	}

	if len(candidates) > 0 {
		c.stats.Collisions++
	}

	return 0, digest, false
}

// Add records a newly written vtable under digest.
func (c *Cache) Add(digest uint64, off uint32) {
	c.buckets[digest] = append(c.buckets[digest], off)
	c.stats.Vtables++
}

// Stats returns the usage counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Len returns the number of stored vtables.
func (c *Cache) Len() int {
	return c.stats.Vtables
}

// Reset forgets every stored vtable so the cache can serve a new buffer.
func (c *Cache) Reset() {
	// Clear map but preserve capacity to avoid allocations
	clear(c.buckets)
	c.stats = Stats{}
}

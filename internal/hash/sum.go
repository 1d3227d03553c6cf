// Package hash wraps xxHash64 for vtable deduplication and frame checksums.
package hash

import "github.com/cespare/xxhash/v2"

// Sum computes the xxHash64 digest of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// SumString computes the xxHash64 digest of s without copying it.
func SumString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Digest accumulates an xxHash64 over several byte slices.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest creates an empty digest.
func NewDigest() Digest {
	return Digest{d: xxhash.New()}
}

// Write adds p to the digest. It never fails.
func (d Digest) Write(p []byte) {
	_, _ = d.d.Write(p)
}

// Sum64 returns the current digest value.
func (d Digest) Sum64() uint64 {
	return d.d.Sum64()
}

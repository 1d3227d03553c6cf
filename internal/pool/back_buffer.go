package pool

import (
	"fmt"
	"math"

	"github.com/arloliu/flatwire/errs"
)

// MaxBackBufferSize is the hard upper bound of a BackBuffer. Signed 32-bit
// relative offsets cannot address anything larger.
const MaxBackBufferSize = math.MaxInt32

// BackBuffer is a byte region written from its high end toward index 0.
//
// The valid region is buf[head:]. Positions handed out by the buffer are
// end-relative (Offset), so they stay valid when the region grows: growth
// doubles the capacity and copies the old bytes to the new high end.
type BackBuffer struct {
	buf     []byte
	head    int
	maxSize int
	pooled  *ByteBuffer
}

// NewBackBuffer creates a BackBuffer with the given initial capacity.
// maxSize limits growth; zero means MaxBackBufferSize.
func NewBackBuffer(initialSize, maxSize int) *BackBuffer {
	if initialSize <= 0 {
		initialSize = BuilderBufferDefaultSize
	}

	bb := &BackBuffer{maxSize: maxSize}
	bb.buf = make([]byte, initialSize)
	bb.head = initialSize

	return bb
}

// NewPooledBackBuffer is like NewBackBuffer but takes its initial storage from
// the builder buffer pool. Release must be called to return it.
func NewPooledBackBuffer(initialSize, maxSize int) *BackBuffer {
	pooled := GetBuilderBuffer()
	pooled.Grow(initialSize)

	bb := &BackBuffer{maxSize: maxSize, pooled: pooled}
	bb.buf = pooled.B[:cap(pooled.B)]
	bb.head = len(bb.buf)

	return bb
}

// Offset returns the number of bytes written so far. It is also the
// end-relative position of the most recently written byte.
func (bb *BackBuffer) Offset() uint32 {
	return uint32(len(bb.buf) - bb.head) //nolint:gosec
}

// Free returns the number of bytes that can be written without growing.
func (bb *BackBuffer) Free() int {
	return bb.head
}

// Cap returns the current capacity of the region.
func (bb *BackBuffer) Cap() int {
	return len(bb.buf)
}

// Bytes returns the written region. The slice aliases the buffer storage.
func (bb *BackBuffer) Bytes() []byte {
	return bb.buf[bb.head:]
}

// At returns the written bytes starting at the end-relative position off.
func (bb *BackBuffer) At(off uint32) []byte {
	return bb.buf[len(bb.buf)-int(off):]
}

// Reserve makes sure that at least n more bytes can be written without
// growing. It fails with errs.ErrCapacityExceeded when a configured limit is
// hit and with errs.ErrBufferTooLarge beyond MaxBackBufferSize.
func (bb *BackBuffer) Reserve(n int) error {
	if bb.head >= n {
		return nil
	}

	used := len(bb.buf) - bb.head
	required := used + n

	limit := MaxBackBufferSize
	if bb.maxSize > 0 && bb.maxSize < limit {
		limit = bb.maxSize
	}

	if required > limit || required < used {
		if limit == bb.maxSize {
			return fmt.Errorf("%w: need %d bytes, limit %d", errs.ErrCapacityExceeded, required, limit)
		}

		return fmt.Errorf("%w: need %d bytes", errs.ErrBufferTooLarge, required)
	}

	newLen := len(bb.buf)
	if newLen == 0 {
		newLen = 1
	}
	for newLen < required {
		if newLen > limit/2 {
			newLen = limit
			break
		}
		newLen *= 2
	}

	newBuf := make([]byte, newLen)
	copy(newBuf[newLen-used:], bb.buf[bb.head:])
	bb.buf = newBuf
	bb.head = newLen - used

	return nil
}

// Pad writes n zero bytes. Capacity must have been reserved.
func (bb *BackBuffer) Pad(n int) {
	bb.head -= n
	clear(bb.buf[bb.head : bb.head+n])
}

// Place moves the head down by n bytes and returns the uncovered region for
// the caller to fill. Capacity must have been reserved.
func (bb *BackBuffer) Place(n int) []byte {
	bb.head -= n
	return bb.buf[bb.head : bb.head+n]
}

// Reset discards the written bytes and keeps the storage.
func (bb *BackBuffer) Reset() {
	bb.head = len(bb.buf)
}

// Release hands pooled storage back to the pool. The buffer must not be used
// afterwards, and slices obtained from Bytes become invalid.
func (bb *BackBuffer) Release() {
	if bb.pooled == nil {
		return
	}

	bb.pooled.B = bb.buf[:0]
	PutBuilderBuffer(bb.pooled)

	bb.pooled = nil
	bb.buf = nil
	bb.head = 0
}

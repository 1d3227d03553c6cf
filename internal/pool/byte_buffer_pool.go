package pool

import "sync"

// Default sizes of the shared pools. Buffers that grew beyond the threshold
// are not retained.
const (
	BuilderBufferDefaultSize  = 1 << 10 // 1KiB
	BuilderBufferMaxThreshold = 1 << 20 // 1MiB
	FrameBufferDefaultSize    = 16 << 10
	FrameBufferMaxThreshold   = 4 << 20
)

// ByteBuffer is a reusable byte slice.
type ByteBuffer struct {
	// B holds the data. Callers may append to it or reslice it freely.
	B []byte
}

// NewByteBuffer creates an empty buffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow makes room for at least n more bytes without changing the length.
func (bb *ByteBuffer) Grow(n int) {
	if n <= cap(bb.B)-len(bb.B) {
		return
	}

	grown := make([]byte, len(bb.B), len(bb.B)+n)
	copy(grown, bb.B)
	bb.B = grown
}

// Reset empties the buffer and keeps its storage.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// ByteBufferPool recycles ByteBuffers through a sync.Pool.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose new buffers have defaultSize
// capacity. Buffers larger than maxThreshold are dropped by Put; zero keeps
// every buffer.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get returns an empty buffer.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool. bb must not be used afterwards.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil || (p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold) {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	builderPool = NewByteBufferPool(BuilderBufferDefaultSize, BuilderBufferMaxThreshold)
	framePool   = NewByteBufferPool(FrameBufferDefaultSize, FrameBufferMaxThreshold)
)

// GetBuilderBuffer returns storage for a pooled builder.
func GetBuilderBuffer() *ByteBuffer { return builderPool.Get() }

// PutBuilderBuffer recycles builder storage.
func PutBuilderBuffer(bb *ByteBuffer) { builderPool.Put(bb) }

// GetFrameBuffer returns scratch space for frame compression.
func GetFrameBuffer() *ByteBuffer { return framePool.Get() }

// PutFrameBuffer recycles frame scratch space.
func PutFrameBuffer(bb *ByteBuffer) { framePool.Put(bb) }

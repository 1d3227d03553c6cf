package builder

import (
	"fmt"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/internal/options"
	"github.com/arloliu/flatwire/internal/pool"
	"github.com/arloliu/flatwire/internal/vtcache"
)

// objectState tracks which object, if any, is under construction.
type objectState uint8

const (
	stateIdle objectState = iota
	stateTable
	stateVector
)

// Builder constructs a flatwire buffer back to front.
//
// Children are written before their parents: strings, vectors and nested
// tables are created first, and the offsets they return are then stored in
// the parent. Every offset field is written exactly once with its final
// value; nothing is patched after the fact.
//
// Note: The Builder is NOT thread-safe. Each builder instance should be used by a single goroutine at a time.
//
// Note: The Builder is reusable. Reset discards the buffer contents and
// invalidates every offset returned before the reset.
type Builder struct {
	*Config

	buf      *pool.BackBuffer
	engine   endian.EndianEngine
	vtables  *vtcache.Cache
	epoch    uint64
	minalign int
	state    objectState
	finished bool

	table  tableState
	vector vectorState

	tables int // tables finished since the last reset
}

// Stats reports construction counters since the last Reset.
type Stats struct {
	Tables           int // Tables is the number of finished tables.
	Vtables          int // Vtables is the number of vtables written to the buffer.
	VtableHits       int // VtableHits counts tables that reused an existing vtable.
	DigestCollisions int // DigestCollisions counts vtable digests shared by different vtables.
	Bytes            int // Bytes is the current buffer size.
}

// NewBuilder creates a new Builder.
//
// Parameters:
//   - opts: Optional configuration (WithInitialSize, WithMaxSize, WithForceDefaults, WithPooledBuffer)
//
// Returns:
//   - *Builder: The new builder
//   - error: Option validation error
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg := newConfig()
	if err := options.ApplyAndValidate(cfg, (*Config).validate, opts...); err != nil {
		return nil, err
	}

	b := &Builder{
		Config:   cfg,
		engine:   endian.GetLittleEndianEngine(),
		vtables:  vtcache.New(),
		epoch:    nextEpoch(),
		minalign: 1,
	}

	if cfg.pooled {
		b.buf = pool.NewPooledBackBuffer(cfg.initialSize, cfg.maxSize)
	} else {
		b.buf = pool.NewBackBuffer(cfg.initialSize, cfg.maxSize)
	}

	return b, nil
}

// Offset returns the number of bytes written so far, which is also the
// end-relative position of the most recently written object.
func (b *Builder) Offset() uint32 {
	return b.buf.Offset()
}

// Reset discards everything written and prepares the builder for a new
// buffer. The storage is kept. Offsets obtained before Reset are rejected
// with errs.ErrUnresolvedOffset afterwards.
func (b *Builder) Reset() {
	b.buf.Reset()
	b.vtables.Reset()
	b.table.reset()
	b.vector = vectorState{}
	b.epoch = nextEpoch()
	b.minalign = 1
	b.state = stateIdle
	b.finished = false
	b.tables = 0
}

// Release returns pooled storage to the pool. The builder and any slice
// returned by FinishedBytes must not be used afterwards.
func (b *Builder) Release() {
	b.buf.Release()
}

// Stats returns construction counters since the last Reset.
func (b *Builder) Stats() Stats {
	vs := b.vtables.Stats()

	return Stats{
		Tables:           b.tables,
		Vtables:          vs.Vtables,
		VtableHits:       vs.Hits,
		DigestCollisions: vs.Collisions,
		Bytes:            int(b.buf.Offset()),
	}
}

// Pad writes n zero bytes.
func (b *Builder) Pad(n int) error {
	if err := b.buf.Reserve(n); err != nil {
		return err
	}
	b.buf.Pad(n)

	return nil
}

// Prep aligns the buffer so that after additional bytes are written, the
// next value of the given size is aligned to size. size must be a power of two.
//
// It is the low-level building block of every write; the typed Prepend
// methods and the object constructors call it themselves.
func (b *Builder) Prep(size, additional int) error {
	if !isPowerOfTwo(size) {
		return fmt.Errorf("%w: %d", errs.ErrInvalidAlignment, size)
	}

	return b.prep(size, additional)
}

func (b *Builder) prep(size, additional int) error {
	pad := alignPad(int(b.buf.Offset())+additional, size)
	if err := b.buf.Reserve(pad + size + additional); err != nil {
		return err
	}

	b.alignFor(size, additional)

	return nil
}

// alignFor pads so that the end-relative offset is a multiple of alignment
// after n more bytes. Capacity must already be reserved.
func (b *Builder) alignFor(alignment, n int) {
	if alignment > b.minalign {
		b.minalign = alignment
	}
	b.buf.Pad(alignPad(int(b.buf.Offset())+n, alignment))
}

// resolve validates that off was produced by this builder since the last
// Reset and returns its end-relative position.
func (b *Builder) resolve(off Offset) (uint32, error) {
	if off == nil {
		return 0, fmt.Errorf("%w: nil offset", errs.ErrUnresolvedOffset)
	}

	r := off.offsetRef()
	switch {
	case r.off == 0:
		return 0, fmt.Errorf("%w: zero offset", errs.ErrUnresolvedOffset)
	case r.epoch != b.epoch:
		return 0, fmt.Errorf("%w: offset belongs to another builder or was created before Reset", errs.ErrUnresolvedOffset)
	case r.off > b.buf.Offset():
		return 0, fmt.Errorf("%w: offset %d beyond written region %d", errs.ErrUnresolvedOffset, r.off, b.buf.Offset())
	}

	return r.off, nil
}

// checkIdle returns an error unless no object is under construction and the
// buffer is not finished.
func (b *Builder) checkIdle() error {
	if b.finished {
		return errs.ErrAlreadyFinished
	}

	switch b.state {
	case stateTable:
		return errs.ErrNestedTable
	case stateVector:
		return errs.ErrNestedVector
	default:
		return nil
	}
}

// placeUint32 writes v into reserved and aligned space.
func (b *Builder) placeUint32(v uint32) {
	b.engine.PutUint32(b.buf.Place(4), v)
}

// invariant panics when the builder's layout arithmetic is inconsistent.
func invariant(ok bool) {
	if !ok {
		panic(errs.AlignmentInvariantViolation)
	}
}

func alignPad(off, alignment int) int {
	return (-off) & (alignment - 1)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

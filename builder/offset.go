package builder

import "sync/atomic"

// epochCounter hands out a fresh epoch to every builder and every Reset, so
// offsets can be traced back to the exact buffer generation that produced them.
var epochCounter atomic.Uint64

func nextEpoch() uint64 {
	return epochCounter.Add(1)
}

// ref is the common payload of the typed offsets.
type ref struct {
	off   uint32 // end-relative position, 0 means unset
	epoch uint64
}

func (r ref) offsetRef() ref {
	return r
}

// IsZero reports whether the offset is unset.
func (r ref) IsZero() bool {
	return r.off == 0
}

// Value returns the raw end-relative position: the distance from the object
// start to the end of the buffer. Use Builder.Position to obtain the absolute
// position after Finish.
func (r ref) Value() uint32 {
	return r.off
}

// Offset is implemented by TableOffset, StringOffset and VectorOffset only.
type Offset interface {
	IsZero() bool
	Value() uint32

	offsetRef() ref
}

// TableOffset refers to a finished table.
type TableOffset struct{ ref }

// StringOffset refers to a finished string.
type StringOffset struct{ ref }

// VectorOffset refers to a finished vector.
type VectorOffset struct{ ref }

var (
	_ Offset = TableOffset{}
	_ Offset = StringOffset{}
	_ Offset = VectorOffset{}
)

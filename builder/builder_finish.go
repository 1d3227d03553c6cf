package builder

import (
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
	"github.com/arloliu/flatwire/section"
)

// Finish writes the root offset and freezes the buffer.
func (b *Builder) Finish(root TableOffset) error {
	return b.finish(root, format.Identifier{}, false, false)
}

// FinishWithFileIdentifier is like Finish and stores id right after the root offset.
func (b *Builder) FinishWithFileIdentifier(root TableOffset, id format.Identifier) error {
	return b.finish(root, id, true, false)
}

// FinishSizePrefixed is like Finish and prepends the byte size of the
// finished buffer, not counting the prefix itself.
func (b *Builder) FinishSizePrefixed(root TableOffset) error {
	return b.finish(root, format.Identifier{}, false, true)
}

// FinishSizePrefixedWithFileIdentifier combines FinishSizePrefixed and FinishWithFileIdentifier.
func (b *Builder) FinishSizePrefixedWithFileIdentifier(root TableOffset, id format.Identifier) error {
	return b.finish(root, id, true, true)
}

func (b *Builder) finish(root TableOffset, id format.Identifier, withID, sizePrefix bool) error {
	if err := b.checkIdle(); err != nil {
		return err
	}

	target, err := b.resolve(root)
	if err != nil {
		return err
	}

	additional := section.SizeUOffset
	if withID {
		additional += section.FileIdentifierLength
	}
	if sizePrefix {
		additional += section.SizePrefix
	}

	// Align the whole buffer to the largest alignment used, so positions
	// relative to the end and to the start agree.
	if err := b.prep(max(b.minalign, section.SizeUOffset), additional); err != nil {
		return err
	}

	if withID {
		copy(b.buf.Place(section.FileIdentifierLength), id[:])
	}

	b.placeUint32(b.buf.Offset() + section.SizeUOffset - target)

	if sizePrefix {
		size := b.buf.Offset()
		b.placeUint32(size)
	}

	invariant(alignPad(int(b.buf.Offset()), b.minalign) == 0)
	b.finished = true

	return nil
}

// Finished reports whether the buffer has been finished.
func (b *Builder) Finished() bool {
	return b.finished
}

// FinishedBytes returns the finished buffer.
//
// The slice aliases the builder's storage: it stays valid until the next
// Reset or Release, and must not be modified.
func (b *Builder) FinishedBytes() ([]byte, error) {
	if !b.finished {
		return nil, errs.ErrNotFinished
	}

	return b.buf.Bytes(), nil
}

// Position converts an offset returned by this builder into its absolute
// position in FinishedBytes.
func (b *Builder) Position(off Offset) (uint32, error) {
	if !b.finished {
		return 0, errs.ErrNotFinished
	}

	target, err := b.resolve(off)
	if err != nil {
		return 0, err
	}

	return b.buf.Offset() - target, nil
}

// Package errs defines the sentinel errors returned by flatwire packages.
//
// Callers should match errors with errors.Is; most errors are wrapped with
// additional context using fmt.Errorf("%w: ...").
package errs

import "errors"

// Construction errors, returned by builder operations at the offending call.
var (
	ErrNestedTable          = errors.New("a table is already under construction")
	ErrNestedVector         = errors.New("a vector is already under construction")
	ErrNotInTable           = errors.New("no table under construction")
	ErrNotInVector          = errors.New("no vector under construction")
	ErrUnresolvedOffset     = errors.New("offset does not refer to a finished object of this builder")
	ErrInvalidFieldID       = errors.New("invalid field id")
	ErrDuplicateField       = errors.New("field already added to table")
	ErrTableTooLarge        = errors.New("table exceeds 16-bit vtable addressing")
	ErrVectorLengthMismatch = errors.New("vector element bytes do not match declared count")
	ErrCapacityExceeded     = errors.New("buffer capacity exceeded")
	ErrBufferTooLarge       = errors.New("buffer cannot grow beyond 2GiB")
	ErrNotFinished          = errors.New("builder not finished")
	ErrAlreadyFinished      = errors.New("builder already finished")
	ErrInvalidIdentifier    = errors.New("file identifier must be exactly 4 bytes")
	ErrInvalidAlignment     = errors.New("alignment must be a power of two")
)

// Read errors. A failed read never mutates the buffer.
var (
	ErrFieldAbsent     = errors.New("field absent")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrBufferTooShort  = errors.New("buffer too short")
	ErrOutOfBounds     = errors.New("position out of buffer bounds")
	ErrViewUnavailable = errors.New("zero-copy view unavailable for this host or alignment")
)

// Frame errors.
var (
	ErrInvalidFrameHeader = errors.New("invalid frame header")
	ErrInvalidMagicNumber = errors.New("invalid frame magic number")
	ErrChecksumMismatch   = errors.New("frame checksum mismatch")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrIncompressible     = errors.New("payload is not compressible")
	ErrDecompressedSize   = errors.New("decompressed size does not match frame header")
)

// Schema errors.
var (
	ErrInvalidDescriptor    = errors.New("invalid descriptor")
	ErrRequiredFieldMissing = errors.New("required field missing")
	ErrKindMismatch         = errors.New("value does not match field kind")
)

// AlignmentInvariantViolation is the panic message used when the builder
// detects that its own layout arithmetic is inconsistent. It is always a
// defect and is never returned as an error.
const AlignmentInvariantViolation = "flatwire: alignment invariant violation"

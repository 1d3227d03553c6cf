// Package frame wraps finished buffers in a small self-describing envelope
// for storage or transport.
//
// A frame is a 24-byte header followed by the payload:
//
//	[options:u16][compression:u8][reserved:u8][raw_size:u32][stored_size:u32]
//	[identifier:4][checksum:u64]
//
// The options field carries the magic number 0xFB10 and the checksum bit.
// The checksum is the xxHash64 of the uncompressed buffer. Payloads are
// compressed with one of the codecs of package compress; a payload the codec
// cannot shrink is stored as is.
//
// # Basic Usage
//
//	framed, err := frame.Encode(buf, frame.WithCompression(format.CompressionZstd))
//	...
//	r, err := frame.Open(framed)
//	root, err := r.Root()
//
// Frames are byte slices in, byte slices out; the package performs no I/O.
// EncodeAll and DecodeAll process independent buffers concurrently.
package frame

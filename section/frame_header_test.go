package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
)

func TestFrameFlag(t *testing.T) {
	flag := NewFrameFlag()
	require.True(t, flag.HasChecksum())
	require.Equal(t, uint16(MagicFrameV1Opt), flag.GetMagicNumber())
	require.Equal(t, format.CompressionNone, flag.Compression())
	require.NoError(t, flag.Validate())

	flag.SetHasChecksum(false)
	require.False(t, flag.HasChecksum())
	require.Equal(t, uint16(MagicFrameV1Opt), flag.GetMagicNumber())

	flag.SetCompression(format.CompressionLZ4)
	require.Equal(t, format.CompressionLZ4, flag.Compression())
	require.NoError(t, flag.Validate())
}

func TestFrameFlag_Validate(t *testing.T) {
	flag := NewFrameFlag()
	flag.Options = 0xEA10
	require.ErrorIs(t, flag.Validate(), errs.ErrInvalidMagicNumber)

	flag = NewFrameFlag()
	flag.Options |= 0x0002
	require.ErrorIs(t, flag.Validate(), errs.ErrInvalidFrameHeader)

	flag = NewFrameFlag()
	flag.CompressionType = 0x9
	require.ErrorIs(t, flag.Validate(), errs.ErrInvalidCompression)
}

func TestFrameHeader_BytesParse(t *testing.T) {
	h := NewFrameHeader()
	h.Flag.SetCompression(format.CompressionZstd)
	h.RawSize = 1000
	h.StoredSize = 321
	h.Identifier = format.MustIdentifier("MONS")
	h.Checksum = 0x0102030405060708

	data := h.Bytes()
	require.Len(t, data, FrameHeaderSize)
	require.Equal(t, []byte{0x11, 0xFB}, data[0:2], "options are little-endian")
	require.Equal(t, byte(format.CompressionZstd), data[2])
	require.Equal(t, []byte("MONS"), data[12:16])

	parsed, err := ParseFrameHeader(append(data, 0xAA, 0xBB))
	require.NoError(t, err)
	require.Equal(t, *h, parsed)
}

func TestFrameHeader_ParseErrors(t *testing.T) {
	_, err := ParseFrameHeader(make([]byte, FrameHeaderSize-1))
	require.ErrorIs(t, err, errs.ErrInvalidFrameHeader)

	var h FrameHeader
	require.ErrorIs(t, h.Parse(make([]byte, FrameHeaderSize+1)), errs.ErrInvalidFrameHeader)

	data := NewFrameHeader().Bytes()
	data[3] = 1
	_, err = ParseFrameHeader(data)
	require.ErrorIs(t, err, errs.ErrInvalidFrameHeader)

	_, err = ParseFrameHeader(make([]byte, FrameHeaderSize))
	require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
}

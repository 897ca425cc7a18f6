package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

func int32Header(t *testing.T) DataTypeHeader {
	t.Helper()

	flags, err := NewVersionAndFlags(0)
	require.NoError(t, err)

	return DataTypeHeader{VersionAndFlags: flags, TEOFS: format.NewTEOFS(format.TypeInt32)}
}

func headerBytes(h DataTypeHeader) []byte {
	b := make([]byte, HeaderSize)
	h.Put(b)

	return b
}

func TestDataTypeHeader_Int32IsExactlyFourBytes(t *testing.T) {
	h := int32Header(t)
	b := headerBytes(h)

	require.Len(t, b, HeaderSize)
	require.Equal(t, byte(format.TypeInt32), b[1])
	require.Equal(t, byte(0), b[2])
	require.Equal(t, byte(0), b[3])
	require.True(t, h.IsScalar())
}

func TestDataTypeHeader_ParseRoundTrip(t *testing.T) {
	fixed, err := format.FixedSizeTEOFS(12)
	require.NoError(t, err)

	h := DataTypeHeader{
		VersionAndFlags: VersionAndFlags(0x5B),
		TEOFS:           format.NewTEOFS(format.TypeArray),
		TEOFS1:          fixed,
		TEOFS2:          0,
	}

	parsed, err := ParseDataTypeHeader(headerBytes(h))
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestDataTypeHeader_PutLayout(t *testing.T) {
	h := DataTypeHeader{VersionAndFlags: 0x11, TEOFS: 0x22, TEOFS1: 0x33, TEOFS2: 0x44}
	require.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, headerBytes(h))
}

func TestParseDataTypeHeader_TooShort(t *testing.T) {
	_, err := ParseDataTypeHeader([]byte{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestDataTypeHeader_Validate(t *testing.T) {
	expected := int32Header(t)

	t.Run("match", func(t *testing.T) {
		stored := expected
		stored.VersionAndFlags.SetCompression(format.CompressionLZ4)
		require.NoError(t, stored.Validate(expected))
	})

	t.Run("not binary", func(t *testing.T) {
		stored := expected
		stored.VersionAndFlags.SetBinary(false)
		require.ErrorIs(t, stored.Validate(expected), errs.ErrNotBinary)
	})

	t.Run("version mismatch", func(t *testing.T) {
		stored := expected
		require.NoError(t, stored.VersionAndFlags.SetVersion(1))
		err := stored.Validate(expected)
		require.ErrorIs(t, err, errs.ErrVersionMismatch)
		require.ErrorIs(t, err, errs.ErrFormat)
	})

	t.Run("type mismatch", func(t *testing.T) {
		stored := expected
		stored.TEOFS = format.NewTEOFS(format.TypeInt64)
		require.ErrorIs(t, stored.Validate(expected), errs.ErrTypeMismatch)
	})
}

func TestLengthPrefix(t *testing.T) {
	buf := make([]byte, 16)
	require.NoError(t, PutLengthPrefix(buf, 16))

	total, err := ReadLengthPrefix(buf)
	require.NoError(t, err)
	require.Equal(t, 16, total)

	_, err = ReadLengthPrefix(buf[:12])
	require.ErrorIs(t, err, errs.ErrInvalidLength)

	require.NoError(t, PutLengthPrefix(buf, 3))
	_, err = ReadLengthPrefix(buf)
	require.ErrorIs(t, err, errs.ErrInvalidLength)

	_, err = ReadLengthPrefix(buf[:7])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	err = PutLengthPrefix(buf, MaxPayloadSize+1)
	require.ErrorIs(t, err, errs.ErrPayloadTooLarge)
}

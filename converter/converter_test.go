package converter

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/typebin/endian"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/fallback"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/types"
)

func writeAll[T any](t *testing.T, c Converter[T], v T) []byte {
	t.Helper()

	n, p, err := c.SizeOf(v)
	require.NoError(t, err)
	defer p.Release()

	buf := make([]byte, n)
	written, err := c.Write(v, buf, p)
	require.NoError(t, err)
	require.Equal(t, n, written)

	return buf
}

func TestScalar_HeaderBytes(t *testing.T) {
	c, err := NewScalar[int32]()
	require.NoError(t, err)
	require.Equal(t, 8, c.FixedSize())

	buf := writeAll[int32](t, c, -2)
	require.Equal(t, []byte{0x30, byte(format.TypeInt32), 0, 0, 0xFE, 0xFF, 0xFF, 0xFF}, buf)

	v, n, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, int32(-2), v)
	require.Equal(t, 8, n)
}

func TestScalar_RoundTrip(t *testing.T) {
	ts, err := NewScalar[types.Timestamp]()
	require.NoError(t, err)
	v, _, err := ts.Read(writeAll(t, ts, types.Timestamp(1_700_000_000_000_000_000)))
	require.NoError(t, err)
	require.Equal(t, types.Timestamp(1_700_000_000_000_000_000), v)

	dc, err := NewScalar[types.Decimal]()
	require.NoError(t, err)
	require.Equal(t, 20, dc.FixedSize())
	d := types.MustDecimal(-123456789, 4)
	got, _, err := dc.Read(writeAll(t, dc, d))
	require.NoError(t, err)
	require.Equal(t, d, got)

	bc, err := NewScalar[bool]()
	require.NoError(t, err)
	b, _, err := bc.Read(writeAll(t, bc, true))
	require.NoError(t, err)
	require.True(t, b)

	_, err = NewScalar[string]()
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestFixed_InsufficientCapacity(t *testing.T) {
	c, err := NewScalar[float64]()
	require.NoError(t, err)

	buf := make([]byte, c.FixedSize()-1)
	n, err := c.Write(1.5, buf, nil)
	require.ErrorIs(t, err, errs.ErrInsufficientCapacity)
	require.True(t, errs.IsCapacity(err))
	require.Zero(t, n)
	require.Equal(t, make([]byte, len(buf)), buf)
}

func TestFixed_ReadValidation(t *testing.T) {
	c32, err := NewScalar[int32]()
	require.NoError(t, err)
	c64, err := NewScalar[int64]()
	require.NoError(t, err)
	v2, err := NewScalar[int32](WithVersion(2))
	require.NoError(t, err)

	buf := writeAll[int32](t, c32, 7)

	_, _, err = c64.Read(buf)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, _, err = v2.Read(buf)
	require.ErrorIs(t, err, errs.ErrVersionMismatch)

	_, _, err = c32.Read(buf[:3])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	_, _, err = c32.Read(buf[:6])
	require.ErrorIs(t, err, errs.ErrInvalidLength)

	notBinary := append([]byte(nil), buf...)
	notBinary[0] &^= section.BinaryMask
	_, _, err = c32.Read(notBinary)
	require.ErrorIs(t, err, errs.ErrNotBinary)
	require.True(t, errs.IsFormat(err))

	_, err = NewScalar[int32](WithVersion(section.MaxVersion + 1))
	require.ErrorIs(t, err, errs.ErrInvalidVersion)
}

type sample struct {
	A int64
	B float32
	C uint16
	D [2]uint8
}

func TestBlittable_Struct(t *testing.T) {
	if !endian.NativeIsWire() {
		t.Skip("raw layouts are only derived on little-endian hosts")
	}

	c, err := NewBlittable[sample]()
	require.NoError(t, err)
	require.Equal(t, 4+16, c.FixedSize())
	require.True(t, c.Header().TEOFS.IsFixedSize())

	v := sample{A: -1, B: 2.5, C: 300, D: [2]uint8{9, 8}}
	got, _, err := c.Read(writeAll(t, c, v))
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestBlittable_Tuple(t *testing.T) {
	c, err := NewBlittable[types.Tuple2[int16, float64]]()
	require.NoError(t, err)
	require.Equal(t, 4+10, c.FixedSize())

	v := types.NewTuple2[int16, float64](-3, 0.25)
	got, _, err := c.Read(writeAll(t, c, v))
	require.NoError(t, err)
	require.Equal(t, v, got)
}

type switchState struct {
	On  bool
	Val int32
}

func TestBlittable_RejectsBoolLayouts(t *testing.T) {
	_, err := NewBlittable[switchState]()
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	// Bools inside a tuple go through the 0/1 element codec.
	c, err := NewBlittable[types.Tuple2[bool, int32]]()
	require.NoError(t, err)

	buf := writeAll(t, c, types.NewTuple2(false, int32(5)))
	buf[section.HeaderSize] = 2
	got, _, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, types.NewTuple2(true, int32(5)), got)
}

func TestString(t *testing.T) {
	c, err := NewString()
	require.NoError(t, err)

	for _, s := range []string{"", "hello", "héllo wörld"} {
		buf := writeAll(t, c, s)
		require.Equal(t, uint32(len(buf)), binary.LittleEndian.Uint32(buf))
		require.Equal(t, byte(format.TypeUtf8String), buf[5])

		got, n, err := c.Read(buf)
		require.NoError(t, err)
		require.Equal(t, s, got)
		require.Equal(t, len(buf), n)
	}

	buf := writeAll(t, c, "truncate me")
	_, _, err = c.Read(buf[:len(buf)-1])
	require.ErrorIs(t, err, errs.ErrInvalidLength)

	_, err = c.Write("abc", make([]byte, 10), nil)
	require.ErrorIs(t, err, errs.ErrInsufficientCapacity)
}

func TestBytes(t *testing.T) {
	c, err := NewBytes()
	require.NoError(t, err)

	src := []byte{1, 2, 3, 4}
	buf := writeAll(t, c, src)
	got, _, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, src, got)

	buf[section.PrefixedOverhead] = 99
	require.Equal(t, byte(1), got[0], "result must not alias the source")

	empty, _, err := c.Read(writeAll[[]byte](t, c, nil))
	require.NoError(t, err)
	require.Empty(t, empty)

	sc, err := NewString()
	require.NoError(t, err)
	_, _, err = sc.Read(buf)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

type profile struct {
	Name   string         `json:"name" cbor:"name"`
	Scores map[string]int `json:"scores" cbor:"scores"`
	Next   *profile       `json:"next,omitempty" cbor:"next,omitempty"`
}

func TestFallback(t *testing.T) {
	v := profile{Name: "ada", Scores: map[string]int{"x": 1}, Next: &profile{Name: "bob"}}

	for _, s := range []fallback.Serializer{fallback.JSON(), fallback.CBOR()} {
		t.Run(s.Name(), func(t *testing.T) {
			c, err := NewFallback[profile](WithSerializer(s))
			require.NoError(t, err)

			buf := writeAll(t, c, v)
			require.Equal(t, []byte{0x20, byte(format.TypeJSON), s.ID(), 0}, buf[4:8])

			got, n, err := c.Read(buf)
			require.NoError(t, err)
			require.Equal(t, v, got)
			require.Equal(t, len(buf), n)

			// Any reader decodes with the serializer recorded in the header.
			other, err := NewFallback[profile]()
			require.NoError(t, err)
			got, _, err = other.Read(buf)
			require.NoError(t, err)
			require.Equal(t, v, got)
		})
	}
}

func TestFallback_WriteWithoutPayload(t *testing.T) {
	c, err := NewFallback[[]string]()
	require.NoError(t, err)

	n, p, err := c.SizeOf([]string{"a", "b"})
	require.NoError(t, err)
	p.Release()
	p.Release()

	buf := make([]byte, n)
	written, err := c.Write([]string{"a", "b"}, buf, nil)
	require.NoError(t, err)
	require.Equal(t, n, written)
	require.Equal(t, `["a","b"]`, string(buf[8:]))

	_, err = c.Write([]string{"a", "b"}, buf[:n-1], nil)
	require.ErrorIs(t, err, errs.ErrInsufficientCapacity)
}

func TestFallback_Validation(t *testing.T) {
	c, err := NewFallback[profile]()
	require.NoError(t, err)
	sc, err := NewString()
	require.NoError(t, err)

	_, _, err = c.Read(writeAll(t, sc, "{}"))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	buf := writeAll(t, c, profile{Name: "x"})
	_, _, err = sc.Read(buf)
	require.ErrorIs(t, err, errs.ErrNotBinary)

	v3, err := NewFallback[profile](WithVersion(3))
	require.NoError(t, err)
	_, _, err = v3.Read(buf)
	require.ErrorIs(t, err, errs.ErrVersionMismatch)

	buf[6] = 77
	_, _, err = c.Read(buf)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = NewFallback[profile](WithSerializer(nil))
	require.Error(t, err)
}

type point struct {
	X, Y int32
}

func (p *point) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, uint32(p.X))
	return binary.LittleEndian.AppendUint32(b, uint32(p.Y)), nil
}

func (p *point) UnmarshalBinary(b []byte) error {
	if len(b) != 8 {
		return errors.New("point needs 8 bytes")
	}
	p.X = int32(binary.LittleEndian.Uint32(b))
	p.Y = int32(binary.LittleEndian.Uint32(b[4:]))

	return nil
}

func TestUser(t *testing.T) {
	c, err := NewBinaryUser[point]("geo.point")
	require.NoError(t, err)
	require.Equal(t, "geo.point", c.Name())

	v := point{X: -4, Y: 9}
	buf := writeAll(t, c, v)
	require.Len(t, buf, section.PrefixedOverhead+FingerprintSize+8)
	require.Equal(t, byte(format.TypeUserType), buf[5])

	got, _, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, v, got)

	other, err := NewBinaryUser[point]("geo.vector")
	require.NoError(t, err)
	_, _, err = other.Read(buf)
	require.ErrorIs(t, err, errs.ErrFingerprint)
	require.True(t, errs.IsFormat(err))

	short := append([]byte(nil), buf[:section.PrefixedOverhead+FingerprintSize+4]...)
	binary.LittleEndian.PutUint32(short, uint32(len(short)))
	_, _, err = c.Read(short)
	require.ErrorIs(t, err, errs.ErrCorruptedBlock)

	_, err = NewUser[point]("", nil, nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestTuple2(t *testing.T) {
	sc, err := NewString()
	require.NoError(t, err)
	ic, err := NewScalar[int32]()
	require.NoError(t, err)

	c, err := NewTuple2[string, int32](sc, ic)
	require.NoError(t, err)
	require.Equal(t, format.NewTEOFS(format.TypeUtf8String), c.Header().TEOFS1)
	require.Equal(t, format.NewTEOFS(format.TypeInt32), c.Header().TEOFS2)

	v := types.NewTuple2[string, int32]("answer", 42)
	buf := writeAll(t, c, v)
	got, n, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, v, got)
	require.Equal(t, len(buf), n)

	written, err := c.Write(v, buf, nil)
	require.NoError(t, err)
	require.Equal(t, len(buf), written)

	_, err = c.Write(v, buf[:len(buf)-1], nil)
	require.ErrorIs(t, err, errs.ErrInsufficientCapacity)
}

func TestPayload_Release(t *testing.T) {
	var p *Payload
	require.NotPanics(t, p.Release)
	require.Nil(t, p.Bytes())

	p = newPayload(10)
	p.buf.B = append(p.buf.B, 1, 2)
	require.Equal(t, []byte{1, 2}, p.Bytes())
	p.Release()
	p.Release()
	require.Nil(t, p.Bytes())
}

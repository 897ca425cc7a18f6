package element

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/typebin/endian"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

func TestBuiltin_PutGet(t *testing.T) {
	d16, err := For[int16]()
	require.NoError(t, err)
	require.Equal(t, 2, d16.Size)
	require.True(t, d16.Raw)
	require.True(t, d16.IsDiffable())

	buf := make([]byte, 2)
	d16.Put(buf, -2)
	require.Equal(t, []byte{0xFE, 0xFF}, buf)
	require.Equal(t, int16(-2), d16.Get(buf))

	df, err := For[float64]()
	require.NoError(t, err)
	require.False(t, df.IsDiffable())

	fbuf := make([]byte, 8)
	df.Put(fbuf, math.Pi)
	require.Equal(t, math.Pi, df.Get(fbuf))

	db, err := For[bool]()
	require.NoError(t, err)
	require.False(t, db.Raw)
	require.True(t, db.Get([]byte{7}))
}

func TestIntegerDelta_WrapAround(t *testing.T) {
	d, err := For[int8]()
	require.NoError(t, err)
	require.Equal(t, format.DeltaFromPrevious, d.Delta.Strategy)

	pairs := [][2]int8{{math.MaxInt8, math.MinInt8}, {math.MinInt8, math.MaxInt8}, {0, -1}, {100, -100}}
	for _, p := range pairs {
		delta, ok := d.Delta.Diff(p[0], p[1])
		require.True(t, ok)
		require.Equal(t, p[1], d.Delta.Apply(p[0], delta))
	}

	du, err := For[uint64]()
	require.NoError(t, err)
	delta, ok := du.Delta.Diff(math.MaxUint64, 0)
	require.True(t, ok)
	require.Equal(t, uint64(1), delta)
	require.Equal(t, uint64(0), du.Delta.Apply(math.MaxUint64, delta))
}

type vec3 struct {
	X, Y, Z float32
}

type named struct {
	Name string
}

func TestFor_Derived(t *testing.T) {
	d, err := For[vec3]()
	require.NoError(t, err)
	if endian.NativeIsWire() {
		require.Equal(t, 12, d.Size)
		require.True(t, d.RawCopy())

		buf := make([]byte, 12)
		d.Put(buf, vec3{1, 2, 3})
		require.Equal(t, vec3{1, 2, 3}, d.Get(buf))
	}
	require.False(t, d.IsDiffable())

	dn, err := For[named]()
	require.NoError(t, err)
	require.False(t, dn.IsBlittable())
	require.True(t, dn.Shape.Opaque)

	_, err = For[chan int]()
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

type flagged struct {
	On  bool
	Val int32
}

func TestFor_BoolsAreNeverRawCopied(t *testing.T) {
	d, err := For[flagged]()
	require.NoError(t, err)
	require.False(t, d.IsBlittable())
	require.False(t, d.RawCopy())

	da, err := For[[4]bool]()
	require.NoError(t, err)
	require.False(t, da.IsBlittable())

	dn, err := For[[2]vec3]()
	require.NoError(t, err)
	if endian.NativeIsWire() {
		require.True(t, dn.RawCopy())
	}
}

type celsius int32

func TestRegister_Validation(t *testing.T) {
	require.Error(t, Register[celsius](nil))

	bad := Integer[celsius](format.TypeInt32)
	bad.Put = nil
	require.ErrorIs(t, Register(bad), errs.ErrUnsupportedType)

	wrongSize := Integer[celsius](format.TypeInt64)
	wrongSize.Raw = true
	require.ErrorIs(t, Register(wrongSize), errs.ErrInvalidTypeSize)

	require.NoError(t, Register(Integer[celsius](format.TypeInt32)))
	d, err := For[celsius]()
	require.NoError(t, err)
	require.True(t, d.IsDiffable())
}

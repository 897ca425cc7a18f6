package typebin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/typebin/array"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/types"
)

func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()

	data, err := Marshal(v)
	require.NoError(t, err)

	n, err := SizeOf(v)
	require.NoError(t, err)
	require.Len(t, data, n)

	got, err := Unmarshal[T](data)
	require.NoError(t, err)

	return got
}

func TestScalars(t *testing.T) {
	require.Equal(t, int32(-42), roundTrip(t, int32(-42)))
	require.Equal(t, uint64(1<<63), roundTrip(t, uint64(1<<63)))
	require.Equal(t, 3.25, roundTrip(t, 3.25))
	require.True(t, roundTrip(t, true))
	require.Equal(t, "hello", roundTrip(t, "hello"))
	require.Equal(t, []byte{0, 1, 2}, roundTrip(t, []byte{0, 1, 2}))

	ts := types.FromTime(time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC))
	require.Equal(t, ts, roundTrip(t, ts))

	d, err := types.ParseDecimal("-1234.5678")
	require.NoError(t, err)
	require.Equal(t, d, roundTrip(t, d))

	id := uuid.New()
	require.Equal(t, id, roundTrip(t, id))
}

func TestInt32HeaderIsFourBytes(t *testing.T) {
	data, err := Marshal(int32(7))
	require.NoError(t, err)
	require.Len(t, data, section.HeaderSize+4)
	require.Equal(t, byte(format.TypeInt32), data[1])
	require.Zero(t, data[2])
	require.Zero(t, data[3])
}

func TestArrays(t *testing.T) {
	ints := make([]int64, 1000)
	for i := range ints {
		ints[i] = int64(i * i)
	}
	require.Equal(t, ints, roundTrip(t, ints))

	data, err := Marshal(ints)
	require.NoError(t, err)
	require.Less(t, len(data), 8+8*len(ints))

	require.Equal(t, []string{"a", "", "c"}, roundTrip(t, []string{"a", "", "c"}))
	require.Equal(t, []float32{1.5, -2}, roundTrip(t, []float32{1.5, -2}))
	require.Equal(t, []bool{true, false, true}, roundTrip(t, []bool{true, false, true}))

	syms := []types.Symbol{types.MustSymbol("AAPL"), types.MustSymbol("MSFT")}
	require.Equal(t, syms, roundTrip(t, syms))
}

type quote struct {
	Bid, Ask float64
	Size     uint32
	_        uint32
}

type note struct {
	Author string   `json:"author"`
	Lines  []string `json:"lines"`
}

func TestDerivedConverters(t *testing.T) {
	q := quote{Bid: 1.5, Ask: 1.75, Size: 100}
	require.Equal(t, q, roundTrip(t, q))

	n := note{Author: "kim", Lines: []string{"x", "y"}}
	require.Equal(t, n, roundTrip(t, n))

	data, err := Marshal(n)
	require.NoError(t, err)
	require.Equal(t, byte(format.TypeJSON), data[5])
	require.Zero(t, data[4]&section.BinaryMask)

	// Unregistered slices fall back to JSON as a whole.
	notes := []note{n, {Author: "lee"}}
	require.Equal(t, notes, roundTrip(t, notes))

	_, err = For[chan int]()
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
	_, err = Marshal(func() {})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

type reading struct {
	Sensor uint16
	Value  int16
}

func TestRegisterArray(t *testing.T) {
	require.NoError(t, RegisterArray[reading](array.WithCompression(format.CompressionZstd)))

	values := make([]reading, 400)
	for i := range values {
		values[i] = reading{Sensor: uint16(i % 4), Value: int16(i)}
	}
	require.Equal(t, values, roundTrip(t, values))

	c, err := For[[]reading]()
	require.NoError(t, err)
	require.Equal(t, format.TypeArray, c.Header().TypeEnum())

	require.Error(t, RegisterArray[reading](array.WithLevel(-5), array.WithCompression(format.CompressionZstd)))
}

func TestMarshalTo(t *testing.T) {
	values := []int32{5, 6, 7}
	n, err := SizeOf(values)
	require.NoError(t, err)

	dst := make([]byte, n+8)
	written, err := MarshalTo(values, dst)
	require.NoError(t, err)
	require.Equal(t, n, written)

	written2, err := MarshalTo("tail", dst[written:])
	require.ErrorIs(t, err, errs.ErrInsufficientCapacity)
	require.Zero(t, written2)

	got, consumed, err := UnmarshalPrefix[[]int32](dst)
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, values, got)

	_, err = Unmarshal[[]int32](dst)
	require.ErrorIs(t, err, errs.ErrInvalidLength)
}

func TestUnmarshal_WrongType(t *testing.T) {
	data, err := Marshal([]int32{1, 2, 3})
	require.NoError(t, err)

	_, err = Unmarshal[[]int64](data)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
	require.True(t, errs.IsFormat(err))

	_, err = Unmarshal[string](data)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	_, err := Marshal([]int64{42, 1 << 40})
	require.NoError(t, err)
	require.GreaterOrEqual(t, logs.Len(), 1)
}

type toggle struct {
	Enabled bool
	Level   int32
}

func TestBoolStructs_UseFallback(t *testing.T) {
	v := toggle{Enabled: true, Level: 3}
	require.Equal(t, v, roundTrip(t, v))

	data, err := Marshal(v)
	require.NoError(t, err)
	require.Equal(t, byte(format.TypeJSON), data[5])

	list := []toggle{v, {Level: -1}}
	require.Equal(t, list, roundTrip(t, list))
}

package types

import (
	"math/big"
	"testing"
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/typebin/element"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/shape"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in    string
		scale uint8
		out   string
	}{
		{"12.345", 3, "12.345"},
		{"-0.001", 3, "-0.001"},
		{"100", 0, "100"},
		{"+7.50", 2, "7.50"},
		{".5", 1, "0.5"},
		{"79228162514264337593543950335", 0, "79228162514264337593543950335"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDecimal(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.scale, d.Scale())
			require.Equal(t, tt.out, d.String())
		})
	}

	for _, bad := range []string{"", "-", "1.2.3", "abc", "1e5", "79228162514264337593543950336"} {
		_, err := ParseDecimal(bad)
		require.Error(t, err, bad)
	}

	_, err := NewDecimal(1, MaxDecimalScale+1)
	require.ErrorIs(t, err, ErrDecimalScale)
}

func TestDecimal_Conversions(t *testing.T) {
	d := MustDecimal(-12345, 3)
	require.True(t, d.IsNegative())
	require.Equal(t, big.NewInt(-12345), d.Mantissa())
	require.InDelta(t, -12.345, d.Float64(), 1e-12)
	require.Zero(t, d.Big().Cmp(decimal.New(-12345, 3)))

	m := new(big.Int).Lsh(big.NewInt(1), 80)
	db, err := DecimalFromBig(m, 4)
	require.NoError(t, err)
	require.Equal(t, m, db.Mantissa())

	_, err = DecimalFromBig(new(big.Int).Lsh(big.NewInt(1), 96), 0)
	require.ErrorIs(t, err, ErrDecimalOverflow)
}

func TestDecimalDelta_Exact(t *testing.T) {
	base := MustDecimal(100_00, 2)
	values := []Decimal{
		MustDecimal(100_05, 2),
		MustDecimal(99_95, 2),
		MustDecimal(0, 2),
		MustDecimal(-100_00, 2),
		MustDecimal(100_00, 2),
	}

	for _, v := range values {
		delta, ok := decimalDiff(base, v)
		require.True(t, ok)
		require.Equal(t, v, decimalApply(base, delta))
	}

	maxMag, err := ParseDecimal("79228162514264337593543950335")
	require.NoError(t, err)
	minMag, err := ParseDecimal("-79228162514264337593543950335")
	require.NoError(t, err)
	delta, ok := decimalDiff(maxMag, maxMag)
	require.True(t, ok)
	require.True(t, delta.IsZero())
	require.Equal(t, maxMag, decimalApply(maxMag, delta))

	_, ok = decimalDiff(minMag, maxMag)
	require.False(t, ok, "delta beyond 96 bits")
}

func TestDecimalDelta_Refused(t *testing.T) {
	_, ok := decimalDiff(MustDecimal(1, 2), MustDecimal(1, 3))
	require.False(t, ok, "mixed scales")

	negZero := Decimal{flags: decimalSignBit | 2<<decimalScaleShift}
	_, ok = decimalDiff(MustDecimal(1, 2), negZero)
	require.False(t, ok, "negative zero")

	reserved := Decimal{lo: 1, flags: 0x1 | 2<<decimalScaleShift}
	_, ok = decimalDiff(MustDecimal(1, 2), reserved)
	require.False(t, ok, "reserved bits")
}

func TestDecimalDescriptor(t *testing.T) {
	d, err := element.For[Decimal]()
	require.NoError(t, err)
	require.Equal(t, DecimalSize, d.Size)
	require.True(t, d.IsDiffable())
	require.Equal(t, format.DeltaFromFirst, d.Delta.Strategy)

	v := MustDecimal(-987654321, 5)
	buf := make([]byte, DecimalSize)
	d.Put(buf, v)
	require.Equal(t, byte(5), buf[14])
	require.Equal(t, byte(0x80), buf[15])
	require.Equal(t, v, d.Get(buf))
}

func TestTimestamp(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 123, time.UTC)
	ts := FromTime(now)
	require.True(t, now.Equal(ts.Time()))
	require.Equal(t, ts+Timestamp(time.Second), ts.Add(time.Second))
	require.Equal(t, "2024-03-01T12:00:00.000000123Z", ts.String())

	d, err := element.For[Timestamp]()
	require.NoError(t, err)
	require.Equal(t, format.TypeTimestamp, d.Shape.TypeEnum())
	require.Equal(t, format.DeltaFromPrevious, d.Delta.Strategy)

	info, err := shape.Of[[]Timestamp]()
	require.NoError(t, err)
	require.Equal(t, format.NewTEOFS(format.TypeTimestamp), info.Header.TEOFS1)
}

func TestSymbol(t *testing.T) {
	s, err := NewSymbol("AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", s.String())
	require.False(t, s.IsZero())

	_, err = NewSymbol("THIS-IS-TOO-LONG-A-SYMBOL")
	require.Error(t, err)
	_, err = NewSymbol("A\x00B")
	require.Error(t, err)

	full := MustSymbol("0123456789ABCDEF")
	require.Equal(t, "0123456789ABCDEF", full.String())

	d, err := element.For[Symbol]()
	require.NoError(t, err)
	require.Equal(t, format.TypeSymbol, d.Shape.TypeEnum())
	require.False(t, d.IsDiffable())
}

func TestUUIDDescriptor(t *testing.T) {
	d, err := element.For[uuid.UUID]()
	require.NoError(t, err)
	require.Equal(t, format.TypeUUID, d.Shape.TypeEnum())

	id := uuid.New()
	buf := make([]byte, 16)
	d.Put(buf, id)
	require.Equal(t, id[:], buf)
	require.Equal(t, id, d.Get(buf))
}

func TestTuple2(t *testing.T) {
	info, err := shape.Of[Tuple2[int32, float64]]()
	require.NoError(t, err)
	require.Equal(t, format.TypeTuple2, info.TypeEnum())
	require.Equal(t, format.NewTEOFS(format.TypeInt32), info.Header.TEOFS1)
	require.Equal(t, format.NewTEOFS(format.TypeFloat64), info.Header.TEOFS2)

	d, err := element.For[Tuple2[int32, float64]]()
	require.NoError(t, err)
	require.Equal(t, 12, d.Size)
	require.False(t, d.Raw)

	v := NewTuple2[int32, float64](-5, 2.5)
	buf := make([]byte, 12)
	d.Put(buf, v)
	require.Equal(t, v, d.Get(buf))

	ds, err := element.For[Tuple2[string, int32]]()
	require.NoError(t, err)
	require.False(t, ds.IsBlittable())
}

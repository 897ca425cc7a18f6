package types

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
	"strings"

	"github.com/ericlagergren/decimal"
)

const (
	// DecimalSize is the wire size of a Decimal.
	DecimalSize = 16
	// MaxDecimalScale is the largest number of fractional digits a Decimal can hold.
	MaxDecimalScale = 28

	decimalScaleShift = 16
	decimalScaleMask  = 0x00FF0000
	decimalSignBit    = 0x80000000
)

var (
	ErrDecimalScale    = errors.New("decimal scale out of range")
	ErrDecimalOverflow = errors.New("decimal mantissa exceeds 96 bits")
	ErrDecimalSyntax   = errors.New("invalid decimal syntax")

	maxMantissa = new(big.Int).Lsh(big.NewInt(1), 96)
)

// Decimal is a 128-bit fixed-point number: a 96-bit magnitude, a sign and a power-of-ten
// scale between 0 and 28. Its memory layout equals its wire layout:
//
//	bytes 0-7:   low 64 bits of the magnitude
//	bytes 8-11:  high 32 bits of the magnitude
//	bytes 12-15: flags, scale in bits 16-23 and sign in bit 31
//
// Values with the same magnitude but different scales are numerically equal but not
// bit-identical, and serialization preserves the exact bits.
type Decimal struct {
	lo    uint64
	hi    uint32
	flags uint32
}

// NewDecimal returns mantissa * 10^-scale.
func NewDecimal(mantissa int64, scale uint8) (Decimal, error) {
	if scale > MaxDecimalScale {
		return Decimal{}, fmt.Errorf("%w: %d", ErrDecimalScale, scale)
	}

	d := Decimal{flags: uint32(scale) << decimalScaleShift}
	if mantissa < 0 {
		d.lo = uint64(-mantissa) //nolint: gosec
		d.flags |= decimalSignBit
	} else {
		d.lo = uint64(mantissa)
	}

	return d, nil
}

// MustDecimal is like NewDecimal but panics on error.
func MustDecimal(mantissa int64, scale uint8) Decimal {
	d, err := NewDecimal(mantissa, scale)
	if err != nil {
		panic(err)
	}

	return d
}

// DecimalFromBig returns mantissa * 10^-scale for a mantissa of at most 96 bits.
func DecimalFromBig(mantissa *big.Int, scale uint8) (Decimal, error) {
	if scale > MaxDecimalScale {
		return Decimal{}, fmt.Errorf("%w: %d", ErrDecimalScale, scale)
	}

	mag := new(big.Int).Abs(mantissa)
	if mag.Cmp(maxMantissa) >= 0 {
		return Decimal{}, fmt.Errorf("%w: %s", ErrDecimalOverflow, mantissa)
	}

	buf := make([]byte, DecimalSize)
	mag.FillBytes(buf)

	d := Decimal{
		lo:    binary.BigEndian.Uint64(buf[8:]),
		hi:    binary.BigEndian.Uint32(buf[4:8]),
		flags: uint32(scale) << decimalScaleShift,
	}
	if mantissa.Sign() < 0 {
		d.flags |= decimalSignBit
	}

	return d, nil
}

// ParseDecimal parses a plain decimal literal such as "-12.3450".
// The number of fractional digits becomes the scale.
func ParseDecimal(s string) (Decimal, error) {
	str := s
	neg := false
	if str != "" && (str[0] == '-' || str[0] == '+') {
		neg = str[0] == '-'
		str = str[1:]
	}

	intPart, fracPart, _ := strings.Cut(str, ".")
	if intPart == "" && fracPart == "" {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
	}
	if len(fracPart) > MaxDecimalScale {
		return Decimal{}, fmt.Errorf("%w: %q has %d fractional digits", ErrDecimalScale, s, len(fracPart))
	}

	digits := intPart + fracPart
	for _, c := range digits {
		if c < '0' || c > '9' {
			return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
		}
	}

	m, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
	}
	if neg {
		m.Neg(m)
	}

	return DecimalFromBig(m, uint8(len(fracPart))) //nolint: gosec
}

// Scale returns the number of fractional digits.
func (d Decimal) Scale() uint8 {
	return uint8((d.flags & decimalScaleMask) >> decimalScaleShift)
}

// IsNegative reports whether the sign bit is set. A negative zero is negative.
func (d Decimal) IsNegative() bool {
	return d.flags&decimalSignBit != 0
}

// IsZero reports whether the magnitude is zero.
func (d Decimal) IsZero() bool {
	return d.lo == 0 && d.hi == 0
}

// Mantissa returns the signed unscaled value.
func (d Decimal) Mantissa() *big.Int {
	m := new(big.Int).SetUint64(uint64(d.hi))
	m.Lsh(m, 64)
	m.Or(m, new(big.Int).SetUint64(d.lo))
	if d.IsNegative() {
		m.Neg(m)
	}

	return m
}

// Big converts d to an arbitrary-precision decimal.
func (d Decimal) Big() *decimal.Big {
	return decimal.WithContext(decimal.Context128).SetBigMantScale(d.Mantissa(), int(d.Scale()))
}

// Float64 returns the nearest float64.
func (d Decimal) Float64() float64 {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

func (d Decimal) String() string {
	digits := new(big.Int).SetUint64(uint64(d.hi))
	digits.Lsh(digits, 64)
	digits.Or(digits, new(big.Int).SetUint64(d.lo))
	s := digits.String()

	scale := int(d.Scale())
	if scale > 0 {
		if len(s) <= scale {
			s = strings.Repeat("0", scale-len(s)+1) + s
		}
		s = s[:len(s)-scale] + "." + s[len(s)-scale:]
	}

	if d.IsNegative() {
		return "-" + s
	}

	return s
}

// int128 is a two's complement 128-bit integer, wide enough for the difference of
// two 96-bit signed magnitudes.
type int128 struct {
	hi, lo uint64
}

func (d Decimal) signed() int128 {
	v := int128{hi: uint64(d.hi), lo: d.lo}
	if d.IsNegative() {
		return v.neg()
	}

	return v
}

func (a int128) neg() int128 {
	lo, borrow := bits.Sub64(0, a.lo, 0)
	hi, _ := bits.Sub64(0, a.hi, borrow)

	return int128{hi: hi, lo: lo}
}

func (a int128) add(b int128) int128 {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	hi, _ := bits.Add64(a.hi, b.hi, carry)

	return int128{hi: hi, lo: lo}
}

func (a int128) sub(b int128) int128 {
	lo, borrow := bits.Sub64(a.lo, b.lo, 0)
	hi, _ := bits.Sub64(a.hi, b.hi, borrow)

	return int128{hi: hi, lo: lo}
}

// decimalOf packs v with the given scale. ok is false if |v| needs more than 96 bits.
// A zero result is always a positive zero.
func decimalOf(v int128, scale uint8) (Decimal, bool) {
	neg := v.hi>>63 == 1
	if neg {
		v = v.neg()
	}
	if v.hi > math.MaxUint32 {
		return Decimal{}, false
	}

	d := Decimal{lo: v.lo, hi: uint32(v.hi), flags: uint32(scale) << decimalScaleShift}
	if neg {
		d.flags |= decimalSignBit
	}

	return d, true
}

// canonical reports whether d survives a signed round trip bit for bit: no reserved
// flag bits, a valid scale and no negative zero.
func (d Decimal) canonical() bool {
	if d.flags&^(decimalScaleMask|decimalSignBit) != 0 || d.Scale() > MaxDecimalScale {
		return false
	}

	return !(d.IsNegative() && d.IsZero())
}

// decimalDiff returns v-base with the shared scale. It refuses mixed scales, so that
// every element keeps its own scale on the way back.
func decimalDiff(base, v Decimal) (Decimal, bool) {
	if base.Scale() != v.Scale() || !base.canonical() || !v.canonical() {
		return Decimal{}, false
	}

	return decimalOf(v.signed().sub(base.signed()), base.Scale())
}

func decimalApply(base, delta Decimal) Decimal {
	d, _ := decimalOf(base.signed().add(delta.signed()), base.Scale())
	return d
}

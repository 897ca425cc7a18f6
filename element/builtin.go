package element

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/arloliu/typebin/endian"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/shape"
)

var wire = endian.Wire()

func init() {
	MustRegister(Integer[int8](format.TypeInt8))
	MustRegister(Integer[int16](format.TypeInt16))
	MustRegister(Integer[int32](format.TypeInt32))
	MustRegister(Integer[int64](format.TypeInt64))
	MustRegister(Integer[uint8](format.TypeUint8))
	MustRegister(Integer[uint16](format.TypeUint16))
	MustRegister(Integer[uint32](format.TypeUint32))
	MustRegister(Integer[uint64](format.TypeUint64))

	if unsafe.Sizeof(int(0)) == 8 {
		MustRegister(Integer[int](format.TypeInt64))
		MustRegister(Integer[uint](format.TypeUint64))
	} else {
		MustRegister(Integer[int](format.TypeInt32))
		MustRegister(Integer[uint](format.TypeUint32))
	}

	MustRegister(float32Descriptor())
	MustRegister(float64Descriptor())
	MustRegister(boolDescriptor())
}

// Integer returns the descriptor of an integer type written as t.
//
// Integers are diffed against the previous element with wrap-around arithmetic, so
// the round trip is exact for every input including overflowing deltas.
func Integer[T constraints.Integer](t format.TypeEnum) *Descriptor[T] {
	size := t.Size()

	return &Descriptor[T]{
		Shape: shape.Scalar(t),
		Size:  size,
		Raw:   int(unsafe.Sizeof(T(0))) == size,
		Put: func(dst []byte, v T) {
			putUint(dst, size, uint64(v)) //nolint: gosec
		},
		Get: func(src []byte) T {
			return T(getUint(src, size)) //nolint: gosec
		},
		Delta: IntegerDelta[T](),
	}
}

// IntegerDelta returns the previous-element delta strategy for an integer type.
func IntegerDelta[T constraints.Integer]() *Delta[T] {
	return &Delta[T]{
		Strategy: format.DeltaFromPrevious,
		Diff: func(base, v T) (T, bool) {
			return v - base, true
		},
		Apply: func(base, delta T) T {
			return base + delta
		},
	}
}

func putUint(dst []byte, size int, v uint64) {
	switch size {
	case 1:
		dst[0] = byte(v)
	case 2:
		wire.PutUint16(dst, uint16(v))
	case 4:
		wire.PutUint32(dst, uint32(v))
	default:
		wire.PutUint64(dst, v)
	}
}

func getUint(src []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(wire.Uint16(src))
	case 4:
		return uint64(wire.Uint32(src))
	default:
		return wire.Uint64(src)
	}
}

// Floats are not diffable: a subtraction is not exactly invertible.
func float32Descriptor() *Descriptor[float32] {
	return &Descriptor[float32]{
		Shape: shape.Scalar(format.TypeFloat32),
		Size:  4,
		Raw:   true,
		Put: func(dst []byte, v float32) {
			wire.PutUint32(dst, math.Float32bits(v))
		},
		Get: func(src []byte) float32 {
			return math.Float32frombits(wire.Uint32(src))
		},
	}
}

func float64Descriptor() *Descriptor[float64] {
	return &Descriptor[float64]{
		Shape: shape.Scalar(format.TypeFloat64),
		Size:  8,
		Raw:   true,
		Put: func(dst []byte, v float64) {
			wire.PutUint64(dst, math.Float64bits(v))
		},
		Get: func(src []byte) float64 {
			return math.Float64frombits(wire.Uint64(src))
		},
	}
}

// Bools are written as a single 0/1 byte. Raw copies are disabled so that reading
// foreign bytes never produces a bool that is neither true nor false.
func boolDescriptor() *Descriptor[bool] {
	return &Descriptor[bool]{
		Shape: shape.Scalar(format.TypeBool),
		Size:  1,
		Put: func(dst []byte, v bool) {
			if v {
				dst[0] = 1
			} else {
				dst[0] = 0
			}
		},
		Get: func(src []byte) bool {
			return src[0] != 0
		},
	}
}

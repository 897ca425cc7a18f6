// Package shape resolves Go types to DataTypeHeaders.
//
// A shape describes the top two levels of a value: the top-level TEOFS and up to two
// auxiliary slots. Constructors compose shapes bottom-up and degrade gracefully: a
// nested type that needs more than one slot to describe itself is replaced by the
// CompositeType sentinel, which tells the reader that the inner type must be known
// statically.
//
// Array-of-array shapes are fused into a single JaggedArray with a depth counter and
// arrays of homogeneous tuples into ArrayOfTupleTN, so that matrices and frames of
// primitives are fully described by 4 bytes.
package shape

import (
	"fmt"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/section"
)

// MaxCount is the largest tuple member count or jagged depth an auxiliary slot can hold.
const MaxCount = 255

// Info is the resolved shape of a Go type.
type Info struct {
	// Header holds the shape bytes; VersionAndFlags is always zero here.
	Header section.DataTypeHeader
	// Size is the wire size of one value without any header, or -1 if variable.
	Size int
	// Blittable reports a constant, pointer-free layout that may be copied as raw bytes.
	Blittable bool
	// Opaque reports a type that can only be written through the fallback serializer.
	Opaque bool
}

// Provider lets a type declare its own shape. It is consulted by Of before any
// kind-based derivation.
type Provider interface {
	TypeShape() Info
}

func top(t format.TypeEnum) section.DataTypeHeader {
	return section.DataTypeHeader{TEOFS: format.NewTEOFS(t)}
}

// Scalar returns the shape of a known fixed-size scalar. It panics if t is not a scalar.
func Scalar(t format.TypeEnum) Info {
	if !t.IsScalar() {
		panic(fmt.Sprintf("shape: %s is not a scalar type", t))
	}

	return Info{Header: top(t), Size: t.Size(), Blittable: true}
}

// FixedSize returns the shape of a blittable type of the given size without a
// dedicated TypeEnum.
func FixedSize(size int) (Info, error) {
	b, err := format.FixedSizeTEOFS(size)
	if err != nil {
		return Info{}, err
	}

	return Info{Header: section.DataTypeHeader{TEOFS: b}, Size: size, Blittable: true}, nil
}

// Variable returns the shape of a variable-length known type such as Utf8String.
func Variable(t format.TypeEnum) Info {
	if !t.IsVariable() {
		panic(fmt.Sprintf("shape: %s is not a variable-length type", t))
	}

	return Info{Header: top(t), Size: -1}
}

// JSON returns the shape of a value that is written through the fallback serializer.
func JSON() Info {
	return Info{Header: top(format.TypeJSON), Size: -1, Opaque: true}
}

// User returns the shape of a type with a custom converter.
func User() Info {
	return Info{Header: top(format.TypeUserType), Size: -1}
}

// BlittableUser returns the shape of a pointer-free type too large for a fixed-size TEOFS.
func BlittableUser(size int) Info {
	return Info{Header: top(format.TypeUserType), Size: size, Blittable: true}
}

// TypeEnum returns the top-level type.
func (i Info) TypeEnum() format.TypeEnum {
	return i.Header.TypeEnum()
}

// IsFixed reports whether every value of the type has the same wire size.
func (i Info) IsFixed() bool {
	return i.Size > 0
}

// Slot returns the single-byte description of the type for use in a parent's
// auxiliary slot: the TEOFS itself when the type is fully described by one byte,
// CompositeType otherwise.
func (i Info) Slot() format.TEOFS {
	if i.Header.TEOFS1 != 0 || i.Header.TEOFS2 != 0 {
		return format.NewTEOFS(format.TypeCompositeType)
	}

	t := i.Header.TEOFS.TypeEnum()
	if i.Header.TEOFS.IsFixedSize() || t.IsScalar() || t.IsVariable() || t.IsSentinel() {
		return i.Header.TEOFS
	}

	return format.NewTEOFS(format.TypeCompositeType)
}

// Array returns the shape of an array of elem.
//
//   - Array(Array(x)) fuses into JaggedArray{x, 2}
//   - Array(JaggedArray{x, d}) fuses into JaggedArray{x, d+1}
//   - Array(TupleTN{x, n}) with a one-slot x fuses into ArrayOfTupleTN{x, n}
func Array(elem Info) Info {
	h := top(format.TypeArray)

	switch elem.TypeEnum() {
	case format.TypeArray:
		h = top(format.TypeJaggedArray)
		h.TEOFS1 = elem.Header.TEOFS1
		h.TEOFS2 = 2
	case format.TypeJaggedArray:
		if int(elem.Header.TEOFS2) < MaxCount {
			h = top(format.TypeJaggedArray)
			h.TEOFS1 = elem.Header.TEOFS1
			h.TEOFS2 = elem.Header.TEOFS2 + 1
		} else {
			h.TEOFS1 = format.NewTEOFS(format.TypeCompositeType)
		}
	case format.TypeTupleTN:
		if elem.Header.TEOFS1.TypeEnum() != format.TypeCompositeType {
			h = top(format.TypeArrayOfTupleTN)
			h.TEOFS1 = elem.Header.TEOFS1
			h.TEOFS2 = elem.Header.TEOFS2
		} else {
			h.TEOFS1 = elem.Slot()
		}
	default:
		h.TEOFS1 = elem.Slot()
	}

	return Info{Header: h, Size: -1}
}

// TupleN returns the shape of a tuple of n members of the same type.
func TupleN(elem Info, n int) (Info, error) {
	if n < 1 || n > MaxCount {
		return Info{}, fmt.Errorf("%w: tuple of %d members", errs.ErrInvalidTypeSize, n)
	}

	h := top(format.TypeTupleTN)
	h.TEOFS1 = elem.Slot()
	h.TEOFS2 = format.TEOFS(n) //nolint: gosec

	info := Info{Header: h, Size: -1, Blittable: elem.Blittable, Opaque: elem.Opaque}
	if elem.IsFixed() {
		info.Size = elem.Size * n
	}

	return info, nil
}

// Tuple2 returns the shape of a pair of possibly different types.
func Tuple2(a, b Info) Info {
	h := top(format.TypeTuple2)
	h.TEOFS1 = a.Slot()
	h.TEOFS2 = b.Slot()

	info := Info{Header: h, Size: -1, Blittable: a.Blittable && b.Blittable, Opaque: a.Opaque || b.Opaque}
	if a.IsFixed() && b.IsFixed() {
		info.Size = a.Size + b.Size
	}

	return info
}

func pair(t format.TypeEnum, a, b Info) Info {
	h := top(t)
	h.TEOFS1 = a.Slot()
	h.TEOFS2 = b.Slot()

	return Info{Header: h, Size: -1, Opaque: a.Opaque || b.Opaque}
}

// Map returns the shape of a map from key to value.
func Map(key, value Info) Info {
	return pair(format.TypeMap, key, value)
}

// Series returns the shape of an ordered key/value series.
func Series(key, value Info) Info {
	return pair(format.TypeSeries, key, value)
}

// Frame returns the shape of a frame indexed by row and column keys.
func Frame(rowKey, columnKey Info) Info {
	return pair(format.TypeFrame, rowKey, columnKey)
}

// Package types provides the domain scalars of the wire format that have no direct Go
// equivalent (Timestamp, Decimal, Symbol, Tuple2) and registers element descriptors
// for them and for uuid.UUID.
//
// Importing the package is enough to make these types usable in converters and arrays.
package types

import (
	"github.com/google/uuid"

	"github.com/arloliu/typebin/element"
	"github.com/arloliu/typebin/endian"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/shape"
)

var wire = endian.Wire()

func init() {
	element.MustRegister(element.Integer[Timestamp](format.TypeTimestamp))
	element.MustRegister(decimalDescriptor())
	element.MustRegister(element.RawDescriptor[Symbol](shape.Scalar(format.TypeSymbol)))
	element.MustRegister(element.RawDescriptor[uuid.UUID](shape.Scalar(format.TypeUUID)))
}

// Decimals are diffed against the first element: prices oscillating around a level keep
// small deltas of stable sign.
func decimalDescriptor() *element.Descriptor[Decimal] {
	return &element.Descriptor[Decimal]{
		Shape: shape.Scalar(format.TypeDecimal),
		Size:  DecimalSize,
		Raw:   true,
		Put: func(dst []byte, v Decimal) {
			_ = dst[15]
			wire.PutUint64(dst, v.lo)
			wire.PutUint32(dst[8:], v.hi)
			wire.PutUint32(dst[12:], v.flags)
		},
		Get: func(src []byte) Decimal {
			_ = src[15]
			return Decimal{
				lo:    wire.Uint64(src),
				hi:    wire.Uint32(src[8:]),
				flags: wire.Uint32(src[12:]),
			}
		},
		Delta: &element.Delta[Decimal]{
			Strategy: format.DeltaFromFirst,
			Diff:     decimalDiff,
			Apply:    decimalApply,
		},
	}
}

package format

import (
	"fmt"

	"github.com/arloliu/typebin/errs"
)

// TEOFS is a TypeEnumOrFixedSize byte.
//
// Bit 7 clear: bits 0-6 hold a TypeEnum.
// Bit 7 set: bits 0-6 hold size-1 of a blittable type with no dedicated TypeEnum (1-128 bytes).
type TEOFS uint8

const (
	fixedSizeFlag = 0x80
	valueMask     = 0x7F

	// MaxFixedSize is the largest size expressible by a fixed-size TEOFS.
	MaxFixedSize = 128
)

// NewTEOFS returns the TEOFS for a known type.
// It panics if t does not fit into 7 bits, which can only happen with a hand-made TypeEnum.
func NewTEOFS(t TypeEnum) TEOFS {
	if t > MaxTypeEnum {
		panic(fmt.Sprintf("format: type enum %d does not fit TEOFS", t))
	}

	return TEOFS(t)
}

// FixedSizeTEOFS returns the TEOFS for an unknown blittable type of the given size.
//
// Returns:
//   - TEOFS: encoded byte
//   - error: errs.ErrInvalidTypeSize if size is outside 1-128
func FixedSizeTEOFS(size int) (TEOFS, error) {
	if size < 1 || size > MaxFixedSize {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidTypeSize, size)
	}

	return TEOFS(fixedSizeFlag | uint8(size-1)), nil //nolint: gosec
}

// IsFixedSize reports whether the byte encodes an unknown fixed size.
func (t TEOFS) IsFixedSize() bool {
	return t&fixedSizeFlag != 0
}

// TypeEnum returns the encoded type, or TypeFixedSize for fixed-size bytes.
func (t TEOFS) TypeEnum() TypeEnum {
	if t.IsFixedSize() {
		return TypeFixedSize
	}

	return TypeEnum(t & valueMask)
}

// Size returns the element size described by the byte: the encoded size for fixed-size
// bytes, the table size for scalars and -1 otherwise.
func (t TEOFS) Size() int {
	if t.IsFixedSize() {
		return int(t&valueMask) + 1
	}

	return TypeEnum(t).Size()
}

func (t TEOFS) String() string {
	if t.IsFixedSize() {
		return fmt.Sprintf("FixedSize(%d)", t.Size())
	}

	return t.TypeEnum().String()
}

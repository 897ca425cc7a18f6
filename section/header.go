package section

import (
	"encoding/binary"
	"fmt"

	"github.com/ccoveille/go-safecast"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

// DataTypeHeader is the 4-byte self-describing prefix of a serialized value:
//
//	byte 0: VersionAndFlags
//	byte 1: TEOFS, top-level shape
//	byte 2: TEOFS1, first auxiliary slot
//	byte 3: TEOFS2, second auxiliary slot
//
// The meaning of the auxiliary slots depends on the top-level shape, see format.TypeEnum.
type DataTypeHeader struct {
	VersionAndFlags VersionAndFlags
	TEOFS           format.TEOFS
	TEOFS1          format.TEOFS
	TEOFS2          format.TEOFS
}

// Shape returns the header with the flags byte cleared. Two headers describe the
// same type if and only if their shapes are equal.
func (h DataTypeHeader) Shape() DataTypeHeader {
	h.VersionAndFlags = 0
	return h
}

// TypeEnum returns the top-level type.
func (h DataTypeHeader) TypeEnum() format.TypeEnum {
	return h.TEOFS.TypeEnum()
}

// IsScalar reports whether the top-level shape is a self-sized scalar or an unknown fixed size.
func (h DataTypeHeader) IsScalar() bool {
	return h.TEOFS.IsFixedSize() || h.TEOFS.TypeEnum().IsScalar()
}

// Put writes the header into dst, which must hold at least HeaderSize bytes.
func (h DataTypeHeader) Put(dst []byte) {
	_ = dst[slot2Offset]
	dst[flagsOffset] = byte(h.VersionAndFlags)
	dst[teofsOffset] = byte(h.TEOFS)
	dst[slot1Offset] = byte(h.TEOFS1)
	dst[slot2Offset] = byte(h.TEOFS2)
}

func (h DataTypeHeader) String() string {
	return fmt.Sprintf("{%s %s %s %s}", h.VersionAndFlags, h.TEOFS, h.TEOFS1, h.TEOFS2)
}

// ParseDataTypeHeader parses a header from the first HeaderSize bytes of data.
//
// Returns:
//   - DataTypeHeader: Parsed header
//   - error: errs.ErrInvalidHeaderSize if data is shorter than HeaderSize
func ParseDataTypeHeader(data []byte) (DataTypeHeader, error) {
	if len(data) < HeaderSize {
		return DataTypeHeader{}, errs.ErrInvalidHeaderSize
	}

	return DataTypeHeader{
		VersionAndFlags: VersionAndFlags(data[flagsOffset]),
		TEOFS:           format.TEOFS(data[teofsOffset]),
		TEOFS1:          format.TEOFS(data[slot1Offset]),
		TEOFS2:          format.TEOFS(data[slot2Offset]),
	}, nil
}

// Validate checks a header read from the wire against the header the reader expects.
//
// The checks run in order: binary flag, converter version, shape. A stored header that
// fails any of them must not be reinterpreted as the expected type.
func (h DataTypeHeader) Validate(expected DataTypeHeader) error {
	if !h.VersionAndFlags.IsBinary() {
		return errs.ErrNotBinary
	}

	if got, want := h.VersionAndFlags.Version(), expected.VersionAndFlags.Version(); got != want {
		return errs.Formatf(errs.ErrVersionMismatch, "stored v%d, reader v%d", got, want)
	}

	if h.Shape() != expected.Shape() {
		return errs.Formatf(errs.ErrTypeMismatch, "stored %s, expected %s", h.Shape(), expected.Shape())
	}

	return nil
}

// PutLengthPrefix writes the int32 little-endian total length of a variable-length value.
//
// Returns errs.ErrPayloadTooLarge if total does not fit an int32.
func PutLengthPrefix(dst []byte, total int) error {
	n, err := safecast.ToInt32(total)
	if err != nil {
		return fmt.Errorf("%w: %d bytes", errs.ErrPayloadTooLarge, total)
	}

	binary.LittleEndian.PutUint32(dst, uint32(n)) //nolint: gosec

	return nil
}

// ReadLengthPrefix reads and bounds-checks the length prefix of a variable-length value.
//
// The returned length covers the prefix, the header and the payload, and is guaranteed
// to be at least PrefixedOverhead and at most len(src).
func ReadLengthPrefix(src []byte) (int, error) {
	if len(src) < PrefixedOverhead {
		return 0, errs.ErrInvalidHeaderSize
	}

	total := int(int32(binary.LittleEndian.Uint32(src))) //nolint: gosec
	if total < PrefixedOverhead || total > len(src) {
		return 0, errs.Formatf(errs.ErrInvalidLength, "length %d, available %d", total, len(src))
	}

	return total, nil
}

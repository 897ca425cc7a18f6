package converter

import (
	"fmt"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/section"
)

// Frame is a length-prefixed value located in a source buffer.
type Frame struct {
	Header  section.DataTypeHeader
	Payload []byte
	// Size is the total length including the prefix and the header.
	Size int
}

// FramedSize returns the serialized size of a variable-length value with a payload of n bytes.
func FramedSize(n int) (int, error) {
	total := section.PrefixedOverhead + n
	if n < 0 || total > section.MaxPayloadSize {
		return 0, fmt.Errorf("%w: %d bytes", errs.ErrPayloadTooLarge, n)
	}

	return total, nil
}

// CapacityError reports a destination of have bytes where need bytes are required.
func CapacityError(need, have int) error {
	return fmt.Errorf("%w: need %d bytes, have %d", errs.ErrInsufficientCapacity, need, have)
}

// BeginFrame writes the length prefix and header of a value with an n-byte payload
// and returns the payload region of dst. Nothing is written on error.
func BeginFrame(dst []byte, h section.DataTypeHeader, n int) ([]byte, error) {
	total, err := FramedSize(n)
	if err != nil {
		return nil, err
	}
	if len(dst) < total {
		return nil, CapacityError(total, len(dst))
	}

	if err := section.PutLengthPrefix(dst, total); err != nil {
		return nil, err
	}
	h.Put(dst[section.LengthPrefixSize:])

	return dst[section.PrefixedOverhead:total], nil
}

// ReadFrame parses the length prefix and header at the start of src without
// validating the header.
func ReadFrame(src []byte) (Frame, error) {
	total, err := section.ReadLengthPrefix(src)
	if err != nil {
		return Frame{}, err
	}

	h, err := section.ParseDataTypeHeader(src[section.LengthPrefixSize:])
	if err != nil {
		return Frame{}, err
	}

	return Frame{Header: h, Payload: src[section.PrefixedOverhead:total], Size: total}, nil
}

// OpenFrame parses a frame and validates its header against expected.
func OpenFrame(src []byte, expected section.DataTypeHeader) (Frame, error) {
	f, err := ReadFrame(src)
	if err != nil {
		return Frame{}, err
	}

	if err := f.Header.Validate(expected); err != nil {
		return Frame{}, err
	}

	return f, nil
}

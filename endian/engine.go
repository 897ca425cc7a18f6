// Package endian provides byte order utilities for the typebin wire format.
//
// All multi-byte values on the wire are little-endian. On little-endian hosts the
// in-memory representation of a blittable value is identical to its wire bytes, which
// lets the codecs copy whole element slices at once. RawBytes and the NativeIsWire
// check gate that fast path; big-endian hosts fall back to per-element encoding.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

var nativeIsWire = CheckEndianness() == binary.LittleEndian

// NativeIsWire reports whether the host byte order equals the wire byte order, i.e.
// whether raw memory of a blittable value can be copied to the wire unchanged.
func NativeIsWire() bool {
	return nativeIsWire
}

// Wire returns the engine for the wire byte order.
func Wire() EndianEngine {
	return binary.LittleEndian
}

// RawBytes returns the memory of s as a byte slice without copying.
//
// T must be pointer-free. The result aliases s and is only meaningful as wire bytes
// when NativeIsWire reports true.
func RawBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}

	var zero T
	size := int(unsafe.Sizeof(zero))

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*size)
}

// RawValue returns the memory of *v as a byte slice without copying.
func RawValue[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// Package typebin provides a self-describing binary serialization engine for scalars,
// arrays and arbitrary Go values.
//
// Every serialized value starts with a 4-byte DataTypeHeader that records the shape
// of the type (up to two levels deep), the converter version and the transformations
// applied to the payload. Arrays of fixed-size numeric types are delta-encoded,
// byte-shuffled and compressed; values without a binary layout fall back to JSON.
//
// # Core Features
//
//   - Compact 4-byte type headers, verified on every read
//   - Array pipeline: delta (from previous or from first) -> shuffle -> GZip, LZ4 or Zstd
//   - Compressed arrays never exceed the raw element bytes plus 8 bytes of framing
//   - Exact-size writes: SizeOf is exact and Write never grows the destination
//   - Domain scalars: nanosecond Timestamp, 128-bit Decimal, Symbol and UUID
//   - JSON or CBOR fallback for everything else
//
// # Basic Usage
//
//	data, err := typebin.Marshal([]int64{1, 2, 3, 5, 8})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	values, err := typebin.Unmarshal[[]int64](data)
//
// Writing into a caller-owned buffer:
//
//	c, _ := typebin.For[[]float64]()
//	n, payload, _ := c.SizeOf(values)
//	defer payload.Release()
//	buf := make([]byte, n)
//	_, err := c.Write(values, buf, payload)
//
// # Package Structure
//
// This package wraps a registry of converters. Converters are resolved once per type:
// registered converters win, then strings and byte slices, then blittable types, and
// every other type is written with the JSON fallback. Slices of the builtin scalars and
// of the types package scalars are registered at init; register others with
// RegisterArray. For fine-grained control use the converter and array packages
// directly.
package typebin

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arloliu/typebin/array"
	"github.com/arloliu/typebin/converter"
	"github.com/arloliu/typebin/element"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/types"
)

var registry sync.Map // reflect.Type -> converter.Converter[T]

func init() {
	mustRegisterArray[int8]()
	mustRegisterArray[int16]()
	mustRegisterArray[int32]()
	mustRegisterArray[int64]()
	mustRegisterArray[int]()
	mustRegisterArray[uint16]()
	mustRegisterArray[uint32]()
	mustRegisterArray[uint64]()
	mustRegisterArray[uint]()
	mustRegisterArray[float32]()
	mustRegisterArray[float64]()
	mustRegisterArray[bool]()
	mustRegisterArray[types.Timestamp]()
	mustRegisterArray[types.Decimal]()
	mustRegisterArray[types.Symbol]()
	mustRegisterArray[uuid.UUID]()

	strs, err := converter.NewString()
	if err != nil {
		panic(err)
	}
	list, err := array.NewList[string](strs)
	if err != nil {
		panic(err)
	}
	Register[[]string](list)
}

func mustRegisterArray[E any]() {
	if err := RegisterArray[E](); err != nil {
		panic(err)
	}
}

// Register installs c as the converter for T, replacing the current one.
func Register[T any](c converter.Converter[T]) {
	registry.Store(reflect.TypeOf((*T)(nil)).Elem(), c)
}

// RegisterArray builds the array codec for []E with opts and registers it.
//
// Parameters:
//   - opts: array codec options (compression, level, delta, shuffle, fallback, logger)
//
// Returns:
//   - error: errs.ErrUnsupportedType if E has no representation, or an invalid option
//
// Example:
//
//	err := typebin.RegisterArray[float64](
//	    array.WithCompression(format.CompressionZstd),
//	    array.WithLevel(9),
//	)
func RegisterArray[E any](opts ...array.Option) error {
	c, err := array.New[E](opts...)
	if err != nil {
		return err
	}
	Register[[]E](c)

	return nil
}

// For returns the converter for T, resolving and caching it on first use.
//
// Returns an *errs.UnsupportedTypeError for channels, functions and other types
// without any representation.
func For[T any]() (converter.Converter[T], error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := registry.Load(rt); ok {
		return v.(converter.Converter[T]), nil //nolint: forcetypeassert
	}

	c, err := derive[T]()
	if err != nil {
		return nil, err
	}

	v, _ := registry.LoadOrStore(rt, c)

	return v.(converter.Converter[T]), nil //nolint: forcetypeassert
}

func derive[T any]() (converter.Converter[T], error) {
	var zero T
	switch any(zero).(type) {
	case string:
		c, err := converter.NewString()
		if err != nil {
			return nil, err
		}

		return any(c).(converter.Converter[T]), nil //nolint: forcetypeassert
	case []byte:
		c, err := converter.NewBytes()
		if err != nil {
			return nil, err
		}

		return any(c).(converter.Converter[T]), nil //nolint: forcetypeassert
	}

	desc, err := element.For[T]()
	if err != nil {
		return nil, err
	}
	if desc.IsBlittable() {
		return converter.NewBlittable[T]()
	}

	return converter.NewFallback[T]()
}

// SizeOf returns the exact serialized size of v.
func SizeOf[T any](v T) (int, error) {
	c, err := For[T]()
	if err != nil {
		return 0, err
	}

	n, p, err := c.SizeOf(v)
	p.Release()

	return n, err
}

// Marshal serializes v into a new exact-size buffer.
func Marshal[T any](v T) ([]byte, error) {
	c, err := For[T]()
	if err != nil {
		return nil, err
	}

	n, p, err := c.SizeOf(v)
	if err != nil {
		return nil, err
	}
	defer p.Release()

	buf := make([]byte, n)
	if _, err := c.Write(v, buf, p); err != nil {
		return nil, err
	}

	return buf, nil
}

// MarshalTo serializes v into dst and returns the number of bytes written.
// A short dst yields errs.ErrInsufficientCapacity and is left untouched.
func MarshalTo[T any](v T, dst []byte) (int, error) {
	c, err := For[T]()
	if err != nil {
		return 0, err
	}

	return c.Write(v, dst, nil)
}

// Unmarshal deserializes a value that occupies all of data.
func Unmarshal[T any](data []byte) (T, error) {
	v, n, err := UnmarshalPrefix[T](data)
	if err != nil {
		return v, err
	}

	if n != len(data) {
		var zero T
		return zero, errs.Formatf(errs.ErrInvalidLength, "%d trailing bytes", len(data)-n)
	}

	return v, nil
}

// UnmarshalPrefix deserializes the value at the start of data and returns it with the
// number of bytes consumed, for reading values written back to back.
func UnmarshalPrefix[T any](data []byte) (T, int, error) {
	c, err := For[T]()
	if err != nil {
		var zero T
		return zero, 0, err
	}

	v, n, err := c.Read(data)
	if err != nil {
		var zero T
		return zero, 0, fmt.Errorf("typebin: read %s: %w", reflect.TypeOf((*T)(nil)).Elem(), err)
	}

	return v, n, nil
}

// SetLogger sets the logger of array codecs that were built without array.WithLogger.
// Only debug messages are emitted. A nil logger disables logging.
func SetLogger(logger *zap.Logger) {
	array.SetDefaultLogger(logger)
}

package shape

import (
	"reflect"
	"sync"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

// maxDepth bounds recursion through self-referencing slice and map types.
const maxDepth = 32

var (
	registered sync.Map // reflect.Type -> Info, explicit registrations
	resolved   sync.Map // reflect.Type -> Info, cache of derived shapes

	providerType = reflect.TypeOf((*Provider)(nil)).Elem()
)

// Register binds T to info, overriding derivation. It is meant to be called from
// package init functions, before any value of T is serialized.
func Register[T any](info Info) {
	registered.Store(reflect.TypeOf((*T)(nil)).Elem(), info)
	resolved.Delete(reflect.TypeOf((*T)(nil)).Elem())
}

// Of resolves the shape of T. The result is cached per type.
func Of[T any]() (Info, error) {
	return OfType(reflect.TypeOf((*T)(nil)).Elem())
}

// OfType resolves the shape of rt, see Of.
//
// Resolution order:
//  1. explicit registrations (Register)
//  2. types implementing Provider
//  3. kind-based derivation for numerics, bool, string, []byte, slices, arrays and maps
//  4. pointer-free structs: FixedSize up to 128 bytes, blittable UserType above
//  5. other reference-holding types: JSON fallback
//
// Channels, functions, unsafe pointers and complex numbers yield an UnsupportedTypeError.
func OfType(rt reflect.Type) (Info, error) {
	return resolve(rt, 0)
}

func resolve(rt reflect.Type, depth int) (Info, error) {
	if v, ok := registered.Load(rt); ok {
		return v.(Info), nil //nolint: forcetypeassert
	}
	if v, ok := resolved.Load(rt); ok {
		return v.(Info), nil //nolint: forcetypeassert
	}

	info, err := derive(rt, depth)
	if err != nil {
		return Info{}, err
	}
	resolved.Store(rt, info)

	return info, nil
}

var kindScalars = map[reflect.Kind]format.TypeEnum{
	reflect.Bool:    format.TypeBool,
	reflect.Int8:    format.TypeInt8,
	reflect.Int16:   format.TypeInt16,
	reflect.Int32:   format.TypeInt32,
	reflect.Int64:   format.TypeInt64,
	reflect.Uint8:   format.TypeUint8,
	reflect.Uint16:  format.TypeUint16,
	reflect.Uint32:  format.TypeUint32,
	reflect.Uint64:  format.TypeUint64,
	reflect.Float32: format.TypeFloat32,
	reflect.Float64: format.TypeFloat64,
}

func derive(rt reflect.Type, depth int) (Info, error) {
	if depth > maxDepth {
		return JSON(), nil
	}

	if rt.Implements(providerType) {
		if p, ok := reflect.Zero(rt).Interface().(Provider); ok {
			return p.TypeShape(), nil
		}
	}

	if t, ok := kindScalars[rt.Kind()]; ok {
		return Scalar(t), nil
	}

	switch rt.Kind() { //nolint: exhaustive
	case reflect.Int:
		if rt.Size() == 8 {
			return Scalar(format.TypeInt64), nil
		}

		return Scalar(format.TypeInt32), nil
	case reflect.Uint:
		if rt.Size() == 8 {
			return Scalar(format.TypeUint64), nil
		}

		return Scalar(format.TypeUint32), nil
	case reflect.String:
		return Variable(format.TypeUtf8String), nil
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return Variable(format.TypeBinary), nil
		}
		elem, err := resolve(rt.Elem(), depth+1)
		if err != nil {
			return Info{}, err
		}

		return Array(elem), nil
	case reflect.Array:
		elem, err := resolve(rt.Elem(), depth+1)
		if err != nil {
			return Info{}, err
		}
		if rt.Len() >= 1 && rt.Len() <= MaxCount {
			return TupleN(elem, rt.Len())
		}
		if isBlittable(rt) {
			return blittableStruct(rt)
		}

		return JSON(), nil
	case reflect.Map:
		key, err := resolve(rt.Key(), depth+1)
		if err != nil {
			return Info{}, err
		}
		value, err := resolve(rt.Elem(), depth+1)
		if err != nil {
			return Info{}, err
		}

		return Map(key, value), nil
	case reflect.Struct:
		if isBlittable(rt) && rt.Size() > 0 {
			return blittableStruct(rt)
		}

		return JSON(), nil
	case reflect.Pointer, reflect.Interface:
		return JSON(), nil
	default:
		return Info{}, &errs.UnsupportedTypeError{Type: rt, Reason: "kind " + rt.Kind().String() + " has no representation"}
	}
}

func blittableStruct(rt reflect.Type) (Info, error) {
	size := int(rt.Size())
	if size <= format.MaxFixedSize {
		return FixedSize(size)
	}

	return BlittableUser(size), nil
}

// isBlittable reports whether rt has a constant layout without pointers.
func isBlittable(rt reflect.Type) bool {
	switch rt.Kind() { //nolint: exhaustive
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return isBlittable(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if !isBlittable(rt.Field(i).Type) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// IsBlittable reports whether T has a constant layout without pointers.
func IsBlittable[T any]() bool {
	return isBlittable(reflect.TypeOf((*T)(nil)).Elem())
}

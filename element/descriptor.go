// Package element describes how individual values of a Go type are laid out inside
// array payloads and how they may be delta-encoded.
//
// A Descriptor is resolved once per type and is read-only afterwards. Blittable
// descriptors carry a fixed wire size and per-element Put/Get functions; when the
// in-memory layout of T equals its wire layout (Raw) the array codec may copy whole
// slices without touching individual elements.
package element

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/arloliu/typebin/endian"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/shape"
)

// Delta is a delta-encoding strategy for an element type.
type Delta[T any] struct {
	// Strategy selects the base: the previous element or the first element.
	Strategy format.DeltaType
	// Diff returns the delta taking base to v. ok is false when the delta is not
	// exactly representable, in which case the whole array is written undiffed.
	Diff func(base, v T) (delta T, ok bool)
	// Apply is the exact inverse of Diff.
	Apply func(base, delta T) T
}

// Descriptor describes the wire layout of one element type.
type Descriptor[T any] struct {
	Shape shape.Info
	// Size is the wire size of one element, or -1 for opaque types.
	Size int
	// Raw reports that the in-memory layout of T equals its little-endian wire layout.
	Raw bool
	// Put writes v into dst[:Size].
	Put func(dst []byte, v T)
	// Get reads a value from src[:Size].
	Get func(src []byte) T
	// Delta is nil for non-diffable types.
	Delta *Delta[T]
}

// IsBlittable reports whether elements have a fixed wire size.
func (d *Descriptor[T]) IsBlittable() bool {
	return d.Size > 0
}

// IsDiffable reports whether elements support delta encoding.
func (d *Descriptor[T]) IsDiffable() bool {
	return d.IsBlittable() && d.Delta != nil
}

// RawCopy reports whether whole slices may be copied as memory on this host.
func (d *Descriptor[T]) RawCopy() bool {
	return d.Raw && endian.NativeIsWire()
}

func (d *Descriptor[T]) validate() error {
	if d.Size <= 0 {
		return nil
	}

	if d.Put == nil || d.Get == nil {
		return fmt.Errorf("%w: blittable descriptor without Put/Get", errs.ErrUnsupportedType)
	}

	if d.Raw && int(unsafe.Sizeof(*new(T))) != d.Size {
		return fmt.Errorf("%w: raw descriptor size %d, memory size %d", errs.ErrInvalidTypeSize, d.Size, unsafe.Sizeof(*new(T)))
	}

	if d.Delta != nil && (d.Delta.Diff == nil || d.Delta.Apply == nil || d.Delta.Strategy == format.DeltaNone) {
		return fmt.Errorf("%w: incomplete delta strategy", errs.ErrUnsupportedType)
	}

	return nil
}

var registry sync.Map // reflect.Type -> any(*Descriptor[T])

// Describer is implemented by generic composite types that build their own
// descriptor from the descriptors of their members.
type Describer[T any] interface {
	ElementDescriptor() (*Descriptor[T], error)
}

// Register installs the descriptor for T, replacing any previous one. The shape of T
// is registered along with it so that containers of T resolve consistently.
func Register[T any](d *Descriptor[T]) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", errs.ErrUnsupportedType)
	}
	if err := d.validate(); err != nil {
		return err
	}

	registry.Store(reflect.TypeOf((*T)(nil)).Elem(), d)
	shape.Register[T](d.Shape)

	return nil
}

// MustRegister is like Register but panics on error. It is meant for package init.
func MustRegister[T any](d *Descriptor[T]) {
	if err := Register(d); err != nil {
		panic(err)
	}
}

// For returns the descriptor of T.
//
// Registered descriptors win. Otherwise the descriptor is derived from the shape of T:
// pointer-free types without bools whose memory size equals their wire size become raw
// blittable descriptors on little-endian hosts, every other supported type becomes an
// opaque descriptor.
//
// Returns an *errs.UnsupportedTypeError if T has no representation.
func For[T any]() (*Descriptor[T], error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := registry.Load(rt); ok {
		return v.(*Descriptor[T]), nil //nolint: forcetypeassert
	}

	var d *Descriptor[T]
	if p, ok := any(*new(T)).(Describer[T]); ok {
		var err error
		if d, err = p.ElementDescriptor(); err != nil {
			return nil, err
		}
	} else {
		info, err := shape.Of[T]()
		if err != nil {
			return nil, err
		}
		d = derive[T](info)
	}

	v, _ := registry.LoadOrStore(rt, d)

	return v.(*Descriptor[T]), nil //nolint: forcetypeassert
}

func derive[T any](info shape.Info) *Descriptor[T] {
	if info.Blittable && info.Size == int(unsafe.Sizeof(*new(T))) && endian.NativeIsWire() &&
		anyBytesValid(reflect.TypeOf((*T)(nil)).Elem()) {
		return RawDescriptor[T](info)
	}

	return &Descriptor[T]{Shape: info, Size: -1}
}

// anyBytesValid reports whether every byte pattern of a blittable rt is a valid value.
// Bools are not: only 0 and 1 are.
func anyBytesValid(rt reflect.Type) bool {
	switch rt.Kind() { //nolint: exhaustive
	case reflect.Bool:
		return false
	case reflect.Array:
		return anyBytesValid(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if !anyBytesValid(rt.Field(i).Type) {
				return false
			}
		}

		return true
	default:
		return true
	}
}

// RawDescriptor returns a descriptor that copies the memory of T verbatim.
// It is only correct for pointer-free types on little-endian hosts.
func RawDescriptor[T any](info shape.Info) *Descriptor[T] {
	size := int(unsafe.Sizeof(*new(T)))

	return &Descriptor[T]{
		Shape: info,
		Size:  size,
		Raw:   true,
		Put: func(dst []byte, v T) {
			copy(dst[:size], endian.RawValue(&v))
		},
		Get: func(src []byte) T {
			var v T
			copy(endian.RawValue(&v), src[:size])

			return v
		},
	}
}

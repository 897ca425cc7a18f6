package converter

import (
	"reflect"

	"github.com/arloliu/typebin/element"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/section"
)

// Fixed converts values with a constant wire size: known scalars and blittable types.
type Fixed[T any] struct {
	header section.DataTypeHeader
	desc   *element.Descriptor[T]
	size   int
}

var _ Converter[int32] = (*Fixed[int32])(nil)

// NewScalar returns the converter for a scalar: a type written with a known scalar
// TypeEnum or a FixedSize TEOFS.
func NewScalar[T any](opts ...Option) (*Fixed[T], error) {
	desc, err := element.For[T]()
	if err != nil {
		return nil, err
	}
	if !desc.IsBlittable() || !desc.Shape.Header.IsScalar() {
		return nil, &errs.UnsupportedTypeError{Type: reflect.TypeOf((*T)(nil)).Elem(), Reason: "not a scalar"}
	}

	return newFixed(desc, opts)
}

// NewBlittable returns the converter for any type with a constant wire size, including
// large pointer-free structs and pairs of scalars.
func NewBlittable[T any](opts ...Option) (*Fixed[T], error) {
	desc, err := element.For[T]()
	if err != nil {
		return nil, err
	}
	if !desc.IsBlittable() {
		return nil, &errs.UnsupportedTypeError{Type: reflect.TypeOf((*T)(nil)).Elem(), Reason: "no fixed-size layout"}
	}

	return newFixed(desc, opts)
}

func newFixed[T any](desc *element.Descriptor[T], opts []Option) (*Fixed[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Fixed[T]{
		header: cfg.header(desc.Shape.Header),
		desc:   desc,
		size:   section.HeaderSize + desc.Size,
	}, nil
}

func (c *Fixed[T]) Header() section.DataTypeHeader { return c.header }
func (c *Fixed[T]) FixedSize() int                 { return c.size }

func (c *Fixed[T]) SizeOf(T) (int, *Payload, error) {
	return c.size, nil, nil
}

func (c *Fixed[T]) Write(v T, dst []byte, _ *Payload) (int, error) {
	if len(dst) < c.size {
		return 0, CapacityError(c.size, len(dst))
	}

	c.header.Put(dst)
	c.desc.Put(dst[section.HeaderSize:], v)

	return c.size, nil
}

func (c *Fixed[T]) Read(src []byte) (T, int, error) {
	var zero T

	h, err := section.ParseDataTypeHeader(src)
	if err != nil {
		return zero, 0, err
	}
	if err := h.Validate(c.header); err != nil {
		return zero, 0, err
	}
	if len(src) < c.size {
		return zero, 0, errs.Formatf(errs.ErrInvalidLength, "value needs %d bytes, have %d", c.size, len(src))
	}

	return c.desc.Get(src[section.HeaderSize:]), c.size, nil
}

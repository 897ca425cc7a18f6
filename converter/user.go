package converter

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/internal/hash"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/shape"
)

// FingerprintSize is the size of the type fingerprint in front of a user type payload.
const FingerprintSize = 4

const userInitialSize = 128

// MarshalFunc appends the binary form of v to dst.
type MarshalFunc[T any] func(dst []byte, v T) ([]byte, error)

// UnmarshalFunc decodes a value from src, which holds exactly one payload.
type UnmarshalFunc[T any] func(src []byte) (T, error)

// User converts types with a custom binary codec. The payload starts with a 4-byte
// fingerprint of the registered type name, so that a value is never decoded by the
// codec of a different user type.
//
//	[length:int32][UserType header][fingerprint:uint32][payload]
type User[T any] struct {
	header      section.DataTypeHeader
	name        string
	fingerprint uint32
	marshal     MarshalFunc[T]
	unmarshal   UnmarshalFunc[T]
}

// NewUser returns a converter for T named name. The name identifies the type on the
// wire and must stay stable across releases.
func NewUser[T any](name string, marshal MarshalFunc[T], unmarshal UnmarshalFunc[T], opts ...Option) (*User[T], error) {
	if name == "" || marshal == nil || unmarshal == nil {
		return nil, fmt.Errorf("%w: user type needs a name and both codec functions", errs.ErrUnsupportedType)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &User[T]{
		header:      cfg.header(shape.User().Header),
		name:        name,
		fingerprint: hash.Fingerprint(name),
		marshal:     marshal,
		unmarshal:   unmarshal,
	}, nil
}

type binaryValue[T any] interface {
	*T
	AppendBinary(b []byte) ([]byte, error) // encoding.BinaryAppender (Go 1.24)
	encoding.BinaryUnmarshaler
}

// NewBinaryUser returns a User converter for a type whose pointer implements
// encoding.BinaryAppender and encoding.BinaryUnmarshaler.
func NewBinaryUser[T any, PT binaryValue[T]](name string, opts ...Option) (*User[T], error) {
	return NewUser(name,
		func(dst []byte, v T) ([]byte, error) {
			return PT(&v).AppendBinary(dst)
		},
		func(src []byte) (T, error) {
			var v T
			err := PT(&v).UnmarshalBinary(src)

			return v, err
		},
		opts...,
	)
}

// Name returns the registered type name.
func (c *User[T]) Name() string { return c.name }

func (c *User[T]) Header() section.DataTypeHeader { return c.header }
func (c *User[T]) FixedSize() int                 { return -1 }

func (c *User[T]) serialize(v T) (*Payload, error) {
	p := newPayload(userInitialSize)
	p.buf.B = binary.LittleEndian.AppendUint32(p.buf.B, c.fingerprint)

	out, err := c.marshal(p.buf.B, v)
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("user type %q: %w", c.name, err)
	}
	p.buf.B = out

	return p, nil
}

// SizeOf serializes v; the returned Payload must be released by the caller.
func (c *User[T]) SizeOf(v T) (int, *Payload, error) {
	p, err := c.serialize(v)
	if err != nil {
		return 0, nil, err
	}

	n, err := FramedSize(len(p.Bytes()))
	if err != nil {
		p.Release()
		return 0, nil, err
	}

	return n, p, nil
}

func (c *User[T]) Write(v T, dst []byte, p *Payload) (int, error) {
	if p == nil {
		var err error
		if p, err = c.serialize(v); err != nil {
			return 0, err
		}
		defer p.Release()
	}

	data := p.Bytes()
	payload, err := BeginFrame(dst, c.header, len(data))
	if err != nil {
		return 0, err
	}
	copy(payload, data)

	return section.PrefixedOverhead + len(data), nil
}

func (c *User[T]) Read(src []byte) (T, int, error) {
	var zero T

	f, err := OpenFrame(src, c.header)
	if err != nil {
		return zero, 0, err
	}
	if len(f.Payload) < FingerprintSize {
		return zero, 0, errs.Formatf(errs.ErrInvalidLength, "user payload of %d bytes", len(f.Payload))
	}

	if fp := binary.LittleEndian.Uint32(f.Payload); fp != c.fingerprint {
		return zero, 0, errs.Formatf(errs.ErrFingerprint, "stored %#08x, %q is %#08x", fp, c.name, c.fingerprint)
	}

	v, err := c.unmarshal(f.Payload[FingerprintSize:])
	if err != nil {
		return zero, 0, fmt.Errorf("%w: user type %q: %w", errs.ErrCorruptedBlock, c.name, err)
	}

	return v, f.Size, nil
}

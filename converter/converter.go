// Package converter defines the per-type SizeOf/Write/Read contract and the converters
// for scalars, blittable values, strings, byte slices, fallback-encoded values,
// user types and pairs.
//
// Every serialized value starts with a 4-byte DataTypeHeader. Fixed-size values are
// written as [header][value]; everything else is framed as
// [length:int32][header][payload] where length covers all three parts.
//
// Writers never grow the destination: a destination shorter than SizeOf reports
// errs.ErrInsufficientCapacity and writes nothing. Readers validate the header against
// the header the converter would write, and report errs.ErrFormat-wrapped errors for
// anything that cannot be safely reinterpreted as T.
package converter

import (
	"fmt"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/fallback"
	"github.com/arloliu/typebin/internal/options"
	"github.com/arloliu/typebin/internal/pool"
	"github.com/arloliu/typebin/section"
)

// DefaultVersion is the converter version written when none is configured.
const DefaultVersion uint8 = 1

// Converter serializes values of type T.
type Converter[T any] interface {
	// Header returns the header this converter writes, with compression related
	// flags cleared.
	Header() section.DataTypeHeader
	// FixedSize returns the exact serialized size of every value, or -1 if it varies.
	FixedSize() int
	// SizeOf returns the exact number of bytes Write needs for v. If computing the
	// size required serializing v, the bytes are returned as a Payload that should be
	// passed to Write and released afterwards.
	SizeOf(v T) (int, *Payload, error)
	// Write serializes v into dst and returns the number of bytes written. p is the
	// Payload returned by SizeOf for the same v, or nil.
	Write(v T, dst []byte, p *Payload) (int, error)
	// Read deserializes a value from the start of src and returns it with the number
	// of bytes consumed.
	Read(src []byte) (T, int, error)
}

// Payload carries bytes produced by SizeOf for reuse in Write.
type Payload struct {
	// Header is the header to write with the bytes, for converters whose flags
	// depend on the value.
	Header section.DataTypeHeader

	buf   *pool.ByteBuffer
	parts []*Payload
	sizes []int
}

// NewPayload wraps a pooled buffer, which is returned to the pool on Release.
func NewPayload(buf *pool.ByteBuffer, h section.DataTypeHeader) *Payload {
	return &Payload{Header: h, buf: buf}
}

// NewCompositePayload groups the payloads of nested values; sizes[i] is the serialized
// size of part i. Parts may be nil.
func NewCompositePayload(parts []*Payload, sizes []int) *Payload {
	return &Payload{parts: parts, sizes: sizes}
}

// Part returns nested payload i and its serialized size.
func (p *Payload) Part(i int) (*Payload, int) {
	return p.parts[i], p.sizes[i]
}

// Parts returns the number of nested payloads.
func (p *Payload) Parts() int {
	if p == nil {
		return 0
	}

	return len(p.parts)
}

func newPayload(capacity int) *Payload {
	buf := pool.Rent(capacity)
	buf.B = buf.B[:0]

	return &Payload{buf: buf}
}

// Bytes returns the serialized bytes, nil for composite payloads.
func (p *Payload) Bytes() []byte {
	if p == nil || p.buf == nil {
		return nil
	}

	return p.buf.Bytes()
}

// Release returns pooled memory. It is safe to call on nil and more than once.
func (p *Payload) Release() {
	if p == nil {
		return
	}

	if p.buf != nil {
		pool.Return(p.buf)
		p.buf = nil
	}

	for _, part := range p.parts {
		part.Release()
	}
	p.parts = nil
}

type config struct {
	version    uint8
	serializer fallback.Serializer
}

// Option configures a converter.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{version: DefaultVersion, serializer: fallback.Default()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithSerializer selects the serializer used by fallback converters.
func WithSerializer(s fallback.Serializer) Option {
	return options.New(func(c *config) error {
		if s == nil {
			return fmt.Errorf("%w: nil fallback serializer", errs.ErrUnsupportedType)
		}
		c.serializer = s

		return nil
	})
}

// WithVersion sets the converter version written into the header and required on read.
func WithVersion(version uint8) Option {
	return options.New(func(c *config) error {
		var f section.VersionAndFlags
		if err := f.SetVersion(version); err != nil {
			return err
		}
		c.version = version

		return nil
	})
}

func (c *config) header(h section.DataTypeHeader) section.DataTypeHeader {
	f, _ := section.NewVersionAndFlags(c.version) // validated by WithVersion
	h.VersionAndFlags = f

	return h
}

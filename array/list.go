package array

import (
	"encoding/binary"

	"github.com/ccoveille/go-safecast"

	"github.com/arloliu/typebin/converter"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/shape"
)

const countSize = 4

// List converts []E by writing every element with its own converter:
//
//	[length:int32][header][count:uint32][element 0]...[element count-1]
//
// A List of array codecs is a jagged array, and the header is fused accordingly
// (JaggedArray with a depth counter). A List of String converters is a binary array
// of strings.
type List[E any] struct {
	header section.DataTypeHeader
	inner  converter.Converter[E]
}

var _ converter.Converter[[][]int32] = (*List[[]int32])(nil)

// NewList returns a List over inner. opts accepts WithVersion; other options apply to
// the inner converter only.
func NewList[E any](inner converter.Converter[E], opts ...Option) (*List[E], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	h := shape.Array(shape.Info{Header: inner.Header().Shape()}).Header
	if h.VersionAndFlags, err = section.NewVersionAndFlags(cfg.version); err != nil {
		return nil, err
	}

	return &List[E]{header: h, inner: inner}, nil
}

// NewJagged returns the converter for [][]T, a List of Codec[T] sharing opts.
func NewJagged[T any](opts ...Option) (*List[[]T], error) {
	inner, err := New[T](opts...)
	if err != nil {
		return nil, err
	}

	return NewList[[]T](inner, opts...)
}

func (c *List[E]) Header() section.DataTypeHeader { return c.header }
func (c *List[E]) FixedSize() int                 { return -1 }

// SizeOf sizes every element; the returned Payload holds the element payloads.
func (c *List[E]) SizeOf(values []E) (int, *converter.Payload, error) {
	parts := make([]*converter.Payload, len(values))
	sizes := make([]int, len(values))
	p := converter.NewCompositePayload(parts, sizes)

	n := countSize
	for i, v := range values {
		size, part, err := c.inner.SizeOf(v)
		if err != nil {
			p.Release()
			return 0, nil, err
		}
		parts[i], sizes[i] = part, size
		n += size
	}

	total, err := converter.FramedSize(n)
	if err != nil {
		p.Release()
		return 0, nil, err
	}

	return total, p, nil
}

func (c *List[E]) Write(values []E, dst []byte, p *converter.Payload) (int, error) {
	if p == nil {
		var err error
		if _, p, err = c.SizeOf(values); err != nil {
			return 0, err
		}
		defer p.Release()
	}

	count, err := safecast.ToUint32(len(values))
	if err != nil {
		return 0, errs.ErrPayloadTooLarge
	}

	n := countSize
	for i := range values {
		_, size := p.Part(i)
		n += size
	}

	payload, err := converter.BeginFrame(dst, c.header, n)
	if err != nil {
		return 0, err
	}

	binary.LittleEndian.PutUint32(payload, count)
	off := countSize
	for i, v := range values {
		part, size := p.Part(i)
		if _, err := c.inner.Write(v, payload[off:off+size], part); err != nil {
			return 0, err
		}
		off += size
	}

	return section.PrefixedOverhead + n, nil
}

func (c *List[E]) Read(src []byte) ([]E, int, error) {
	f, err := converter.OpenFrame(src, c.header)
	if err != nil {
		return nil, 0, err
	}
	if len(f.Payload) < countSize {
		return nil, 0, errs.Formatf(errs.ErrInvalidLength, "list without element count")
	}

	count := int(binary.LittleEndian.Uint32(f.Payload))
	body := f.Payload[countSize:]
	if minSize := minElementSize(c.inner); count > len(body)/minSize {
		return nil, 0, errs.Formatf(errs.ErrInvalidLength, "%d elements in %d bytes", count, len(body))
	}

	values := make([]E, count)
	off := 0
	for i := range values {
		v, n, err := c.inner.Read(body[off:])
		if err != nil {
			return nil, 0, err
		}
		values[i] = v
		off += n
	}

	if off != len(body) {
		return nil, 0, errs.Formatf(errs.ErrInvalidLength, "elements use %d of %d bytes", off, len(body))
	}

	return values, f.Size, nil
}

// minElementSize is a lower bound of the serialized size of any element, used to
// reject impossible counts before allocating. Variable-length values are framed.
func minElementSize[E any](inner converter.Converter[E]) int {
	if n := inner.FixedSize(); n > 0 {
		return n
	}

	return section.PrefixedOverhead
}

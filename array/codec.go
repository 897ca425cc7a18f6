// Package array implements the compressed array codec: the converter for []T.
//
// Blittable element types go through a three stage pipeline on write and its exact
// inverse on read:
//
//  1. delta: diffable types store the first element verbatim and N-1 deltas, either
//     from the previous element or from the first one, as the element type dictates.
//  2. shuffle: byte k of every element is grouped together, which turns slowly
//     changing high bytes into long runs.
//  3. compress: the bytes are packed into a self-describing compress block.
//
// The applied stages are recorded in the VersionAndFlags byte. A stage that does not
// pay off is skipped and its flag cleared: if the compressed block is not strictly
// smaller than the raw element bytes, the raw bytes are stored instead, so an array
// never takes more than 8 + count*size bytes.
//
// Opaque element types are written as one fallback-serialized list, optionally
// compressed, with the serializer ID in the second auxiliary slot of the header.
package array

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/arloliu/typebin/compress"
	"github.com/arloliu/typebin/converter"
	"github.com/arloliu/typebin/element"
	"github.com/arloliu/typebin/endian"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/internal/pool"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/shape"
)

// Codec converts []T. It is immutable after New and safe for concurrent use.
type Codec[T any] struct {
	cfg    *config
	desc   *element.Descriptor[T]
	header section.DataTypeHeader
	name   string
}

var _ converter.Converter[[]int64] = (*Codec[int64])(nil)

// New returns the array codec for element type T.
//
// The element classification is resolved once: blittable elements are stored as
// little-endian bytes, diffable ones additionally delta-encoded, everything else
// through the fallback serializer.
func New[T any](opts ...Option) (*Codec[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	desc, err := element.For[T]()
	if err != nil {
		return nil, err
	}

	info := shape.Array(desc.Shape)
	h := info.Header
	if !desc.IsBlittable() {
		h = shape.Array(shape.JSON()).Header
		h.TEOFS2 = format.TEOFS(cfg.serializer.ID())
	}

	h.VersionAndFlags, err = section.NewVersionAndFlags(cfg.version)
	if err != nil {
		return nil, err
	}

	return &Codec[T]{
		cfg:    cfg,
		desc:   desc,
		header: h,
		name:   reflect.TypeOf((*T)(nil)).Elem().String(),
	}, nil
}

// Header returns the header of an uncompressed, undiffed array.
func (c *Codec[T]) Header() section.DataTypeHeader { return c.header }

// FixedSize returns -1: arrays are variable-length.
func (c *Codec[T]) FixedSize() int { return -1 }

// ElementSize returns the wire size of one element, or -1 for opaque elements.
func (c *Codec[T]) ElementSize() int { return c.desc.Size }

// SizeOf runs the write pipeline and returns the exact encoded size. Pass the returned
// Payload to Write and release it afterwards.
func (c *Codec[T]) SizeOf(values []T) (int, *converter.Payload, error) {
	p, err := c.encode(values)
	if err != nil {
		return 0, nil, err
	}

	n := c.payloadSize(values, p)
	total, err := converter.FramedSize(n)
	if err != nil {
		p.Release()
		return 0, nil, err
	}

	return total, p, nil
}

// SizeOfSegment is SizeOf for values[offset:offset+count].
func (c *Codec[T]) SizeOfSegment(values []T, offset, count int) (int, *converter.Payload, error) {
	seg, err := segment(values, offset, count)
	if err != nil {
		return 0, nil, err
	}

	return c.SizeOf(seg)
}

// Write encodes values into dst. p must be the Payload returned by SizeOf for the same
// values, or nil.
func (c *Codec[T]) Write(values []T, dst []byte, p *converter.Payload) (int, error) {
	if p == nil {
		var err error
		if p, err = c.encode(values); err != nil {
			return 0, err
		}
		defer p.Release()
	}

	n := c.payloadSize(values, p)
	h := c.header
	if p != nil {
		h = p.Header
	}

	payload, err := converter.BeginFrame(dst, h, n)
	if err != nil {
		return 0, err
	}

	if p != nil {
		copy(payload, p.Bytes())
	} else {
		c.putRaw(payload, values)
	}

	return section.PrefixedOverhead + n, nil
}

// WriteSegment is Write for values[offset:offset+count].
func (c *Codec[T]) WriteSegment(values []T, offset, count int, dst []byte) (int, error) {
	seg, err := segment(values, offset, count)
	if err != nil {
		return 0, err
	}

	return c.Write(seg, dst, nil)
}

func segment[T any](values []T, offset, count int) ([]T, error) {
	if offset < 0 || count < 0 || offset > len(values) || count > len(values)-offset {
		return nil, errs.ErrOutOfRange
	}

	return values[offset : offset+count], nil
}

// payloadSize returns the size of the framed payload. A nil Payload means the raw
// element bytes are written directly.
func (c *Codec[T]) payloadSize(values []T, p *converter.Payload) int {
	if p != nil {
		return len(p.Bytes())
	}

	return len(values) * c.desc.Size
}

// direct reports whether values can be written without staging.
func (c *Codec[T]) direct(values []T) bool {
	return c.desc.IsBlittable() &&
		c.cfg.compression == format.CompressionNone &&
		!(c.cfg.delta && c.desc.IsDiffable() && len(values) > 1)
}

func (c *Codec[T]) putRaw(dst []byte, values []T) {
	if c.desc.RawCopy() {
		copy(dst, endian.RawBytes(values))
		return
	}

	size := c.desc.Size
	for i, v := range values {
		c.desc.Put(dst[i*size:], v)
	}
}

// encode runs the write pipeline. It returns nil when values are written directly.
func (c *Codec[T]) encode(values []T) (*converter.Payload, error) {
	if !c.desc.IsBlittable() {
		return c.encodeOpaque(values)
	}
	if c.direct(values) {
		return nil, nil
	}

	size := c.desc.Size
	rawSize := len(values) * size
	h := c.header

	stage := pool.Rent(rawSize)
	if c.cfg.delta && c.desc.IsDiffable() && len(values) > 1 && c.putDelta(stage.B, values) {
		h.VersionAndFlags.SetDiffed(true)
	} else {
		c.putRaw(stage.B, values)
	}

	if c.cfg.compression == format.CompressionNone {
		return converter.NewPayload(stage, h), nil
	}

	p, err := c.compress(stage.B, h, c.desc.Size)
	if p != nil || err != nil {
		pool.Return(stage)
		return p, err
	}

	c.cfg.log().Debug("array: compressed block not smaller than raw data, storing raw",
		zap.String("type", c.name),
		zap.Int("raw_size", rawSize),
		zap.Stringer("method", c.cfg.compression),
	)

	return converter.NewPayload(stage, h), nil
}

// compress packs raw into a block that is strictly smaller than raw. It returns a nil
// Payload and no error when the block would not be smaller.
func (c *Codec[T]) compress(raw []byte, h section.DataTypeHeader, elemSize int) (*converter.Payload, error) {
	typeSize := blockTypeSize(elemSize)

	bound, err := compress.BlockBound(c.cfg.compression, len(raw))
	if err != nil {
		return nil, err
	}

	out := pool.Rent(bound)
	n, err := compress.EncodeBlock(out.B, raw, compress.BlockOptions{
		Method:   c.cfg.compression,
		Level:    c.cfg.level,
		TypeSize: typeSize,
		Shuffle:  c.cfg.shuffle && typeSize > 1,
	})
	if err != nil || n >= len(raw) {
		pool.Return(out)
		return nil, err
	}

	info, err := compress.InspectBlock(out.B[:n])
	if err != nil {
		pool.Return(out)
		return nil, err
	}

	out.B = out.B[:n]
	h.VersionAndFlags.SetCompression(c.cfg.compression)
	h.VersionAndFlags.SetShuffled(info.Shuffled)

	return converter.NewPayload(out, h), nil
}

// blockTypeSize is the shuffle unit recorded in a block for elements of elemSize bytes.
// Elements wider than a block can describe are treated as bytes.
func blockTypeSize(elemSize int) int {
	if elemSize > compress.MaxTypeSize {
		return 1
	}

	return elemSize
}

// putDelta writes the first element verbatim followed by len(values)-1 deltas.
// It returns false without a usable result if any delta is not representable.
func (c *Codec[T]) putDelta(dst []byte, values []T) bool {
	d := c.desc
	size := d.Size
	d.Put(dst, values[0])

	for i := 1; i < len(values); i++ {
		base := values[0]
		if d.Delta.Strategy == format.DeltaFromPrevious {
			base = values[i-1]
		}

		delta, ok := d.Delta.Diff(base, values[i])
		if !ok {
			c.cfg.log().Debug("array: delta not representable, storing undiffed",
				zap.String("type", c.name),
				zap.Int("index", i),
			)

			return false
		}
		d.Put(dst[i*size:], delta)
	}

	return true
}

// Read decodes an array written by any Codec[T] of the same version.
func (c *Codec[T]) Read(src []byte) ([]T, int, error) {
	if !c.desc.IsBlittable() {
		return c.readOpaque(src)
	}

	f, err := converter.OpenFrame(src, c.header)
	if err != nil {
		return nil, 0, err
	}
	flags := f.Header.VersionAndFlags

	data := f.Payload
	if method := flags.Compression(); method != format.CompressionNone {
		buf, err := decodeBlock(f.Payload, method, c.desc.Size)
		if err != nil {
			return nil, 0, err
		}
		defer pool.Return(buf)

		data = buf.B
	} else if flags.IsShuffled() {
		return nil, 0, errs.Formatf(errs.ErrCorruptedBlock, "shuffled flag without compression")
	}

	size := c.desc.Size
	if len(data)%size != 0 {
		return nil, 0, errs.Formatf(errs.ErrInvalidLength, "%d bytes is not a multiple of element size %d", len(data), size)
	}

	values := make([]T, len(data)/size)
	if c.desc.RawCopy() {
		copy(endian.RawBytes(values), data)
	} else {
		for i := range values {
			values[i] = c.desc.Get(data[i*size:])
		}
	}

	if flags.IsDiffed() {
		if !c.desc.IsDiffable() {
			return nil, 0, errs.Formatf(errs.ErrTypeMismatch, "diffed array of non-diffable %s", c.name)
		}
		c.undoDelta(values)
	}

	return values, f.Size, nil
}

func (c *Codec[T]) undoDelta(values []T) {
	apply := c.desc.Delta.Apply
	if c.desc.Delta.Strategy == format.DeltaFromFirst {
		for i := 1; i < len(values); i++ {
			values[i] = apply(values[0], values[i])
		}

		return
	}

	for i := 1; i < len(values); i++ {
		values[i] = apply(values[i-1], values[i])
	}
}

// decodeBlock decompresses a block into a pooled buffer. The block must use the method
// recorded in the header, fill the payload exactly and hold whole elements of elemSize
// bytes. All of this is checked before the buffer is rented.
func decodeBlock(payload []byte, method format.CompressionType, elemSize int) (*pool.ByteBuffer, error) {
	info, err := compress.InspectBlock(payload)
	if err != nil {
		return nil, err
	}
	if info.Method != method {
		return nil, errs.Formatf(errs.ErrCorruptedBlock, "block method %s, header %s", info.Method, method)
	}
	if info.BlockSize != len(payload) {
		return nil, errs.Formatf(errs.ErrInvalidLength, "block of %d bytes in %d byte payload", info.BlockSize, len(payload))
	}
	if want := blockTypeSize(elemSize); info.TypeSize != want {
		return nil, errs.Formatf(errs.ErrCorruptedBlock, "block type size %d, element size %d", info.TypeSize, elemSize)
	}
	if info.RawSize%elemSize != 0 {
		return nil, errs.Formatf(errs.ErrInvalidLength, "raw size %d is not a multiple of element size %d", info.RawSize, elemSize)
	}

	buf := pool.Rent(info.RawSize)
	if _, err := compress.DecodeBlock(buf.B, payload); err != nil {
		pool.Return(buf)
		return nil, err
	}

	return buf, nil
}

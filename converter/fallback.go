package converter

import (
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/fallback"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/shape"
)

const fallbackInitialSize = 256

// Fallback converts opaque values through a fallback.Serializer. The header has the
// binary flag cleared and carries the serializer ID in the first auxiliary slot.
type Fallback[T any] struct {
	header     section.DataTypeHeader
	serializer fallback.Serializer
}

// NewFallback returns a fallback converter for T. The serializer defaults to JSON and
// can be changed with WithSerializer.
func NewFallback[T any](opts ...Option) (*Fallback[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Fallback[T]{
		header:     FallbackHeader(cfg.version, cfg.serializer),
		serializer: cfg.serializer,
	}, nil
}

// FallbackHeader returns the header of a value written by s.
func FallbackHeader(version uint8, s fallback.Serializer) section.DataTypeHeader {
	h := shape.JSON().Header
	_ = h.VersionAndFlags.SetVersion(version)
	h.TEOFS1 = format.TEOFS(s.ID())

	return h
}

// ValidateFallbackHeader checks a stored header against a fallback header of the given
// version and returns the serializer that wrote the payload.
func ValidateFallbackHeader(h section.DataTypeHeader, version uint8) (fallback.Serializer, error) {
	if h.VersionAndFlags.IsBinary() {
		return nil, errs.Formatf(errs.ErrTypeMismatch, "binary payload %s where fallback expected", h)
	}
	if got := h.VersionAndFlags.Version(); got != version {
		return nil, errs.Formatf(errs.ErrVersionMismatch, "stored v%d, reader v%d", got, version)
	}
	if h.TEOFS != format.NewTEOFS(format.TypeJSON) || h.TEOFS2 != 0 {
		return nil, errs.Formatf(errs.ErrTypeMismatch, "stored %s, expected fallback", h.Shape())
	}

	return fallback.Lookup(uint8(h.TEOFS1))
}

func (c *Fallback[T]) Header() section.DataTypeHeader { return c.header }
func (c *Fallback[T]) FixedSize() int                 { return -1 }

func (c *Fallback[T]) serialize(v T) (*Payload, error) {
	p := newPayload(fallbackInitialSize)

	out, err := c.serializer.Append(p.buf.B, v)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.buf.B = out

	return p, nil
}

// SizeOf serializes v; the returned Payload must be released by the caller.
func (c *Fallback[T]) SizeOf(v T) (int, *Payload, error) {
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

func (c *Fallback[T]) Write(v T, dst []byte, p *Payload) (int, error) {
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

func (c *Fallback[T]) Read(src []byte) (T, int, error) {
	var v T

	f, err := ReadFrame(src)
	if err != nil {
		return v, 0, err
	}

	s, err := ValidateFallbackHeader(f.Header, c.header.VersionAndFlags.Version())
	if err != nil {
		return v, 0, err
	}

	if err := s.Unmarshal(f.Payload, &v); err != nil {
		return v, 0, err
	}

	return v, f.Size, nil
}

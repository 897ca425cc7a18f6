package array

import (
	"go.uber.org/zap"

	"github.com/arloliu/typebin/converter"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/fallback"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/internal/pool"
)

const opaqueInitialSize = 512

// encodeOpaque serializes the whole list with the fallback serializer and compresses
// the result without shuffling or delta encoding.
func (c *Codec[T]) encodeOpaque(values []T) (*converter.Payload, error) {
	stage := pool.Rent(opaqueInitialSize)
	stage.B = stage.B[:0]

	out, err := c.cfg.serializer.Append(stage.B, values)
	if err != nil {
		pool.Return(stage)
		return nil, err
	}
	stage.B = out

	if c.cfg.compression == format.CompressionNone {
		return converter.NewPayload(stage, c.header), nil
	}

	p, err := c.compress(stage.B, c.header, 1)
	if p != nil || err != nil {
		pool.Return(stage)
		return p, err
	}

	c.cfg.log().Debug("array: compressed fallback list not smaller than raw data, storing raw",
		zap.String("type", c.name),
		zap.Int("raw_size", len(stage.B)),
	)

	return converter.NewPayload(stage, c.header), nil
}

func (c *Codec[T]) readOpaque(src []byte) ([]T, int, error) {
	f, err := converter.ReadFrame(src)
	if err != nil {
		return nil, 0, err
	}

	h := f.Header
	flags := h.VersionAndFlags
	if !flags.IsBinary() {
		return nil, 0, errs.ErrNotBinary
	}
	if got, want := flags.Version(), c.cfg.version; got != want {
		return nil, 0, errs.Formatf(errs.ErrVersionMismatch, "stored v%d, reader v%d", got, want)
	}
	if h.TEOFS != c.header.TEOFS || h.TEOFS1 != c.header.TEOFS1 {
		return nil, 0, errs.Formatf(errs.ErrTypeMismatch, "stored %s, expected %s", h.Shape(), c.header.Shape())
	}
	if flags.IsDiffed() || flags.IsShuffled() {
		return nil, 0, errs.Formatf(errs.ErrCorruptedBlock, "fallback list with flags %s", flags)
	}

	s, err := fallback.Lookup(uint8(h.TEOFS2))
	if err != nil {
		return nil, 0, err
	}

	data := f.Payload
	if method := flags.Compression(); method != format.CompressionNone {
		buf, err := decodeBlock(f.Payload, method, 1)
		if err != nil {
			return nil, 0, err
		}
		defer pool.Return(buf)

		data = buf.B
	}

	// Every opaque element type shares the Array(JSON) header, so a document that does
	// not decode as []T is a type mismatch.
	var values []T
	if err := s.Unmarshal(data, &values); err != nil {
		return nil, 0, errs.Formatf(errs.ErrTypeMismatch, "%s list does not decode as %s: %v", s.Name(), c.name, err)
	}

	return values, f.Size, nil
}

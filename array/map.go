package array

import (
	"cmp"
	"slices"

	"github.com/arloliu/typebin/converter"
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/shape"
)

// Map converts map[K]V as two arrays, sorted keys followed by the matching values:
//
//	[length:int32][Map header][keys array][values array]
//
// Sorting makes the encoding deterministic and lets integer keys benefit from delta
// encoding.
type Map[K cmp.Ordered, V any] struct {
	header section.DataTypeHeader
	keys   converter.Converter[[]K]
	values converter.Converter[[]V]
}

// NewMap returns a Map over the given key and value array converters.
func NewMap[K cmp.Ordered, V any](keys converter.Converter[[]K], values converter.Converter[[]V], opts ...Option) (*Map[K, V], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	h := shape.Map(elementSlot(keys.Header()), elementSlot(values.Header())).Header
	if h.VersionAndFlags, err = section.NewVersionAndFlags(cfg.version); err != nil {
		return nil, err
	}

	return &Map[K, V]{header: h, keys: keys, values: values}, nil
}

// NewMapOf returns a Map whose keys and values use Codec with the same opts.
func NewMapOf[K cmp.Ordered, V any](opts ...Option) (*Map[K, V], error) {
	keys, err := New[K](opts...)
	if err != nil {
		return nil, err
	}
	values, err := New[V](opts...)
	if err != nil {
		return nil, err
	}

	return NewMap[K, V](keys, values, opts...)
}

// elementSlot recovers the element shape from an array header.
func elementSlot(h section.DataTypeHeader) shape.Info {
	if h.TypeEnum() == format.TypeArray {
		return shape.Info{Header: section.DataTypeHeader{TEOFS: h.TEOFS1}}
	}

	return shape.Info{Header: h.Shape()}
}

func (c *Map[K, V]) Header() section.DataTypeHeader { return c.header }
func (c *Map[K, V]) FixedSize() int                 { return -1 }

type mapEntry[K cmp.Ordered, V any] struct {
	key   K
	value V
}

// split returns the keys in cmp.Compare order with their values. Entries are taken
// from range, so keys that never compare equal to themselves (NaN) keep their values.
func (c *Map[K, V]) split(m map[K]V) ([]K, []V) {
	entries := make([]mapEntry[K, V], 0, len(m))
	for k, v := range m {
		entries = append(entries, mapEntry[K, V]{key: k, value: v})
	}
	slices.SortFunc(entries, func(a, b mapEntry[K, V]) int {
		return cmp.Compare(a.key, b.key)
	})

	keys := make([]K, len(entries))
	values := make([]V, len(entries))
	for i, e := range entries {
		keys[i] = e.key
		values[i] = e.value
	}

	return keys, values
}

func (c *Map[K, V]) SizeOf(m map[K]V) (int, *converter.Payload, error) {
	keys, values := c.split(m)

	nk, pk, err := c.keys.SizeOf(keys)
	if err != nil {
		return 0, nil, err
	}
	nv, pv, err := c.values.SizeOf(values)
	if err != nil {
		pk.Release()
		return 0, nil, err
	}

	p := converter.NewCompositePayload([]*converter.Payload{pk, pv}, []int{nk, nv})
	total, err := converter.FramedSize(nk + nv)
	if err != nil {
		p.Release()
		return 0, nil, err
	}

	return total, p, nil
}

func (c *Map[K, V]) Write(m map[K]V, dst []byte, p *converter.Payload) (int, error) {
	if p == nil {
		var err error
		if _, p, err = c.SizeOf(m); err != nil {
			return 0, err
		}
		defer p.Release()
	}

	keys, values := c.split(m)
	pk, nk := p.Part(0)
	pv, nv := p.Part(1)

	payload, err := converter.BeginFrame(dst, c.header, nk+nv)
	if err != nil {
		return 0, err
	}

	if _, err := c.keys.Write(keys, payload[:nk], pk); err != nil {
		return 0, err
	}
	if _, err := c.values.Write(values, payload[nk:], pv); err != nil {
		return 0, err
	}

	return section.PrefixedOverhead + nk + nv, nil
}

func (c *Map[K, V]) Read(src []byte) (map[K]V, int, error) {
	f, err := converter.OpenFrame(src, c.header)
	if err != nil {
		return nil, 0, err
	}

	keys, nk, err := c.keys.Read(f.Payload)
	if err != nil {
		return nil, 0, err
	}
	values, nv, err := c.values.Read(f.Payload[nk:])
	if err != nil {
		return nil, 0, err
	}

	if nk+nv != len(f.Payload) {
		return nil, 0, errs.Formatf(errs.ErrInvalidLength, "map arrays use %d of %d bytes", nk+nv, len(f.Payload))
	}
	if len(keys) != len(values) {
		return nil, 0, errs.Formatf(errs.ErrInvalidLength, "%d keys, %d values", len(keys), len(values))
	}

	m := make(map[K]V, len(keys))
	for i, k := range keys {
		m[k] = values[i]
	}
	if len(m) != len(keys) {
		return nil, 0, errs.Formatf(errs.ErrCorruptedBlock, "duplicate map keys")
	}

	return m, f.Size, nil
}

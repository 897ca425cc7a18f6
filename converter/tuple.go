package converter

import (
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/shape"
	"github.com/arloliu/typebin/types"
)

// Tuple2 converts pairs whose members have their own converters. Both members are
// written back to back with their own headers inside one frame:
//
//	[length:int32][Tuple2 header][first][second]
//
// Pairs of blittable members are better served by NewBlittable, which drops the
// member headers.
type Tuple2[A, B any] struct {
	header section.DataTypeHeader
	first  Converter[A]
	second Converter[B]
}

// NewTuple2 returns a pair converter built from the member converters.
func NewTuple2[A, B any](first Converter[A], second Converter[B], opts ...Option) (*Tuple2[A, B], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	info := shape.Tuple2(
		shape.Info{Header: first.Header().Shape()},
		shape.Info{Header: second.Header().Shape()},
	)

	return &Tuple2[A, B]{header: cfg.header(info.Header), first: first, second: second}, nil
}

func (c *Tuple2[A, B]) Header() section.DataTypeHeader { return c.header }
func (c *Tuple2[A, B]) FixedSize() int                 { return -1 }

func (c *Tuple2[A, B]) SizeOf(v types.Tuple2[A, B]) (int, *Payload, error) {
	na, pa, err := c.first.SizeOf(v.First)
	if err != nil {
		return 0, nil, err
	}

	nb, pb, err := c.second.SizeOf(v.Second)
	if err != nil {
		pa.Release()
		return 0, nil, err
	}

	n, err := FramedSize(na + nb)
	if err != nil {
		pa.Release()
		pb.Release()

		return 0, nil, err
	}

	return n, NewCompositePayload([]*Payload{pa, pb}, []int{na, nb}), nil
}

func (c *Tuple2[A, B]) Write(v types.Tuple2[A, B], dst []byte, p *Payload) (int, error) {
	if p == nil {
		var err error
		if _, p, err = c.SizeOf(v); err != nil {
			return 0, err
		}
		defer p.Release()
	}

	pa, na := p.Part(0)
	pb, nb := p.Part(1)

	payload, err := BeginFrame(dst, c.header, na+nb)
	if err != nil {
		return 0, err
	}

	if _, err := c.first.Write(v.First, payload[:na], pa); err != nil {
		return 0, err
	}
	if _, err := c.second.Write(v.Second, payload[na:], pb); err != nil {
		return 0, err
	}

	return section.PrefixedOverhead + na + nb, nil
}

func (c *Tuple2[A, B]) Read(src []byte) (types.Tuple2[A, B], int, error) {
	var zero types.Tuple2[A, B]

	f, err := OpenFrame(src, c.header)
	if err != nil {
		return zero, 0, err
	}

	a, na, err := c.first.Read(f.Payload)
	if err != nil {
		return zero, 0, err
	}

	b, nb, err := c.second.Read(f.Payload[na:])
	if err != nil {
		return zero, 0, err
	}

	if na+nb != len(f.Payload) {
		return zero, 0, errs.Formatf(errs.ErrInvalidLength, "pair members use %d of %d bytes", na+nb, len(f.Payload))
	}

	return types.NewTuple2(a, b), f.Size, nil
}

package types

import (
	"github.com/arloliu/typebin/element"
	"github.com/arloliu/typebin/shape"
)

// Tuple2 is a pair of values written as TypeTuple2 with both member types in the
// auxiliary slots. A pair of blittable members is itself blittable and may be stored
// in compressed arrays.
type Tuple2[A, B any] struct {
	First  A
	Second B
}

// NewTuple2 returns the pair (a, b).
func NewTuple2[A, B any](a A, b B) Tuple2[A, B] {
	return Tuple2[A, B]{First: a, Second: b}
}

// TypeShape implements shape.Provider.
func (Tuple2[A, B]) TypeShape() shape.Info {
	a, err := shape.Of[A]()
	if err != nil {
		return shape.JSON()
	}
	b, err := shape.Of[B]()
	if err != nil {
		return shape.JSON()
	}

	return shape.Tuple2(a, b)
}

// ElementDescriptor implements element.Describer. Members are laid out back to back
// without padding.
func (Tuple2[A, B]) ElementDescriptor() (*element.Descriptor[Tuple2[A, B]], error) {
	da, err := element.For[A]()
	if err != nil {
		return nil, err
	}
	db, err := element.For[B]()
	if err != nil {
		return nil, err
	}

	info := shape.Tuple2(da.Shape, db.Shape)
	if !da.IsBlittable() || !db.IsBlittable() {
		return &element.Descriptor[Tuple2[A, B]]{Shape: info, Size: -1}, nil
	}

	split := da.Size

	return &element.Descriptor[Tuple2[A, B]]{
		Shape: info,
		Size:  da.Size + db.Size,
		Put: func(dst []byte, v Tuple2[A, B]) {
			da.Put(dst, v.First)
			db.Put(dst[split:], v.Second)
		},
		Get: func(src []byte) Tuple2[A, B] {
			return Tuple2[A, B]{First: da.Get(src), Second: db.Get(src[split:])}
		},
	}, nil
}

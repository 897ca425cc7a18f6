package converter

import (
	"bytes"

	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/section"
	"github.com/arloliu/typebin/shape"
)

// String converts strings to TypeUtf8String payloads. The bytes are written as they
// are; no UTF-8 validation happens in either direction.
type String struct {
	header section.DataTypeHeader
}

// NewString returns the string converter.
func NewString(opts ...Option) (*String, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &String{header: cfg.header(shape.Variable(format.TypeUtf8String).Header)}, nil
}

func (c *String) Header() section.DataTypeHeader { return c.header }
func (c *String) FixedSize() int                 { return -1 }

func (c *String) SizeOf(v string) (int, *Payload, error) {
	n, err := FramedSize(len(v))
	return n, nil, err
}

func (c *String) Write(v string, dst []byte, _ *Payload) (int, error) {
	payload, err := BeginFrame(dst, c.header, len(v))
	if err != nil {
		return 0, err
	}
	copy(payload, v)

	return section.PrefixedOverhead + len(v), nil
}

func (c *String) Read(src []byte) (string, int, error) {
	f, err := OpenFrame(src, c.header)
	if err != nil {
		return "", 0, err
	}

	return string(f.Payload), f.Size, nil
}

// Bytes converts byte slices to TypeBinary payloads. Read returns a copy that does not
// alias the source buffer.
type Bytes struct {
	header section.DataTypeHeader
}

// NewBytes returns the byte slice converter.
func NewBytes(opts ...Option) (*Bytes, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Bytes{header: cfg.header(shape.Variable(format.TypeBinary).Header)}, nil
}

func (c *Bytes) Header() section.DataTypeHeader { return c.header }
func (c *Bytes) FixedSize() int                 { return -1 }

func (c *Bytes) SizeOf(v []byte) (int, *Payload, error) {
	n, err := FramedSize(len(v))
	return n, nil, err
}

func (c *Bytes) Write(v []byte, dst []byte, _ *Payload) (int, error) {
	payload, err := BeginFrame(dst, c.header, len(v))
	if err != nil {
		return 0, err
	}
	copy(payload, v)

	return section.PrefixedOverhead + len(v), nil
}

func (c *Bytes) Read(src []byte) ([]byte, int, error) {
	f, err := OpenFrame(src, c.header)
	if err != nil {
		return nil, 0, err
	}

	return bytes.Clone(f.Payload), f.Size, nil
}

package fallback

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/valyala/bytebufferpool"
)

type cborSerializer struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var cborInstance = newCBOR()

func newCBOR() Serializer {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}

	return &cborSerializer{enc: enc, dec: dec}
}

// CBOR returns the CBOR serializer. It uses core deterministic encoding, so equal
// values always produce equal bytes.
func CBOR() Serializer {
	return cborInstance
}

func (*cborSerializer) ID() uint8    { return IDCBOR }
func (*cborSerializer) Name() string { return "cbor" }

func (s *cborSerializer) Append(dst []byte, v any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := s.enc.NewEncoder(buf).Encode(v); err != nil {
		return dst, marshalError(s, v, err)
	}

	return append(dst, buf.B...), nil
}

func (s *cborSerializer) Unmarshal(data []byte, v any) error {
	if err := s.dec.Unmarshal(data, v); err != nil {
		return unmarshalError(s, v, err)
	}

	return nil
}

package fallback

import (
	"bytes"

	json "github.com/goccy/go-json"
	"github.com/valyala/bytebufferpool"
)

type jsonSerializer struct{}

var jsonInstance Serializer = jsonSerializer{}

// JSON returns the JSON serializer. Its output is plain UTF-8 JSON without a trailing
// newline and HTML escaping disabled.
func JSON() Serializer {
	return jsonInstance
}

func (jsonSerializer) ID() uint8    { return IDJSON }
func (jsonSerializer) Name() string { return "json" }

func (s jsonSerializer) Append(dst []byte, v any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return dst, marshalError(s, v, err)
	}

	return append(dst, bytes.TrimSuffix(buf.B, []byte{'\n'})...), nil
}

func (s jsonSerializer) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return unmarshalError(s, v, err)
	}

	return nil
}

// Package fallback provides the serializers used for opaque values, types that have no
// binary representation of their own.
//
// A fallback payload is framed like any variable-length value, but its header has the
// binary flag cleared, TypeJSON as the top-level shape and the serializer ID in the
// first auxiliary slot. Readers pick the serializer from the stored ID, so payloads
// written with any registered serializer can be read back regardless of the reader's
// own preference.
package fallback

import (
	"fmt"
	"sync"

	"github.com/arloliu/typebin/errs"
)

// Well-known serializer IDs.
const (
	IDJSON uint8 = 0
	IDCBOR uint8 = 1
)

// Serializer turns arbitrary values into self-contained bytes and back.
type Serializer interface {
	// ID identifies the serializer on the wire.
	ID() uint8
	// Name returns a human readable name.
	Name() string
	// Append serializes v and appends the result to dst.
	Append(dst []byte, v any) ([]byte, error)
	// Unmarshal decodes data into the value pointed to by v.
	Unmarshal(data []byte, v any) error
}

var registry sync.Map // uint8 -> Serializer

func init() {
	Register(JSON())
	Register(CBOR())
}

// Register installs s under its ID, replacing any previous serializer with that ID.
func Register(s Serializer) {
	registry.Store(s.ID(), s)
}

// Lookup returns the serializer registered under id. An unknown ID is reported as
// errs.ErrTypeMismatch since it can only come from the wire.
func Lookup(id uint8) (Serializer, error) {
	v, ok := registry.Load(id)
	if !ok {
		return nil, errs.Formatf(errs.ErrTypeMismatch, "unknown fallback serializer %d", id)
	}

	return v.(Serializer), nil //nolint: forcetypeassert
}

// Default returns the serializer used when none is configured.
func Default() Serializer {
	return JSON()
}

func marshalError(s Serializer, v any, err error) error {
	return fmt.Errorf("%s fallback: marshal %T: %w", s.Name(), v, err)
}

func unmarshalError(s Serializer, v any, err error) error {
	return errs.Formatf(errs.ErrCorruptedBlock, "%s fallback: unmarshal into %T: %v", s.Name(), v, err)
}

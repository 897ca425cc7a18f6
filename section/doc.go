// Package section defines the byte-level building blocks of a serialized value.
//
// Every value starts with a 4-byte DataTypeHeader. Fixed-size values are followed
// directly by their bytes; variable-length values carry an int32 length prefix in
// front of the header:
//
//	fixed:    ┌──────────────┬──────────────────────┐
//	          │ header (4)   │ value (FixedSize)    │
//	          └──────────────┴──────────────────────┘
//
//	variable: ┌──────────────┬──────────────┬────────────────────────┐
//	          │ length (4)   │ header (4)   │ payload (length - 8)   │
//	          └──────────────┴──────────────┴────────────────────────┘
//
// The length prefix counts itself, the header and the payload.
//
// # Header Format
//
//	Byte | Field           | Description
//	-----|-----------------|------------------------------------------
//	0    | VersionAndFlags | compression, shuffled, diffed, binary, version
//	1    | TEOFS           | top-level shape
//	2    | TEOFS1          | first auxiliary slot (element type, arity, ...)
//	3    | TEOFS2          | second auxiliary slot (depth, serializer id, ...)
//
// # Flag Format
//
//	Bits 0-1: compression method (None, GZip, LZ4, Zstd)
//	Bit 2:    shuffled
//	Bit 3:    diffed
//	Bit 4:    binary (0 = fallback serializer payload)
//	Bits 5-7: converter version
//
// A reader rejects a header whose version or shape differs from its own, and never
// reinterprets the bytes as another type.
//
// # Byte Order
//
// All multi-byte integers, including the length prefix and element bytes, are
// little-endian regardless of the host.
package section

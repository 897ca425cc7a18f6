package section

import "math"

// VersionAndFlags bit layout.
const (
	CompressionMask = 0x03 // Mask for compression method (bits 0-1)
	ShuffledMask    = 0x04 // Mask for shuffled flag (bit 2)
	DiffedMask      = 0x08 // Mask for delta-encoded flag (bit 3)
	BinaryMask      = 0x10 // Mask for binary payload flag (bit 4)
	VersionMask     = 0xE0 // Mask for converter version (bits 5-7)

	VersionShift = 5
	MaxVersion   = VersionMask >> VersionShift
)

// Offsets and sizes in a serialized value.
const (
	HeaderSize       = 4                             // fixed DataTypeHeader size in bytes
	LengthPrefixSize = 4                             // int32 length prefix of variable-length payloads
	PrefixedOverhead = LengthPrefixSize + HeaderSize // bytes in front of a variable-length payload
	MaxPayloadSize   = math.MaxInt32                 // largest length a prefix can describe

	flagsOffset = 0
	teofsOffset = 1
	slot1Offset = 2
	slot2Offset = 3
)

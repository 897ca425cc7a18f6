package format

type (
	CompressionType uint8
	DeltaType       uint8
)

// Compression methods. The values are stored in a 2-bit field of the header flags.
const (
	CompressionNone CompressionType = 0x0 // CompressionNone represents no compression.
	CompressionGZip CompressionType = 0x1 // CompressionGZip represents GZip (deflate) compression.
	CompressionLZ4  CompressionType = 0x2 // CompressionLZ4 represents LZ4 block compression.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents Zstandard compression.

	MaxCompressionType = CompressionZstd
)

// Delta strategies. A strategy is a property of an element type, not of a call.
const (
	DeltaNone         DeltaType = 0x0 // DeltaNone disables delta encoding.
	DeltaFromPrevious DeltaType = 0x1 // DeltaFromPrevious stores each element as a delta from its predecessor.
	DeltaFromFirst    DeltaType = 0x2 // DeltaFromFirst stores each element as a delta from element 0.
)

// IsValid reports whether c fits the 2-bit compression field.
func (c CompressionType) IsValid() bool {
	return c <= MaxCompressionType
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGZip:
		return "GZip"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

func (d DeltaType) String() string {
	switch d {
	case DeltaNone:
		return "None"
	case DeltaFromPrevious:
		return "FromPrevious"
	case DeltaFromFirst:
		return "FromFirst"
	default:
		return "Unknown"
	}
}

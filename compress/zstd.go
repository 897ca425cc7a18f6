package compress

import "github.com/arloliu/typebin/format"

// Zstd levels follow the zstd command line scale. 0 selects the library default.
const (
	ZstdMinLevel = 0
	ZstdMaxLevel = 22
)

// ZstdCompressor provides Zstandard compression.
//
// This compressor is designed for scenarios where compression ratio is more important
// than compression speed. The implementation is selected at build time: the pure Go
// encoder by default, libzstd through cgo with the gozstd build tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}

func (c ZstdCompressor) ValidateLevel(level int) error {
	if level < ZstdMinLevel || level > ZstdMaxLevel {
		return levelRangeError(c.Type(), level, ZstdMinLevel, ZstdMaxLevel)
	}

	return nil
}

// CompressBound mirrors ZSTD_COMPRESSBOUND plus room for the frame header.
func (c ZstdCompressor) CompressBound(n int) int {
	bound := n + n>>8 + 32
	if n < 128<<10 {
		bound += (128<<10 - n) >> 11
	}

	return bound
}

// settle makes sure the bytes of out end up in dst. Append-style APIs may return a
// fresh slice even when the result would have fit.
func settle(dst, out []byte) int {
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}

	return len(out)
}

// DecompressBound allows one 128KiB RLE block per 4 input bytes, the densest zstd
// encoding.
func (c ZstdCompressor) DecompressBound(n int) int {
	return expansionBound(n, 32<<10, 0)
}

package compress

import (
	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

// NoOpCompressor stores data unchanged.
//
// It backs format.CompressionNone so that every compression method, including none,
// goes through the same Codec interface.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// ValidateLevel accepts only level 0.
func (c NoOpCompressor) ValidateLevel(level int) error {
	if level != 0 {
		return levelRangeError(c.Type(), level, 0, 0)
	}

	return nil
}

// CompressBound returns n.
func (c NoOpCompressor) CompressBound(n int) int {
	return n
}

// DecompressBound returns n.
func (c NoOpCompressor) DecompressBound(n int) int {
	return n
}

// CompressTo copies src into dst.
func (c NoOpCompressor) CompressTo(dst, src []byte, _ int) (int, error) {
	if len(dst) < len(src) {
		return 0, errs.ErrInsufficientCapacity
	}

	return copy(dst, src), nil
}

// DecompressTo copies src into dst.
func (c NoOpCompressor) DecompressTo(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, errs.ErrInsufficientCapacity
	}

	return copy(dst, src), nil
}

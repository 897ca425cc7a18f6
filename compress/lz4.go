package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

// LZ4 levels: 0 is the fast block compressor, 1-9 select the high-compression variant.
const (
	LZ4MinLevel = 0
	LZ4MaxLevel = 9
)

var lz4HCLevels = [LZ4MaxLevel + 1]lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
//
// Returns:
//   - LZ4Compressor: New LZ4 compressor instance
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

func (c LZ4Compressor) ValidateLevel(level int) error {
	if level < LZ4MinLevel || level > LZ4MaxLevel {
		return levelRangeError(c.Type(), level, LZ4MinLevel, LZ4MaxLevel)
	}

	return nil
}

func (c LZ4Compressor) CompressBound(n int) int {
	return lz4.CompressBlockBound(n)
}

// DecompressBound uses the LZ4 block limit of 255 output bytes per input byte.
func (c LZ4Compressor) DecompressBound(n int) int {
	return expansionBound(n, 255, 16)
}

// CompressTo compresses src into dst as a raw LZ4 block.
//
// When dst is smaller than CompressBound and the data is incompressible, the lz4
// library reports zero bytes written; this is surfaced as errs.ErrInsufficientCapacity.
func (c LZ4Compressor) CompressTo(dst, src []byte, level int) (int, error) {
	if err := c.ValidateLevel(level); err != nil {
		return 0, err
	}
	if len(src) == 0 {
		return 0, nil
	}

	var (
		n   int
		err error
	)
	if level == 0 {
		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		n, err = lc.CompressBlock(src, dst)
		lz4CompressorPool.Put(lc)
	} else {
		hc := lz4.CompressorHC{Level: lz4HCLevels[level]}
		n, err = hc.CompressBlock(src, dst)
	}

	if err != nil {
		if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return 0, errs.ErrInsufficientCapacity
		}

		return 0, err
	}
	if n == 0 {
		return 0, errs.ErrInsufficientCapacity
	}

	return n, nil
}

// DecompressTo decompresses a raw LZ4 block into dst.
func (c LZ4Compressor) DecompressTo(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return 0, errs.ErrInsufficientCapacity
		}

		return 0, fmt.Errorf("%w: lz4: %w", errs.ErrCorruptedBlock, err)
	}

	return n, nil
}

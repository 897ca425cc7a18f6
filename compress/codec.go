package compress

import (
	"fmt"
	"math"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

// Compressor compresses into a caller-provided destination.
//
// The destination is never grown: when the output does not fit, CompressTo returns
// errs.ErrInsufficientCapacity and the bytes of dst are unspecified. Callers that must
// not leave partial output stage into a scratch buffer of CompressBound bytes first.
type Compressor interface {
	// CompressTo compresses src into dst and returns the number of bytes written.
	//
	// Level 0 selects the algorithm default; see each codec for the accepted range.
	CompressTo(dst, src []byte, level int) (int, error)

	// CompressBound returns the worst-case compressed size of n input bytes.
	CompressBound(n int) int
}

// Decompressor decompresses into a caller-provided destination.
type Decompressor interface {
	// DecompressTo decompresses src into dst and returns the number of bytes written.
	//
	// Error conditions:
	//   - errs.ErrInsufficientCapacity if the decompressed data does not fit dst
	//   - errs.ErrCorruptedBlock if src is not a valid stream for this algorithm
	DecompressTo(dst, src []byte) (int, error)

	// DecompressBound returns the largest output n compressed bytes can expand to.
	DecompressBound(n int) int
}

// Codec combines both directions and identifies the algorithm.
//
// Codec implementations are stateless values backed by pooled encoder state and are
// safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor

	// Type returns the compression method stored in the header flags.
	Type() format.CompressionType

	// ValidateLevel reports whether level is accepted by CompressTo.
	ValidateLevel(level int) error
}

var builtinCodecs = [...]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionGZip: NewGZipCompressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
	format.CompressionZstd: NewZstdCompressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if !compressionType.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownMethod, compressionType)
	}

	return builtinCodecs[compressionType], nil
}

// expansionBound returns n*ratio+overhead, saturating at math.MaxInt.
func expansionBound(n, ratio, overhead int) int {
	if n > (math.MaxInt-overhead)/ratio {
		return math.MaxInt
	}

	return n*ratio + overhead
}

func levelRangeError(c format.CompressionType, level, lo, hi int) error {
	return fmt.Errorf("%w: %s accepts %d..%d, got %d", errs.ErrInvalidLevel, c, lo, hi, level)
}

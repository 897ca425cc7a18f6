//go:build !gozstd || !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/typebin/errs"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd library is explicitly designed for decoder reuse:
// "The decoder has been designed to operate without allocations after a warmup.
// This means that you should store the decoder for best performance."
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1), // Single-threaded for predictable performance
			zstd.WithDecoderLowmem(false),  // Use more memory for better performance
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// zstdEncoderPools pools encoders per speed class; zstd.EncoderLevelFromZstd folds the
// 1-22 scale into these classes.
var zstdEncoderPools = map[zstd.EncoderLevel]*sync.Pool{}

func init() {
	for _, lvl := range []zstd.EncoderLevel{
		zstd.SpeedFastest, zstd.SpeedDefault, zstd.SpeedBetterCompression, zstd.SpeedBestCompression,
	} {
		encLevel := lvl
		zstdEncoderPools[encLevel] = &sync.Pool{
			New: func() any {
				encoder, err := zstd.NewWriter(nil,
					zstd.WithEncoderLevel(encLevel),
					zstd.WithEncoderCRC(false), // Disable CRC for performance
					zstd.WithEncoderConcurrency(1),
				)
				if err != nil {
					// This should never happen with valid options
					panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
				}
				return encoder
			},
		}
	}
}

func zstdEncoderLevel(level int) zstd.EncoderLevel {
	if level == 0 {
		return zstd.SpeedDefault
	}

	return zstd.EncoderLevelFromZstd(level)
}

// CompressTo compresses src into dst as a single zstd frame.
func (c ZstdCompressor) CompressTo(dst, src []byte, level int) (int, error) {
	if err := c.ValidateLevel(level); err != nil {
		return 0, err
	}

	pool := zstdEncoderPools[zstdEncoderLevel(level)]
	encoder, _ := pool.Get().(*zstd.Encoder)
	defer pool.Put(encoder)

	// The three-index slice keeps EncodeAll from writing past len(dst).
	out := encoder.EncodeAll(src, dst[:0:len(dst)])
	if len(out) > len(dst) {
		return 0, errs.ErrInsufficientCapacity
	}

	return settle(dst, out), nil
}

// DecompressTo decompresses a zstd frame into dst.
func (c ZstdCompressor) DecompressTo(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	// Get decoder from pool (reuses "warmed up" decoder)
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return 0, fmt.Errorf("%w: zstd: %w", errs.ErrCorruptedBlock, err)
	}
	if len(out) > len(dst) {
		return 0, errs.ErrInsufficientCapacity
	}

	return settle(dst, out), nil
}

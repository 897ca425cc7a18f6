//go:build gozstd && cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"

	"github.com/arloliu/typebin/errs"
)

// CompressTo compresses src into dst using libzstd.
func (c ZstdCompressor) CompressTo(dst, src []byte, level int) (int, error) {
	if err := c.ValidateLevel(level); err != nil {
		return 0, err
	}
	if level == 0 {
		level = gozstd.DefaultCompressionLevel
	}

	out := gozstd.CompressLevel(dst[:0:len(dst)], src, level)
	if len(out) > len(dst) {
		return 0, errs.ErrInsufficientCapacity
	}

	return settle(dst, out), nil
}

// DecompressTo decompresses a zstd frame into dst using libzstd.
func (c ZstdCompressor) DecompressTo(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	out, err := gozstd.Decompress(dst[:0:len(dst)], src)
	if err != nil {
		return 0, fmt.Errorf("%w: zstd: %w", errs.ErrCorruptedBlock, err)
	}
	if len(out) > len(dst) {
		return 0, errs.ErrInsufficientCapacity
	}

	return settle(dst, out), nil
}

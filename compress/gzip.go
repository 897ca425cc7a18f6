package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

// GZip levels: 0 selects gzip.DefaultCompression, 1-9 map directly to deflate levels.
const (
	GZipMinLevel = 0
	GZipMaxLevel = gzip.BestCompression
)

// gzipWriterPools holds one pool per level since a gzip.Writer keeps its level across Reset.
var gzipWriterPools [GZipMaxLevel + 1]sync.Pool

var gzipReaderPool sync.Pool

func init() {
	for lvl := range gzipWriterPools {
		gzLevel := lvl
		if gzLevel == 0 {
			gzLevel = gzip.DefaultCompression
		}
		gzipWriterPools[lvl].New = func() any {
			w, err := gzip.NewWriterLevel(io.Discard, gzLevel)
			if err != nil {
				// This should never happen with valid levels
				panic(fmt.Sprintf("failed to create gzip writer for pool: %v", err))
			}

			return w
		}
	}
}

// GZipCompressor provides deflate compression in a gzip container.
//
// GZip is the slowest of the supported methods and is mainly useful when the payload
// must be readable by generic tooling.
type GZipCompressor struct{}

var _ Codec = (*GZipCompressor)(nil)

// NewGZipCompressor creates a new GZip compressor.
func NewGZipCompressor() GZipCompressor {
	return GZipCompressor{}
}

func (c GZipCompressor) Type() format.CompressionType {
	return format.CompressionGZip
}

func (c GZipCompressor) ValidateLevel(level int) error {
	if level < GZipMinLevel || level > GZipMaxLevel {
		return levelRangeError(c.Type(), level, GZipMinLevel, GZipMaxLevel)
	}

	return nil
}

// CompressBound returns the worst case of deflate stored blocks (5 bytes per 16KiB)
// plus the gzip header and trailer.
func (c GZipCompressor) CompressBound(n int) int {
	return n + (n>>14+1)*5 + 32
}

// DecompressBound uses the deflate limit of 258 bytes per 2 bits, about 1032:1.
func (c GZipCompressor) DecompressBound(n int) int {
	return expansionBound(n, 1032, 0)
}

// CompressTo compresses src into dst using a pooled gzip.Writer.
func (c GZipCompressor) CompressTo(dst, src []byte, level int) (int, error) {
	if err := c.ValidateLevel(level); err != nil {
		return 0, err
	}

	pool := &gzipWriterPools[level]
	zw, _ := pool.Get().(*gzip.Writer)
	defer pool.Put(zw)

	w := &boundedWriter{buf: dst}
	zw.Reset(w)

	if _, err := zw.Write(src); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}

	return w.n, nil
}

// DecompressTo decompresses a single gzip member into dst.
func (c GZipCompressor) DecompressTo(dst, src []byte) (int, error) {
	zr, _ := gzipReaderPool.Get().(*gzip.Reader)
	if zr == nil {
		zr = new(gzip.Reader)
	}
	defer gzipReaderPool.Put(zr)

	if err := zr.Reset(bytes.NewReader(src)); err != nil {
		return 0, fmt.Errorf("%w: gzip: %w", errs.ErrCorruptedBlock, err)
	}
	zr.Multistream(false)

	n, err := io.ReadFull(zr, dst)
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
		return n, nil
	case err != nil:
		return n, fmt.Errorf("%w: gzip: %w", errs.ErrCorruptedBlock, err)
	}

	// dst is full; the stream must end here.
	var probe [1]byte
	m, err := zr.Read(probe[:])
	if m > 0 {
		return n, errs.ErrInsufficientCapacity
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: gzip: %w", errs.ErrCorruptedBlock, err)
	}

	return n, nil
}

// boundedWriter writes into a fixed slice and fails instead of growing.
type boundedWriter struct {
	buf []byte
	n   int
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.n {
		return 0, errs.ErrInsufficientCapacity
	}
	w.n += copy(w.buf[w.n:], p)

	return len(p), nil
}

// Package compress is the compression backend of the array codec.
//
// It offers four methods, matching the 2-bit compression field of the header flags:
//   - None: bytes are stored as-is
//   - GZip: deflate in a gzip container, levels 1-9
//   - LZ4: raw LZ4 blocks, fast compressor at level 0, high-compression at 1-9
//   - Zstd: single zstd frames, levels 1-22 on the zstd scale
//
// # Architecture
//
// All codecs write into caller-provided buffers and never grow them:
//
//	type Codec interface {
//	    CompressTo(dst, src []byte, level int) (int, error)
//	    DecompressTo(dst, src []byte) (int, error)
//	    CompressBound(n int) int
//	    Type() format.CompressionType
//	    ValidateLevel(level int) error
//	}
//
// A destination that is too small yields errs.ErrInsufficientCapacity, a malformed
// input yields errs.ErrCorruptedBlock. Encoder and decoder state is pooled, so the codec
// values are safe for concurrent use.
//
// # Blocks
//
// EncodeBlock wraps compressed bytes in a 12-byte self-describing header carrying the
// method, the element size, the shuffle flag and both sizes:
//
//	n, err := compress.EncodeBlock(dst, raw, compress.BlockOptions{
//	    Method:   format.CompressionLZ4,
//	    TypeSize: 8,
//	    Shuffle:  true,
//	})
//
//	info, err := compress.InspectBlock(dst[:n])  // sizes without decompressing
//	out := make([]byte, info.RawSize)
//	_, err = compress.DecodeBlock(out, dst[:n])
//
// # Shuffle
//
// Shuffle transposes the bytes of fixed-size elements so that byte 0 of every element
// comes first, then byte 1, and so on. For smoothly varying numbers the high-order bytes
// become long runs, which every method compresses far better than interleaved bytes.
//
// # Build Tags
//
// Zstd uses github.com/klauspost/compress/zstd by default. Building with -tags gozstd
// (and cgo enabled) switches to libzstd through github.com/valyala/gozstd.
package compress

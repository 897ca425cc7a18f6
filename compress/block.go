package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/ccoveille/go-safecast"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
	"github.com/arloliu/typebin/internal/pool"
	"github.com/arloliu/typebin/section"
)

// Block layout, all integers little-endian:
//
//	byte 0:    block format version
//	byte 1:    compression method
//	byte 2:    element type size used for shuffling (1-255)
//	byte 3:    block flags, bit 0 = shuffled
//	byte 4-7:  raw (uncompressed) size
//	byte 8-11: compressed size, excluding this header
//	byte 12-:  compressed data
const (
	BlockHeaderSize = 12
	BlockVersion    = 1
	MaxTypeSize     = 255

	blockFlagShuffled = 0x01
)

// BlockInfo is the metadata embedded in a compressed block.
type BlockInfo struct {
	Method         format.CompressionType
	TypeSize       int
	Shuffled       bool
	RawSize        int
	CompressedSize int
	// BlockSize is the total number of block bytes, header included.
	BlockSize int
}

// BlockOptions selects how EncodeBlock transforms its input.
type BlockOptions struct {
	Method   format.CompressionType
	Level    int
	TypeSize int
	Shuffle  bool
}

// BlockBound returns the worst-case EncodeBlock output size for n raw bytes.
func BlockBound(method format.CompressionType, n int) (int, error) {
	codec, err := GetCodec(method)
	if err != nil {
		return 0, err
	}

	return BlockHeaderSize + codec.CompressBound(n), nil
}

// EncodeBlock shuffles (optionally) and compresses src into dst as a self-describing block.
//
// Returns:
//   - int: number of bytes written to dst
//   - error: errs.ErrInsufficientCapacity if the block does not fit dst, or a
//     configuration error for invalid method, level or type size
func EncodeBlock(dst, src []byte, opts BlockOptions) (int, error) {
	codec, err := GetCodec(opts.Method)
	if err != nil {
		return 0, err
	}
	if opts.TypeSize < 1 || opts.TypeSize > MaxTypeSize {
		return 0, fmt.Errorf("%w: block type size %d", errs.ErrInvalidTypeSize, opts.TypeSize)
	}

	rawSize, err := safecast.ToUint32(len(src))
	if err != nil {
		return 0, fmt.Errorf("%w: %d bytes", errs.ErrPayloadTooLarge, len(src))
	}
	if len(dst) < BlockHeaderSize {
		return 0, errs.ErrInsufficientCapacity
	}

	shuffled := opts.Shuffle && opts.TypeSize > 1 && len(src) >= 2*opts.TypeSize
	input := src
	if shuffled {
		scratch := pool.Rent(len(src))
		defer pool.Return(scratch)

		Shuffle(opts.TypeSize, src, scratch.B)
		input = scratch.B
	}

	n, err := codec.CompressTo(dst[BlockHeaderSize:], input, opts.Level)
	if err != nil {
		return 0, err
	}

	var flags byte
	if shuffled {
		flags |= blockFlagShuffled
	}

	dst[0] = BlockVersion
	dst[1] = byte(opts.Method)
	dst[2] = byte(opts.TypeSize)
	dst[3] = flags
	binary.LittleEndian.PutUint32(dst[4:8], rawSize)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(n)) //nolint: gosec

	return BlockHeaderSize + n, nil
}

// InspectBlock parses and validates the header of a compressed block without
// decompressing it. Trailing bytes after BlockSize are ignored.
func InspectBlock(block []byte) (BlockInfo, error) {
	if len(block) < BlockHeaderSize {
		return BlockInfo{}, errs.Formatf(errs.ErrCorruptedBlock, "block shorter than header")
	}
	if block[0] != BlockVersion {
		return BlockInfo{}, errs.Formatf(errs.ErrCorruptedBlock, "block version %d", block[0])
	}

	method := format.CompressionType(block[1])
	if !method.IsValid() {
		return BlockInfo{}, errs.Formatf(errs.ErrInvalidCompression, "method %d", block[1])
	}
	if block[2] == 0 || block[3]&^blockFlagShuffled != 0 {
		return BlockInfo{}, errs.Formatf(errs.ErrCorruptedBlock, "type size %d, flags %#x", block[2], block[3])
	}

	info := BlockInfo{
		Method:         method,
		TypeSize:       int(block[2]),
		Shuffled:       block[3]&blockFlagShuffled != 0,
		RawSize:        int(binary.LittleEndian.Uint32(block[4:8])),
		CompressedSize: int(binary.LittleEndian.Uint32(block[8:12])),
	}
	info.BlockSize = BlockHeaderSize + info.CompressedSize

	if info.CompressedSize < 0 || info.BlockSize > len(block) {
		return BlockInfo{}, errs.Formatf(errs.ErrCorruptedBlock,
			"compressed size %d exceeds available %d", info.CompressedSize, len(block)-BlockHeaderSize)
	}
	if err := checkRawSize(info); err != nil {
		return BlockInfo{}, err
	}

	return info, nil
}

// checkRawSize rejects raw sizes the compressed data cannot expand to, so that no
// buffer is sized from an implausible header.
func checkRawSize(info BlockInfo) error {
	if info.RawSize < 0 || info.RawSize > section.MaxPayloadSize {
		return errs.Formatf(errs.ErrCorruptedBlock, "raw size %d out of range", info.RawSize)
	}

	codec, err := GetCodec(info.Method)
	if err != nil {
		return err
	}
	if info.Method == format.CompressionNone && info.RawSize != info.CompressedSize {
		return errs.Formatf(errs.ErrCorruptedBlock,
			"stored block with raw size %d, data size %d", info.RawSize, info.CompressedSize)
	}
	if bound := codec.DecompressBound(info.CompressedSize); info.RawSize > bound {
		return errs.Formatf(errs.ErrCorruptedBlock,
			"raw size %d exceeds %s bound %d for %d compressed bytes", info.RawSize, info.Method, bound, info.CompressedSize)
	}

	return nil
}

// DecodeBlock decompresses (and unshuffles) a block produced by EncodeBlock into dst.
//
// Returns:
//   - int: number of raw bytes written, always BlockInfo.RawSize on success
//   - error: errs.ErrInsufficientCapacity if dst is shorter than the raw size,
//     errs.ErrCorruptedBlock (an ErrFormat) if the block is malformed
func DecodeBlock(dst, block []byte) (int, error) {
	info, err := InspectBlock(block)
	if err != nil {
		return 0, err
	}
	if len(dst) < info.RawSize {
		return 0, errs.ErrInsufficientCapacity
	}

	codec, err := GetCodec(info.Method)
	if err != nil {
		return 0, err
	}

	data := block[BlockHeaderSize:info.BlockSize]
	out := dst[:info.RawSize]

	target := out
	if info.Shuffled {
		scratch := pool.Rent(info.RawSize)
		defer pool.Return(scratch)
		target = scratch.B
	}

	n, err := codec.DecompressTo(target, data)
	if err != nil {
		if errs.IsCapacity(err) {
			// target is exactly RawSize, so overflowing it means the header lies.
			return 0, errs.Formatf(errs.ErrCorruptedBlock, "data exceeds raw size %d", info.RawSize)
		}

		return 0, err
	}
	if n != info.RawSize {
		return 0, errs.Formatf(errs.ErrCorruptedBlock, "decoded %d bytes, header says %d", n, info.RawSize)
	}

	if info.Shuffled {
		Unshuffle(info.TypeSize, target, out)
	}

	return n, nil
}

package pool

import (
	"math/bits"
	"sync"
)

// Size classes are powers of two from 64B to 16MiB. Larger buffers are allocated
// on demand and never retained.
const (
	MinClassShift = 6
	MaxClassShift = 24
	MinClassSize  = 1 << MinClassShift
	MaxClassSize  = 1 << MaxClassShift

	numClasses = MaxClassShift - MinClassShift + 1
)

type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// ByteBufferPool rents byte buffers by minimum size.
//
// Each power-of-two size class is backed by its own sync.Pool, which keeps per-P
// caches with a shared victim list, so concurrent Rent/Return calls need no locking.
type ByteBufferPool struct {
	classes [numClasses]sync.Pool
}

// NewByteBufferPool creates an empty pool.
func NewByteBufferPool() *ByteBufferPool {
	p := &ByteBufferPool{}
	for i := range p.classes {
		size := 1 << (i + MinClassShift)
		p.classes[i].New = func() any {
			return &ByteBuffer{B: make([]byte, 0, size)}
		}
	}

	return p
}

// ClassSize returns the capacity of buffers rented for minSize bytes: the next
// power of two, at least MinClassSize.
func ClassSize(minSize int) int {
	if minSize <= MinClassSize {
		return MinClassSize
	}

	return 1 << bits.Len(uint(minSize-1))
}

func classIndex(capacity int) int {
	return bits.Len(uint(capacity-1)) - MinClassShift
}

// Rent returns a buffer with len(B) == minSize and a power-of-two capacity.
// The contents of B are undefined.
func (p *ByteBufferPool) Rent(minSize int) *ByteBuffer {
	if minSize < 0 {
		panic("Rent: negative size")
	}

	size := ClassSize(minSize)
	if size > MaxClassSize {
		return &ByteBuffer{B: make([]byte, minSize, size)}
	}

	bb, _ := p.classes[classIndex(size)].Get().(*ByteBuffer)
	bb.B = bb.B[:minSize]

	return bb
}

// Return gives bb back to the pool. Buffers whose capacity is not an exact class
// size are dropped. Return of nil is a no-op.
func (p *ByteBufferPool) Return(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	c := cap(bb.B)
	if c < MinClassSize || c > MaxClassSize || c&(c-1) != 0 {
		return
	}

	bb.B = bb.B[:0]
	p.classes[classIndex(c)].Put(bb)
}

var defaultPool = NewByteBufferPool()

// Rent rents a buffer from the default pool.
func Rent(minSize int) *ByteBuffer {
	return defaultPool.Rent(minSize)
}

// Return returns a buffer to the default pool.
func Return(bb *ByteBuffer) {
	defaultPool.Return(bb)
}

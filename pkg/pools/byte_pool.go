package pools

import (
	"sync"
)

// Size classes follow typical token and canonical-text sizes: a handful of
// blocks, a busy editor session, and pipelines past the advisory URL limit.
var sizeClasses = [...]int{512, 2048, 8192, 32768}

// MaxPooled is the largest capacity kept for reuse. Bigger buffers are
// allocated and dropped.
const MaxPooled = 32768

// BytePool hands out byte slices from per-size-class sync.Pools.
type BytePool struct {
	classes [len(sizeClasses)]sync.Pool
}

// NewBytePool creates an empty pool.
func NewBytePool() *BytePool {
	p := &BytePool{}
	for i, size := range sizeClasses {
		p.classes[i].New = func() any {
			b := make([]byte, 0, size)
			return &b
		}
	}
	return p
}

// classFor returns the index of the smallest class holding size, or -1.
func classFor(size int) int {
	for i, c := range sizeClasses {
		if size <= c {
			return i
		}
	}
	return -1
}

// Get returns a zero-length slice with at least size capacity.
func (p *BytePool) Get(size int) []byte {
	i := classFor(size)
	if i < 0 {
		return make([]byte, 0, size)
	}

	bp, ok := p.classes[i].Get().(*[]byte)
	if !ok || cap(*bp) < size {
		return make([]byte, 0, size)
	}
	return (*bp)[:0]
}

// GetSized returns a slice of exactly size length.
func (p *BytePool) GetSized(size int) []byte {
	return p.Get(size)[:size]
}

// Put returns b for reuse. A slice is filed under the largest class its
// capacity can serve; slices smaller than every class or larger than
// MaxPooled are dropped.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	if c > MaxPooled {
		return
	}

	for i := len(sizeClasses) - 1; i >= 0; i-- {
		if c >= sizeClasses[i] {
			b = b[:0]
			p.classes[i].Put(&b)
			return
		}
	}
}

var defaultBytePool = NewBytePool()

// GetBytes returns a slice from the default pool.
func GetBytes(size int) []byte {
	return defaultBytePool.Get(size)
}

// GetBytesSized returns a slice of exactly size length from the default pool.
func GetBytesSized(size int) []byte {
	return defaultBytePool.GetSized(size)
}

// PutBytes returns a slice to the default pool.
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}

// Package recycler implements the memory recycler: a pool of reusable
// segment buffers used when a type's data is not mmap-backed (ON_HEAP
// memory mode). The recycler holds two generations of buffers. Borrow and
// Return work on the current generation only; callers swap generations
// after each type application, which retires the current generation: its
// buffers are no longer handed out and are dropped on the following Swap.
package recycler

import (
	"sync"

	"github.com/c2h5oh/datasize"
)

// Recycler is a simple size-classed buffer pool bounded by a total byte
// budget. It is not a sync.Pool: sync.Pool provides no size bucketing and
// can be swept by the garbage collector at any time, which would defeat
// the generation-window guarantee the engine relies on between type
// applications.
type Recycler struct {
	mu sync.Mutex

	maxBytes datasize.ByteSize
	used     datasize.ByteSize

	// generations[0] is the current generation being borrowed from and
	// returned to; generations[1] is the previous generation, retired by
	// Swap and fully freed on the next Swap.
	generations [2]map[int][][]byte
}

// New creates a Recycler bounded to maxBytes across both generations
// combined.
func New(maxBytes datasize.ByteSize) *Recycler {
	return &Recycler{
		maxBytes:    maxBytes,
		generations: [2]map[int][][]byte{make(map[int][][]byte), make(map[int][][]byte)},
	}
}

// Borrow returns a buffer of exactly size bytes, reusing one from the
// current generation's free list if available, allocating a fresh one
// otherwise.
func (r *Recycler) Borrow(size int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	free := r.generations[0][size]
	if n := len(free); n > 0 {
		buf := free[n-1]
		r.generations[0][size] = free[:n-1]
		r.used -= datasize.ByteSize(len(buf))
		return buf
	}

	return make([]byte, size)
}

// Return releases buf back to the current generation's free list for
// reuse by a later Borrow of the same size, subject to the recycler's
// byte budget; buffers beyond the budget are simply dropped (and left to
// the garbage collector) rather than retained.
func (r *Recycler) Return(buf []byte) {
	if len(buf) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.used+datasize.ByteSize(len(buf)) > r.maxBytes {
		return
	}

	size := len(buf)
	r.generations[0][size] = append(r.generations[0][size], buf)
	r.used += datasize.ByteSize(len(buf))
}

// Swap retires the current generation to generation-1 and starts a fresh,
// empty current generation. The generation retired by the previous Swap
// is dropped here and its bytes leave the budget. A buffer returned
// before a Swap is therefore never handed out again after it: it is kept
// for one more Swap and then left to the garbage collector.
func (r *Recycler) Swap() {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := r.generations[1]
	for _, bufs := range dropped {
		for _, b := range bufs {
			r.used -= datasize.ByteSize(len(b))
		}
	}

	r.generations[1] = r.generations[0]
	r.generations[0] = make(map[int][][]byte)
}

// InUse reports the approximate number of bytes currently retained across
// both generations, for diagnostics.
func (r *Recycler) InUse() datasize.ByteSize {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used
}

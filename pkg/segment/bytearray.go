// Package segment implements the segmented byte and long array
// abstractions: a logical, index-addressable array composed of fixed-size
// segments, each a power-of-two-length view into either a memory-mapped
// blob region or a recycler-owned buffer. No segment is ever resized or
// copied once appended; the segment vector only grows.
package segment

import (
	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/internal/recycler"
)

// ByteArray is a logical sequence of bytes indexed by a 64-bit offset,
// composed of an expandable, append-only vector of fixed-size segments.
// Index decomposition: segment = index >> lengthBits, offset = index &
// (segmentLength - 1).
type ByteArray struct {
	lengthBits uint8
	length     int64 // 1 << lengthBits
	mask       int64 // length - 1

	segments [][]byte

	// handle keeps a memory-mapped region alive for as long as this array
	// references slices of it. nil when the array is recycler-backed
	// (ON_HEAP mode).
	handle *blob.Handle

	// pool is the recycler this array borrowed buffers from, nil when
	// mmap-backed.
	pool *recycler.Recycler

	// logicalLength is the number of valid bytes populated via ReadFrom;
	// Get rejects indices at or past it.
	logicalLength int64
}

// NewByteArray creates an empty ByteArray using 2^lengthBits-byte segments.
func NewByteArray(lengthBits uint8) *ByteArray {
	return &ByteArray{
		lengthBits: lengthBits,
		length:     1 << lengthBits,
		mask:       (1 << lengthBits) - 1,
	}
}

// ReadFromMapped populates the array from the blob's memory mapping
// beginning at its current logical position, advancing that position by
// exactly length. The array acquires its own reference on the blob's
// mapping handle, so it remains valid after the Blob itself is closed.
func (a *ByteArray) ReadFromMapped(b *blob.Blob, length int64) error {
	if length < 0 {
		return hollowerrors.NewMalformedBlobError(nil, "negative byte-array length")
	}

	raw, err := b.MapRemaining(length)
	if err != nil {
		return err
	}

	a.handle = b.Handle().Acquire()
	a.logicalLength = length
	a.growSegments(numSegments(length, a.length))

	for i := int64(0); i < length; i += a.length {
		end := i + a.length
		if end > length {
			end = length
		}
		a.segments[i>>a.lengthBits] = raw[i:end]
	}

	return nil
}

// ReadFromRecycler populates the array by copying length bytes read
// sequentially from b into buffers borrowed from pool, used in ON_HEAP
// memory mode where the array must not hold a reference into the blob's
// own mapping.
func (a *ByteArray) ReadFromRecycler(b *blob.Blob, length int64, pool *recycler.Recycler) error {
	if length < 0 {
		return hollowerrors.NewMalformedBlobError(nil, "negative byte-array length")
	}

	a.pool = pool
	a.logicalLength = length
	n := numSegments(length, a.length)
	a.growSegments(n)

	remaining := length
	for i := int64(0); i < n; i++ {
		segLen := a.length
		if remaining < segLen {
			segLen = remaining
		}
		buf := pool.Borrow(int(a.length))[:segLen]
		if _, err := readFull(b, buf); err != nil {
			return err
		}
		a.segments[i] = buf
		remaining -= segLen
	}

	return nil
}

func readFull(b *blob.Blob, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := b.Read(buf[total:])
		total += n
		if err != nil {
			return total, hollowerrors.NewMalformedBlobError(err, "truncated byte-array payload").
				WithByteOffset(b.Position())
		}
	}
	return total, nil
}

// Get returns the byte at the given logical index.
func (a *ByteArray) Get(index int64) (byte, error) {
	if index < 0 || index >= a.logicalLength {
		return 0, hollowerrors.NewOutOfRangeError("byte-array index out of range", index, a.logicalLength)
	}

	seg := index >> a.lengthBits
	off := index & a.mask
	if seg >= int64(len(a.segments)) || a.segments[seg] == nil {
		return 0, hollowerrors.NewOutOfRangeError("byte-array segment is unpopulated", index, a.logicalLength)
	}
	return a.segments[seg][off], nil
}

// Len returns the number of logical bytes populated by ReadFrom*.
func (a *ByteArray) Len() int64 { return a.logicalLength }

// Destroy releases the array's claim on its backing memory: the mmap
// handle reference (if mmap-backed) or the recycler buffers (if
// recycler-backed). Segments are cleared so a stray Get fails loudly
// instead of reading freed memory.
func (a *ByteArray) Destroy() error {
	if a.pool != nil {
		for _, seg := range a.segments {
			if seg != nil {
				a.pool.Return(seg[:cap(seg)])
			}
		}
		a.pool = nil
	}

	var err error
	if a.handle != nil {
		err = a.handle.Release()
		a.handle = nil
	}

	a.segments = nil
	a.logicalLength = 0
	return err
}

// growSegments ensures the segment vector has capacity for at least n
// entries, growing by 3/2 each time it must reallocate. Existing entries
// (views) are copied into the new vector, never resized or recreated.
func (a *ByteArray) growSegments(n int64) {
	if int64(len(a.segments)) >= n {
		return
	}
	newCap := int64(len(a.segments))
	if newCap == 0 {
		newCap = n
	}
	for newCap < n {
		newCap = newCap + newCap/2 + 1
	}
	grown := make([][]byte, n, newCap)
	copy(grown, a.segments)
	a.segments = grown
}

func numSegments(length, segmentLength int64) int64 {
	if length == 0 {
		return 0
	}
	return (length + segmentLength - 1) / segmentLength
}

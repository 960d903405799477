// Package blob provides the uniform random-access + sequential view over a
// file that every other component in this module reads through: a file
// plus a logical read position, and a memory-mapped region covering the
// bytes beyond that position so that segmented arrays can reference slices
// of it without copying.
package blob

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
)

// Identity names a blob for the purposes of the failed-transition tracker
// and the update plan: a stable string a consumer can log, compare, and
// mark as known-failing.
type Identity string

// Kind distinguishes a full snapshot from an incremental delta, mirroring
// the two blob wire formats.
type Kind int

const (
	KindSnapshot Kind = iota
	KindDelta
)

// Handle is a refcounted owner of a memory mapping. A Blob creates one
// Handle at Open time holding the first reference; every segmented array
// built from MapRemaining acquires its own reference via Acquire, and
// releases it independently via Release when the array is destroyed. The
// mapping is only unmapped once the last reference is released, so a
// segmented array outlives the Blob object it was read from without
// invalidating its slices, matching the "array co-owns the mapped region"
// ownership rule.
type Handle struct {
	mm   mmap.MMap
	file *os.File
	refs atomic.Int32
}

// Acquire increments the reference count and returns the same Handle, for
// callers that want to keep the mapping alive independently of the Blob
// that produced it.
func (h *Handle) Acquire() *Handle {
	h.refs.Add(1)
	return h
}

// Release decrements the reference count, unmapping and closing the
// underlying file once no owner remains.
func (h *Handle) Release() error {
	if h.refs.Add(-1) > 0 {
		return nil
	}

	var mmErr error
	if len(h.mm) > 0 {
		mmErr = h.mm.Unmap()
	}
	var fErr error
	if h.file != nil {
		fErr = h.file.Close()
	}
	if mmErr != nil {
		return hollowerrors.NewBlobError(mmErr, hollowerrors.ErrorCodeIO, "failed to unmap blob file")
	}
	if fErr != nil {
		return hollowerrors.NewBlobError(fErr, hollowerrors.ErrorCodeIO, "failed to close blob file")
	}
	return nil
}

// Bytes exposes the raw mapping for segment construction.
func (h *Handle) Bytes() mmap.MMap { return h.mm }

// Blob is a file positioned for sequential reads, backed by a single
// memory mapping of the entire file. Unlike a plain *os.File, repeated
// reads of byte ranges do not copy: every segmented array constructed
// from a Blob holds a slice of the same mapping, kept alive by a shared
// Handle.
type Blob struct {
	identity Identity
	kind     Kind
	handle   *Handle

	// pos is the logical read position within handle.mm. ReadByte/Read/
	// MapRemaining/Skip all operate relative to pos.
	pos int64
}

// Open memory-maps the file at path in its entirety (read-only) and
// returns a Blob positioned at offset 0.
func Open(path string, identity Identity, kind Kind) (*Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hollowerrors.NewBlobError(err, hollowerrors.ErrorCodeIO, "failed to open blob file").
			WithDetail("path", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, hollowerrors.NewBlobError(err, hollowerrors.ErrorCodeIO, "failed to stat blob file").
			WithDetail("path", path)
	}

	if info.Size() == 0 {
		// mmap.Map refuses to map a zero-length file; an empty blob is
		// still a legal (if degenerate) input, so fall back to an empty
		// mapping rather than erroring.
		h := &Handle{file: f, mm: mmap.MMap{}}
		h.refs.Store(1)
		return &Blob{identity: identity, kind: kind, handle: h}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, hollowerrors.NewBlobError(err, hollowerrors.ErrorCodeIO, "failed to memory-map blob file").
			WithDetail("path", path)
	}

	h := &Handle{file: f, mm: m}
	h.refs.Store(1)
	return &Blob{identity: identity, kind: kind, handle: h}, nil
}

// Identity returns the blob's stable identity string.
func (b *Blob) Identity() Identity { return b.identity }

// Kind reports whether this blob is a snapshot or a delta.
func (b *Blob) Kind() Kind { return b.kind }

// Position returns the current logical read offset.
func (b *Blob) Position() int64 { return b.pos }

// Len returns the total length of the blob in bytes.
func (b *Blob) Len() int64 { return int64(len(b.handle.mm)) }

// ReadByte implements io.ByteReader, the primitive the VarInt codec reads
// through.
func (b *Blob) ReadByte() (byte, error) {
	if b.pos >= int64(len(b.handle.mm)) {
		return 0, io.EOF
	}
	c := b.handle.mm[b.pos]
	b.pos++
	return c, nil
}

// Read implements io.Reader over the remaining mapped bytes.
func (b *Blob) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.handle.mm)) {
		return 0, io.EOF
	}
	n := copy(p, b.handle.mm[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// MapRemaining returns the slice of the underlying mapping covering
// [position, position+length) and advances the logical position by
// exactly length, as required by the segmented byte array's readFrom
// contract. It does not copy.
func (b *Blob) MapRemaining(length int64) ([]byte, error) {
	if length < 0 || b.pos+length > int64(len(b.handle.mm)) {
		return nil, hollowerrors.NewMalformedBlobError(nil, "requested byte range extends past end of blob").
			WithByteOffset(b.pos).
			WithDetail("requestedLength", length).
			WithDetail("blobLength", int64(len(b.handle.mm)))
	}
	s := b.handle.mm[b.pos : b.pos+length]
	b.pos += length
	return s, nil
}

// Skip advances the logical position by n bytes without returning them,
// used by discard paths that must still consume the stream.
func (b *Blob) Skip(n int64) error {
	if n < 0 || b.pos+n > int64(len(b.handle.mm)) {
		return hollowerrors.NewMalformedBlobError(nil, "skip extends past end of blob").
			WithByteOffset(b.pos)
	}
	b.pos += n
	return nil
}

// Close releases the Blob's own reference on the underlying mapping.
// Segmented arrays that acquired their own reference via Handle() keep
// the mapping alive until they are destroyed.
func (b *Blob) Close() error {
	return b.handle.Release()
}

// Handle returns the Blob's shared mapping handle, for callers (segmented
// arrays) that need to keep the mapping alive past the Blob's own Close.
func (b *Blob) Handle() *Handle { return b.handle }

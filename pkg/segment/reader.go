package segment

import (
	"io"

	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
)

// Reader adapts a populated ByteArray into a sequential io.ByteReader +
// io.Reader, the cursor varint decoding and varbyte-heap lookups need
// when walking variable-length payloads (collection element lists,
// string/bytes heaps) that were read wholesale into a ByteArray.
type Reader struct {
	arr *ByteArray
	pos int64
}

// NewReader returns a Reader positioned at the start of arr.
func NewReader(arr *ByteArray) *Reader {
	return &Reader{arr: arr}
}

// NewReaderAt returns a Reader positioned at byte offset pos within arr.
func NewReaderAt(arr *ByteArray, pos int64) *Reader {
	return &Reader{arr: arr, pos: pos}
}

// Position returns the reader's current cursor.
func (r *Reader) Position() int64 { return r.pos }

// Seek repositions the cursor to an absolute byte offset.
func (r *Reader) Seek(pos int64) { r.pos = pos }

// ReadByte implements io.ByteReader over the backing ByteArray.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.arr.Get(r.pos)
	if err != nil {
		return 0, io.EOF
	}
	r.pos++
	return b, nil
}

// Read implements io.Reader over the backing ByteArray.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := r.arr.Get(r.pos)
		if err != nil {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		p[n] = b
		r.pos++
		n++
	}
	return n, nil
}

// ReadBytesAt returns a copy of length bytes starting at byte offset off,
// used to materialize a string/bytes field's payload out of a varbyte
// heap once its offset and length are known.
func (r *Reader) ReadBytesAt(off, length int64) ([]byte, error) {
	out := make([]byte, length)
	for i := int64(0); i < length; i++ {
		b, err := r.arr.Get(off + i)
		if err != nil {
			return nil, hollowerrors.NewOutOfRangeError("varbyte heap read out of range", off+i, r.arr.Len())
		}
		out[i] = b
	}
	return out, nil
}

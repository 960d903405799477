package segment

import (
	"encoding/binary"

	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/internal/recycler"
)

// LongArray reinterprets a ByteArray's bytes as little-endian 64-bit
// words. Because a ByteArray's segment length is always a multiple of 8
// bytes, a word never straddles a segment boundary, so reads never need
// to touch two segments to decode one word.
type LongArray struct {
	bytes    *ByteArray
	maxLongs int64
}

// NewLongArray creates an empty LongArray using the same segment length
// (in bytes) as ByteArray.
func NewLongArray(lengthBits uint8) *LongArray {
	return &LongArray{bytes: NewByteArray(lengthBits)}
}

// ReadFromMapped populates the array from the blob's memory mapping,
// interpreting the next numLongs*8 bytes as numLongs little-endian words.
func (a *LongArray) ReadFromMapped(b *blob.Blob, numLongs int64) error {
	if numLongs < 0 {
		return hollowerrors.NewMalformedBlobError(nil, "negative long-array length")
	}
	if err := a.bytes.ReadFromMapped(b, numLongs*8); err != nil {
		return err
	}
	a.maxLongs = numLongs
	return nil
}

// ReadFromRecycler populates the array by copying numLongs words read
// sequentially from b into recycler-owned buffers (ON_HEAP memory mode).
func (a *LongArray) ReadFromRecycler(b *blob.Blob, numLongs int64, pool *recycler.Recycler) error {
	if numLongs < 0 {
		return hollowerrors.NewMalformedBlobError(nil, "negative long-array length")
	}
	if err := a.bytes.ReadFromRecycler(b, numLongs*8, pool); err != nil {
		return err
	}
	a.maxLongs = numLongs
	return nil
}

// MaxLongs returns the number of 64-bit words populated.
func (a *LongArray) MaxLongs() int64 { return a.maxLongs }

// MaxByteIndex returns the highest valid bit-packed byte index:
// maxLongs*8 - 8. Reads past it fail with OutOfRange.
func (a *LongArray) MaxByteIndex() int64 { return a.maxLongs*8 - 8 }

// Get returns the i-th little-endian 64-bit word.
func (a *LongArray) Get(i int64) (uint64, error) {
	if i < 0 || i >= a.maxLongs {
		return 0, hollowerrors.NewOutOfRangeError("long-array index out of range", i, a.maxLongs)
	}
	return a.readWordAtByte(i * 8)
}

func (a *LongArray) readWordAtByte(byteIndex int64) (uint64, error) {
	var word [8]byte
	for i := range word {
		b, err := a.bytes.Get(byteIndex + int64(i))
		if err != nil {
			return 0, err
		}
		word[i] = b
	}
	return binary.LittleEndian.Uint64(word[:]), nil
}

// GetElementValue reads up to 58 bits beginning at bitOffset, spanning at
// most two adjacent 64-bit words, and returns the little-endian integer
// masked to bitLength. This is the primitive object type states use to
// unpack fixed-width fields from a contiguous bit stream.
func (a *LongArray) GetElementValue(bitOffset int64, bitLength uint8) (uint64, error) {
	if bitLength == 0 {
		return 0, nil
	}
	if bitLength > 58 {
		return 0, hollowerrors.NewMalformedBlobError(nil, "bit-packed read exceeds 58-bit limit")
	}

	wordIndex := bitOffset >> 6
	bitInWord := uint(bitOffset & 63)

	lo, err := a.Get(wordIndex)
	if err != nil {
		return 0, err
	}

	value := lo >> bitInWord
	if bitInWord+uint(bitLength) > 64 {
		hi, err := a.Get(wordIndex + 1)
		if err != nil {
			return 0, err
		}
		value |= hi << (64 - bitInWord)
	}

	mask := uint64(1)<<bitLength - 1
	return value & mask, nil
}

// GetElementValues reads count consecutive bitLength-wide fields starting
// at bitOffset, each spaced bitLength bits apart. It is a batch
// convenience that makes one GetElementValue call per value.
func (a *LongArray) GetElementValues(bitOffset int64, bitLength uint8, count int) ([]uint64, error) {
	out := make([]uint64, count)
	for i := 0; i < count; i++ {
		v, err := a.GetElementValue(bitOffset+int64(i)*int64(bitLength), bitLength)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Destroy releases the array's claim on its backing memory.
func (a *LongArray) Destroy() error {
	return a.bytes.Destroy()
}

package segment

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/pkg/blob"
)

func fixtureBlob(t *testing.T, contents []byte) *blob.Blob {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.blob")
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	b, err := blob.Open(path, blob.Identity(path), blob.KindSnapshot)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestByteArrayReadFromMappedSpansMultipleSegments(t *testing.T) {
	contents := []byte("0123456789AB") // 12 bytes
	b := fixtureBlob(t, contents)

	arr := NewByteArray(2) // 2^2 = 4-byte segments, so this spans 3 segments
	require.NoError(t, arr.ReadFromMapped(b, int64(len(contents))))
	require.EqualValues(t, len(contents), arr.Len())

	for i, want := range contents {
		got, err := arr.Get(int64(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := arr.Get(int64(len(contents)))
	require.Error(t, err)

	require.NoError(t, arr.Destroy())
}

func TestByteArrayReadFromRecyclerCopiesIntoOwnedBuffers(t *testing.T) {
	contents := []byte("recycler-backed-content")
	b := fixtureBlob(t, contents)

	pool := recycler.New(1 * datasize.MB)
	arr := NewByteArray(3) // 8-byte segments
	require.NoError(t, arr.ReadFromRecycler(b, int64(len(contents)), pool))

	for i, want := range contents {
		got, err := arr.Get(int64(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	require.NoError(t, arr.Destroy())
}

func TestByteArrayNegativeLengthIsMalformed(t *testing.T) {
	b := fixtureBlob(t, []byte("x"))
	arr := NewByteArray(4)
	require.Error(t, arr.ReadFromMapped(b, -1))
}

func TestLongArrayRoundTripsWordsAcrossSegmentBoundary(t *testing.T) {
	// Segment length 8 bytes (2^3), so every word lives in its own segment
	// — this exercises the "a word never straddles a segment" guarantee.
	words := []uint64{1, 0xFFFFFFFFFFFFFFFF, 0, 42, 1 << 40}
	buf := make([]byte, 0, 8*len(words))
	for _, w := range words {
		b8 := make([]byte, 8)
		binary.LittleEndian.PutUint64(b8, w)
		buf = append(buf, b8...)
	}

	b := fixtureBlob(t, buf)
	arr := NewLongArray(3)
	require.NoError(t, arr.ReadFromMapped(b, int64(len(words))))
	require.EqualValues(t, len(words), arr.MaxLongs())

	for i, want := range words {
		got, err := arr.Get(int64(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	require.NoError(t, arr.Destroy())
}

func TestLongArrayGetElementValuesPacksWithinOneWord(t *testing.T) {
	// Pack 16 consecutive 4-bit values (0..15) into a single 64-bit word.
	var word uint64
	for i := uint64(0); i < 16; i++ {
		word |= i << (i * 4)
	}
	b8 := make([]byte, 8)
	binary.LittleEndian.PutUint64(b8, word)

	b := fixtureBlob(t, b8)
	arr := NewLongArray(3)
	require.NoError(t, arr.ReadFromMapped(b, 1))

	values, err := arr.GetElementValues(0, 4, 16)
	require.NoError(t, err)
	for i, v := range values {
		require.EqualValues(t, i, v)
	}
}

func TestLongArrayGetElementValueSpansTwoWords(t *testing.T) {
	// word0's top 4 bits + word1's bottom 6 bits form a 10-bit field
	// straddling the word boundary at bit offset 60.
	word0 := uint64(0xF) << 60 // top 4 bits set
	word1 := uint64(0x3F)      // bottom 6 bits set

	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], word0)
	binary.LittleEndian.PutUint64(buf[8:16], word1)

	b := fixtureBlob(t, buf)
	arr := NewLongArray(4) // 16-byte segments so both words share one segment
	require.NoError(t, arr.ReadFromMapped(b, 2))

	got, err := arr.GetElementValue(60, 10)
	require.NoError(t, err)
	// Low 4 bits of the field come from word0's top 4 bits (all set: 0xF),
	// high 6 bits come from word1's bottom 6 bits (all set: 0x3F), giving a
	// full 10-bit field of all ones.
	require.EqualValues(t, 0x3FF, got)
}

func TestLongArrayGetElementValueRejectsOver58Bits(t *testing.T) {
	buf := make([]byte, 8)
	b := fixtureBlob(t, buf)
	arr := NewLongArray(3)
	require.NoError(t, arr.ReadFromMapped(b, 1))

	_, err := arr.GetElementValue(0, 59)
	require.Error(t, err)
}

package typestate

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/pkg/blob"
	"github.com/iamNilotpal/hollow/pkg/filter"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

func appendWord(dst []byte, w uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, w)
	return append(dst, b...)
}

// buildOneShardObjectBody builds a single-shard object sub-stream with one
// populated ordinal (0): a fixed "id" field (bit width 8, value 5) and a
// variable "title" field (bytes "hello").
func buildOneShardObjectBody() []byte {
	var payload []byte

	// population bitmap: maxOrdinal=0, 1 byte, bit0 set.
	payload = varint.AppendInt64(payload, 0)
	payload = append(payload, 0x01)

	// field "id": bit width 8, no nulls, one 8-byte word holding value 5.
	payload = append(payload, 8)
	payload = varint.AppendUint64(payload, 1)
	payload = append(payload, 0x00)
	payload = varint.AppendUint64(payload, 8)
	payload = appendWord(payload, 5)

	// field "title": offset bit width 16, offsets [0, 5] packed into one
	// word, heap holds "hello".
	payload = append(payload, 16)
	payload = varint.AppendUint64(payload, 8)
	payload = appendWord(payload, uint64(5)<<16)
	payload = varint.AppendUint64(payload, 5)
	payload = append(payload, "hello"...)

	var body []byte
	body = varint.AppendUint64(body, 0) // preamble sentinel -> 1 shard
	body = varint.AppendUint64(body, uint64(len(payload)))
	body = append(body, payload...)
	return body
}

func openFixture(t *testing.T, contents []byte) *blob.Blob {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.blob")
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	b, err := blob.Open(path, blob.Identity(path), blob.KindSnapshot)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func movieSchema() *schema.ObjectSchema {
	data := func() []byte {
		var buf []byte
		buf = append(buf, byte(schema.KindObject))
		buf = varint.AppendString(buf, "Movie")
		buf = varint.AppendUint64(buf, 2)
		buf = varint.AppendString(buf, "id")
		buf = append(buf, byte(schema.FieldLong))
		buf = varint.AppendString(buf, "title")
		buf = append(buf, byte(schema.FieldString))
		buf = append(buf, 1)
		buf = varint.AppendUint64(buf, 1)
		buf = varint.AppendString(buf, "id")
		return buf
	}()

	s, err := schema.ReadSchema(&sliceReader{b: data})
	if err != nil {
		panic(err)
	}
	return s.(*schema.ObjectSchema)
}

// sliceReader is a minimal byteReaderAt over an in-memory slice, used to
// parse the schema fixture built above without round-tripping through a
// blob file.
type sliceReader struct {
	b   []byte
	pos int
}

func (r *sliceReader) ReadByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	c := r.b[r.pos]
	r.pos++
	return c, nil
}

func (r *sliceReader) Read(p []byte) (int, error) {
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

func TestObjectTypeReadStateReadSnapshotAndGet(t *testing.T) {
	s := newObjectTypeReadState(schema.FilterObject(movieSchema(), filter.New()))
	b := openFixture(t, buildOneShardObjectBody())

	require.NoError(t, s.ReadSnapshot(b, options.MemoryModeSharedLazy, nil))
	require.Equal(t, 1, s.NumShards())

	v, ok, err := s.GetFixed(0, "id")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 5, v)

	title, ok, err := s.GetString(0, "title")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", title)

	_, ok, err = s.GetFixed(1, "id")
	require.NoError(t, err)
	require.False(t, ok, "ordinal 1 was never populated")

	require.Equal(t, []int64{0}, s.Populated())
	require.NoError(t, s.Destroy())
}

func TestObjectTypeReadStatePrimaryKeyValue(t *testing.T) {
	s := newObjectTypeReadState(schema.FilterObject(movieSchema(), filter.New()))
	b := openFixture(t, buildOneShardObjectBody())
	require.NoError(t, s.ReadSnapshot(b, options.MemoryModeSharedLazy, nil))

	require.True(t, s.HasPrimaryKey())
	key, ok, err := s.PrimaryKeyValue(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5", key)
}

func TestObjectTypeReadStateFilteredFieldIsExcluded(t *testing.T) {
	f := filter.New().ExcludeField("Movie", "title")
	s := newObjectTypeReadState(schema.FilterObject(movieSchema(), f))
	b := openFixture(t, buildOneShardObjectBody())
	require.NoError(t, s.ReadSnapshot(b, options.MemoryModeSharedLazy, nil))

	_, ok, err := s.GetString(0, "title")
	require.NoError(t, err)
	require.False(t, ok, "excluded field is never retained")

	v, ok, err := s.GetFixed(0, "id")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 5, v)
}

func TestObjectTypeReadStateDiscardSnapshotSkipsWithoutRetaining(t *testing.T) {
	s := newObjectTypeReadState(schema.FilterObject(movieSchema(), filter.New()))
	b := openFixture(t, buildOneShardObjectBody())
	require.NoError(t, s.DiscardSnapshot(b))
	require.Equal(t, int64(len(buildOneShardObjectBody())), b.Position())
}

package blobreader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/internal/engine"
	"github.com/iamNilotpal/hollow/internal/header"
	"github.com/iamNilotpal/hollow/pkg/blob"
	"github.com/iamNilotpal/hollow/pkg/filter"
	"github.com/iamNilotpal/hollow/pkg/logger"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

func appendHeader(dst []byte, version uint32, origin, dest uint64, tags map[string]string) []byte {
	var magicBuf, versionBuf [4]byte
	binary.LittleEndian.PutUint32(magicBuf[:], header.Magic)
	binary.LittleEndian.PutUint32(versionBuf[:], version)
	dst = append(dst, magicBuf[:]...)
	dst = append(dst, versionBuf[:]...)

	var originBuf, destBuf [8]byte
	binary.LittleEndian.PutUint64(originBuf[:], origin)
	binary.LittleEndian.PutUint64(destBuf[:], dest)
	dst = append(dst, originBuf[:]...)
	dst = append(dst, destBuf[:]...)

	dst = varint.AppendUint64(dst, uint64(len(tags)))
	for k, v := range tags {
		dst = varint.AppendString(dst, k)
		dst = varint.AppendString(dst, v)
	}
	return dst
}

func appendWord64(dst []byte, w uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, w)
	return append(dst, b...)
}

func appendMovieSchema(dst []byte) []byte {
	dst = append(dst, byte(schema.KindObject))
	dst = varint.AppendString(dst, "Movie")
	dst = varint.AppendUint64(dst, 2)
	dst = varint.AppendString(dst, "id")
	dst = append(dst, byte(schema.FieldLong))
	dst = varint.AppendString(dst, "title")
	dst = append(dst, byte(schema.FieldString))
	dst = append(dst, 1) // has primary key
	dst = varint.AppendUint64(dst, 1)
	dst = varint.AppendString(dst, "id")
	return dst
}

// appendMovieShard appends a single-shard object sub-stream with one
// populated ordinal holding id=5, title="hello".
func appendMovieShard(dst []byte) []byte {
	var payload []byte
	payload = varint.AppendInt64(payload, 0)
	payload = append(payload, 0x01)

	payload = append(payload, 8)
	payload = varint.AppendUint64(payload, 1)
	payload = append(payload, 0x00)
	payload = varint.AppendUint64(payload, 8)
	payload = appendWord64(payload, 5)

	payload = append(payload, 16)
	payload = varint.AppendUint64(payload, 8)
	payload = appendWord64(payload, uint64(5)<<16)
	payload = varint.AppendUint64(payload, 5)
	payload = append(payload, "hello"...)

	dst = varint.AppendUint64(dst, 0)
	dst = varint.AppendUint64(dst, uint64(len(payload)))
	return append(dst, payload...)
}

func buildSnapshotBlob(destTag uint64) []byte {
	var buf []byte
	buf = appendHeader(buf, 1, 0, destTag, nil)
	buf = varint.AppendUint64(buf, 1) // one type
	buf = appendMovieSchema(buf)
	buf = appendMovieShard(buf)
	return buf
}

func buildDeltaBlob(originTag, destTag uint64) []byte {
	var buf []byte
	buf = appendHeader(buf, 1, originTag, destTag, nil)
	buf = varint.AppendUint64(buf, 1)
	buf = appendMovieSchema(buf)
	buf = appendMovieShard(buf)
	return buf
}

func openFixtureBlob(t *testing.T, contents []byte, kind blob.Kind) *blob.Blob {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.blob")
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	b, err := blob.Open(path, blob.Identity(path), kind)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestReadSnapshotPopulatesEngineAndIndex(t *testing.T) {
	e := engine.New(logger.NewNop())
	deps := Dependencies{
		Engine:     e,
		Filter:     filter.New(),
		MemoryMode: options.MemoryModeSharedLazy,
		Logger:     logger.NewNop(),
	}

	b := openFixtureBlob(t, buildSnapshotBlob(42), blob.KindSnapshot)
	h, err := ReadSnapshot(b, deps)
	require.NoError(t, err)
	require.EqualValues(t, 42, h.DestTag)
	require.EqualValues(t, 42, e.RandomizedTag())

	state, ok := e.GetTypeState("Movie")
	require.True(t, ok)
	require.Equal(t, []int64{0}, state.Populated())

	idx, ok := e.PrimaryKeyIndex("Movie")
	require.True(t, ok)
	ordinal, ok := idx.Get("5")
	require.True(t, ok)
	require.EqualValues(t, 0, ordinal)
}

func TestReadSnapshotDiscardsFilteredOutType(t *testing.T) {
	e := engine.New(logger.NewNop())
	deps := Dependencies{
		Engine:     e,
		Filter:     filter.New().ExcludeType("Movie"),
		MemoryMode: options.MemoryModeSharedLazy,
		Logger:     logger.NewNop(),
	}

	b := openFixtureBlob(t, buildSnapshotBlob(1), blob.KindSnapshot)
	_, err := ReadSnapshot(b, deps)
	require.NoError(t, err)

	_, ok := e.GetTypeState("Movie")
	require.False(t, ok, "a filtered-out type is never registered")
}

func TestReadDeltaRejectsWrongOrigin(t *testing.T) {
	e := engine.New(logger.NewNop())
	deps := Dependencies{
		Engine:     e,
		Filter:     filter.New(),
		MemoryMode: options.MemoryModeSharedLazy,
		Logger:     logger.NewNop(),
	}

	snap := openFixtureBlob(t, buildSnapshotBlob(1), blob.KindSnapshot)
	_, err := ReadSnapshot(snap, deps)
	require.NoError(t, err)

	delta := openFixtureBlob(t, buildDeltaBlob(999, 2), blob.KindDelta)
	_, err = ReadDelta(delta, deps)
	require.Error(t, err)
}

func TestReadDeltaAppliesOverExistingType(t *testing.T) {
	e := engine.New(logger.NewNop())
	deps := Dependencies{
		Engine:     e,
		Filter:     filter.New(),
		MemoryMode: options.MemoryModeSharedLazy,
		Logger:     logger.NewNop(),
	}

	snap := openFixtureBlob(t, buildSnapshotBlob(1), blob.KindSnapshot)
	_, err := ReadSnapshot(snap, deps)
	require.NoError(t, err)

	delta := openFixtureBlob(t, buildDeltaBlob(1, 2), blob.KindDelta)
	h, err := ReadDelta(delta, deps)
	require.NoError(t, err)
	require.EqualValues(t, 2, h.DestTag)
	require.EqualValues(t, 2, e.RandomizedTag())
}

package hollow

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/internal/header"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

func appendHeaderBytes(dst []byte, version uint32, origin, dest uint64) []byte {
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
	return varint.AppendUint64(dst, 0) // zero header tags
}

func appendWord(dst []byte, w uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, w)
	return append(dst, b...)
}

func buildMovieSnapshotBlob(destTag uint64) []byte {
	var buf []byte
	buf = appendHeaderBytes(buf, 1, 0, destTag)
	buf = varint.AppendUint64(buf, 1) // one type

	buf = append(buf, byte(schema.KindObject))
	buf = varint.AppendString(buf, "Movie")
	buf = varint.AppendUint64(buf, 1)
	buf = varint.AppendString(buf, "id")
	buf = append(buf, byte(schema.FieldLong))
	buf = append(buf, 1)
	buf = varint.AppendUint64(buf, 1)
	buf = varint.AppendString(buf, "id")

	var payload []byte
	payload = varint.AppendInt64(payload, 0)
	payload = append(payload, 0x01)
	payload = append(payload, 8)
	payload = varint.AppendUint64(payload, 1)
	payload = append(payload, 0x00)
	payload = varint.AppendUint64(payload, 8)
	payload = appendWord(payload, 7)

	buf = varint.AppendUint64(buf, 0)
	buf = varint.AppendUint64(buf, uint64(len(payload)))
	buf = append(buf, payload...)
	return buf
}

func TestClientUpdateAndReadAPI(t *testing.T) {
	dataDir := t.TempDir()
	blobDir := filepath.Join(dataDir, "blobs")
	require.NoError(t, os.MkdirAll(blobDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(blobDir, "dataset_0000000001.snapshot"),
		buildMovieSnapshotBlob(9),
		0o644,
	))

	c, err := New("catalog-test", options.WithDataDir(dataDir), options.WithBlobDirectory("blobs"))
	require.NoError(t, err)

	require.NoError(t, c.Update(context.Background(), 1))
	require.EqualValues(t, 1, c.CurrentVersion())

	api := c.ReadAPI()
	require.EqualValues(t, 1, api.Version())

	ordinal, ok := api.FindByPrimaryKey("Movie", "7")
	require.True(t, ok)
	require.EqualValues(t, 0, ordinal)

	obj, ok := api.Object("Movie")
	require.True(t, ok)
	v, ok, err := obj.GetFixed(0, "id")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 7, v)

	require.NoError(t, c.Close())
}

func TestClientUpdateFailsWithoutSnapshot(t *testing.T) {
	dataDir := t.TempDir()
	c, err := New("catalog-test-empty", options.WithDataDir(dataDir), options.WithBlobDirectory("blobs"))
	require.NoError(t, err)

	err = c.Update(context.Background(), 1)
	require.Error(t, err)
}

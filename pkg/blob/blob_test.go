package blob

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempBlob(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.blob")
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	return path
}

func TestOpenReadByteAndRead(t *testing.T) {
	path := writeTempBlob(t, []byte("hello world"))

	b, err := Open(path, Identity(path), KindSnapshot)
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, Identity(path), b.Identity())
	require.Equal(t, KindSnapshot, b.Kind())
	require.EqualValues(t, 11, b.Len())

	c, err := b.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('h'), c)
	require.EqualValues(t, 1, b.Position())

	rest := make([]byte, 4)
	n, err := b.Read(rest)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "ello", string(rest))
}

func TestReadPastEndReturnsEOF(t *testing.T) {
	path := writeTempBlob(t, []byte("ab"))
	b, err := Open(path, Identity(path), KindDelta)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Skip(2))
	_, err = b.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestMapRemainingAdvancesPositionWithoutCopying(t *testing.T) {
	path := writeTempBlob(t, []byte("0123456789"))
	b, err := Open(path, Identity(path), KindSnapshot)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Skip(2))
	region, err := b.MapRemaining(3)
	require.NoError(t, err)
	require.Equal(t, "234", string(region))
	require.EqualValues(t, 5, b.Position())
}

func TestMapRemainingPastEndIsMalformed(t *testing.T) {
	path := writeTempBlob(t, []byte("short"))
	b, err := Open(path, Identity(path), KindSnapshot)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.MapRemaining(100)
	require.Error(t, err)
}

func TestEmptyFileProducesDegenerateBlob(t *testing.T) {
	path := writeTempBlob(t, nil)
	b, err := Open(path, Identity(path), KindSnapshot)
	require.NoError(t, err)
	defer b.Close()

	require.EqualValues(t, 0, b.Len())
	_, err = b.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestHandleRefcountingOutlivesBlobClose(t *testing.T) {
	path := writeTempBlob(t, []byte("segment data"))
	b, err := Open(path, Identity(path), KindSnapshot)
	require.NoError(t, err)

	handle := b.Handle().Acquire()

	// Closing the Blob releases its own reference but the array-held
	// Acquire keeps the mapping alive.
	require.NoError(t, b.Close())
	require.NotEmpty(t, handle.Bytes())

	require.NoError(t, handle.Release())
}

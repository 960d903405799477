package blobsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/pkg/blob"
	"github.com/iamNilotpal/hollow/pkg/options"
)

func newTestSource(t *testing.T) (*Source, string) {
	t.Helper()
	dataDir := t.TempDir()
	src, err := New(dataDir, &options.BlobNamingOptions{Directory: "blobs", Prefix: "dataset"})
	require.NoError(t, err)
	return src, filepath.Join(dataDir, "blobs")
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644))
}

func TestGenerateName(t *testing.T) {
	src, _ := newTestSource(t)
	require.Equal(t, "dataset_0000000001.snapshot", src.GenerateName(1, blob.KindSnapshot))
	require.Equal(t, "dataset_0000000042.delta", src.GenerateName(42, blob.KindDelta))
}

func TestListSnapshotsSortedAscending(t *testing.T) {
	src, dir := newTestSource(t)
	touch(t, dir, "dataset_0000000003.snapshot")
	touch(t, dir, "dataset_0000000001.snapshot")
	touch(t, dir, "dataset_0000000002.snapshot")
	touch(t, dir, "dataset_0000000001.delta")
	touch(t, dir, "other_0000000099.snapshot")

	entries, err := src.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.EqualValues(t, 1, entries[0].Version)
	require.EqualValues(t, 2, entries[1].Version)
	require.EqualValues(t, 3, entries[2].Version)
}

func TestLatestSnapshotNilWhenNoneExist(t *testing.T) {
	src, _ := newTestSource(t)
	entry, err := src.LatestSnapshot()
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestLatestSnapshotReturnsHighestVersion(t *testing.T) {
	src, dir := newTestSource(t)
	touch(t, dir, "dataset_0000000001.snapshot")
	touch(t, dir, "dataset_0000000005.snapshot")

	entry, err := src.LatestSnapshot()
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.EqualValues(t, 5, entry.Version)
}

func TestDeltasAfterFiltersAndSorts(t *testing.T) {
	src, dir := newTestSource(t)
	touch(t, dir, "dataset_0000000001.delta")
	touch(t, dir, "dataset_0000000002.delta")
	touch(t, dir, "dataset_0000000003.delta")

	entries, err := src.DeltasAfter(1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.EqualValues(t, 2, entries[0].Version)
	require.EqualValues(t, 3, entries[1].Version)
}

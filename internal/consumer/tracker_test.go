package consumer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/pkg/blob"
)

func openEmptyBlob(t *testing.T, identity blob.Identity, kind blob.Kind) *blob.Blob {
	t.Helper()
	path := filepath.Join(t.TempDir(), string(identity))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	b, err := blob.Open(path, identity, kind)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestFailedTransitionTrackerMarkAndHasFailed(t *testing.T) {
	tr := NewFailedTransitionTracker()
	require.False(t, tr.HasFailed("a"))

	tr.Mark("a")
	require.True(t, tr.HasFailed("a"))
	require.False(t, tr.HasFailed("b"))
}

func TestIntersectsFindsFailedBlobInPlan(t *testing.T) {
	tr := NewFailedTransitionTracker()
	snap := openEmptyBlob(t, "snap-1", blob.KindSnapshot)
	delta := openEmptyBlob(t, "delta-1", blob.KindDelta)
	plan := &Plan{Snapshot: snap, Deltas: []*blob.Blob{delta}, DestinationVersion: 2}

	_, ok := tr.Intersects(plan)
	require.False(t, ok)

	tr.Mark("delta-1")
	identity, ok := tr.Intersects(plan)
	require.True(t, ok)
	require.Equal(t, blob.Identity("delta-1"), identity)
}

func TestMarkPlanMarksEveryBlob(t *testing.T) {
	tr := NewFailedTransitionTracker()
	snap := openEmptyBlob(t, "snap-2", blob.KindSnapshot)
	delta := openEmptyBlob(t, "delta-2", blob.KindDelta)
	plan := &Plan{Snapshot: snap, Deltas: []*blob.Blob{delta}, DestinationVersion: 3}

	tr.MarkPlan(plan)
	require.True(t, tr.HasFailed("snap-2"))
	require.True(t, tr.HasFailed("delta-2"))
}

func TestPlanBlobsOrdersSnapshotFirst(t *testing.T) {
	snap := openEmptyBlob(t, "snap-3", blob.KindSnapshot)
	d1 := openEmptyBlob(t, "delta-3", blob.KindDelta)
	d2 := openEmptyBlob(t, "delta-4", blob.KindDelta)
	plan := &Plan{Snapshot: snap, Deltas: []*blob.Blob{d1, d2}}

	blobs := plan.Blobs()
	require.Len(t, blobs, 3)
	require.Equal(t, blob.Identity("snap-3"), blobs[0].Identity())
	require.Equal(t, blob.Identity("delta-3"), blobs[1].Identity())
	require.Equal(t, blob.Identity("delta-4"), blobs[2].Identity())
	require.True(t, plan.IsSnapshotPlan())
}

func TestPlanWithoutSnapshotIsNotSnapshotPlan(t *testing.T) {
	d1 := openEmptyBlob(t, "delta-5", blob.KindDelta)
	plan := &Plan{Deltas: []*blob.Blob{d1}}
	require.False(t, plan.IsSnapshotPlan())
	require.Len(t, plan.Blobs(), 1)
}

package consumer

import (
	"github.com/iamNilotpal/hollow/internal/engine"
	"github.com/iamNilotpal/hollow/pkg/blob"
)

// BlobLoadedListener is notified once per blob (snapshot or delta) as it
// is consumed by the driver, regardless of whether the plan as a whole
// ultimately succeeds.
type BlobLoadedListener interface {
	BlobLoaded(b *blob.Blob)
}

// TransitionAwareListener is notified once the snapshot of a snapshot
// plan has been applied, before any of the plan's deltas, distinct from
// the more general update notification because it fires only for
// snapshot transitions. api is the
// embedder-facing read handle minted for this transition (nil if the
// driver was constructed without a minting hook); stateEngine is the
// engine the transition was applied to.
type TransitionAwareListener interface {
	SnapshotApplied(api any, stateEngine *engine.Engine, toVersion uint64)
}

// UpdateListener is notified after any successful update, snapshot or
// delta, with the kind distinguished by which method fires.
type UpdateListener interface {
	SnapshotUpdateOccurred(api any, stateEngine *engine.Engine, destVersion uint64)
	DeltaUpdateOccurred(api any, stateEngine *engine.Engine, destVersion uint64)
}

package consumer

import (
	"sync"

	"github.com/iamNilotpal/hollow/pkg/blob"
)

// FailedTransitionTracker records blob identities known to have failed
// during a previous update attempt. Under double-snapshot mode, a plan
// that intersects this set is rejected before any I/O occurs.
type FailedTransitionTracker struct {
	mu     sync.Mutex
	failed map[blob.Identity]struct{}
}

// NewFailedTransitionTracker returns an empty tracker.
func NewFailedTransitionTracker() *FailedTransitionTracker {
	return &FailedTransitionTracker{failed: make(map[blob.Identity]struct{})}
}

// Mark records identity as having failed.
func (t *FailedTransitionTracker) Mark(identity blob.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed[identity] = struct{}{}
}

// HasFailed reports whether identity was previously marked.
func (t *FailedTransitionTracker) HasFailed(identity blob.Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.failed[identity]
	return ok
}

// Intersects returns the first blob identity in plan that has previously
// failed, if any.
func (t *FailedTransitionTracker) Intersects(plan *Plan) (blob.Identity, bool) {
	for _, b := range plan.Blobs() {
		if t.HasFailed(b.Identity()) {
			return b.Identity(), true
		}
	}
	return "", false
}

// MarkPlan marks every blob in plan as failed, used when a snapshot
// plan's failure taints the entire transition.
func (t *FailedTransitionTracker) MarkPlan(plan *Plan) {
	for _, b := range plan.Blobs() {
		t.Mark(b.Identity())
	}
}

// Package consumer implements the update plan, the update driver state
// machine, the failed-transition tracker, the double-snapshot gate, and
// the historical state chain described by the consumer update driver
// component.
package consumer

import "github.com/iamNilotpal/hollow/pkg/blob"

// Plan is an ordered sequence of blobs the driver applies as a single
// transition: an optional leading snapshot followed by zero or more
// deltas, targeting destinationVersion.
type Plan struct {
	Snapshot           *blob.Blob
	Deltas             []*blob.Blob
	DestinationVersion uint64
}

// IsSnapshotPlan reports whether this plan begins with a snapshot.
func (p *Plan) IsSnapshotPlan() bool { return p.Snapshot != nil }

// Blobs returns every blob in the plan, snapshot first if present, in
// application order.
func (p *Plan) Blobs() []*blob.Blob {
	blobs := make([]*blob.Blob, 0, len(p.Deltas)+1)
	if p.Snapshot != nil {
		blobs = append(blobs, p.Snapshot)
	}
	return append(blobs, p.Deltas...)
}

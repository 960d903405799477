// Package typestate implements the per-kind populators described by the
// type read state contract: object, list, set, and map shards that
// consume a blob's per-type sub-stream into segmented byte/long arrays
// and expose ordinal-addressed reads over them.
package typestate

import (
	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/pkg/blob"
	"github.com/iamNilotpal/hollow/pkg/filter"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
)

// Listener receives synchronous notifications bracketing an update's
// application to a single type, mirroring the engine's begin/end-update
// fanout.
type Listener interface {
	BeginUpdate()
	EndUpdate()
}

// TypeReadState is the capability set every concrete kind (object, list,
// set, map) implements: population from a blob, discard without
// retention, delta application, and the introspection the engine and
// consumer-facing read API need.
type TypeReadState interface {
	TypeName() string
	Schema() schema.Schema
	NumShards() int

	ReadSnapshot(b *blob.Blob, mode options.MemoryMode, pool *recycler.Recycler) error
	DiscardSnapshot(b *blob.Blob) error
	ApplyDelta(b *blob.Blob, deltaSchema schema.Schema, mode options.MemoryMode, pool *recycler.Recycler) error
	DiscardDelta(b *blob.Blob) error

	AddListener(l Listener)
	NotifyBeginUpdate()
	NotifyEndUpdate()

	// Populated returns the ordinals currently populated across all
	// shards, grouped by shard and ascending within each shard; the
	// result is not globally sorted. Intended for tests and diagnostics,
	// not hot-path reads.
	Populated() []int64

	// Destroy releases every shard's backing segmented arrays.
	Destroy() error
}

// listeners is embedded by every concrete type state to share the
// fanout bookkeeping.
type listeners struct {
	ls []Listener
}

func (l *listeners) AddListener(listener Listener) {
	l.ls = append(l.ls, listener)
}

func (l *listeners) NotifyBeginUpdate() {
	for _, listener := range l.ls {
		listener.BeginUpdate()
	}
}

func (l *listeners) NotifyEndUpdate() {
	for _, listener := range l.ls {
		listener.EndUpdate()
	}
}

// New constructs the concrete TypeReadState matching s's kind, scoped by
// the supplied filter so object schemas are pre-projected to their
// included fields.
func New(s schema.Schema, f *filter.Config) TypeReadState {
	switch concrete := s.(type) {
	case *schema.ObjectSchema:
		return newObjectTypeReadState(schema.FilterObject(concrete, f))
	case *schema.ListSchema:
		return newListTypeReadState(concrete)
	case *schema.SetSchema:
		return newSetTypeReadState(concrete)
	case *schema.MapSchema:
		return newMapTypeReadState(concrete)
	default:
		return nil
	}
}

// Package blobreader implements the top-level snapshot/delta walker:
// header framing, per-type schema parsing, filter-driven
// construct-or-discard dispatch, and the engine lifecycle calls that
// bracket a successful read.
package blobreader

import (
	"go.uber.org/zap"

	"github.com/iamNilotpal/hollow/internal/engine"
	"github.com/iamNilotpal/hollow/internal/header"
	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/internal/typestate"
	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/pkg/filter"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

// Dependencies bundles everything a snapshot or delta read needs beyond
// the blob itself.
type Dependencies struct {
	Engine     *engine.Engine
	Filter     *filter.Config
	Pool       *recycler.Recycler
	MemoryMode options.MemoryMode
	Logger     *zap.SugaredLogger

	// DumpBlobLayout, when true, logs each type's schema kind and
	// inclusion decision as it is encountered. Optional diagnostic
	// output, off by default.
	DumpBlobLayout bool
}

// ReadSnapshot performs the full snapshot read sequence: header
// verification, begin-update notification, per-type schema parse and
// populate-or-discard, cross-type wiring, end-update notification, and
// after-initialization index construction.
func ReadSnapshot(b *blob.Blob, deps Dependencies) (*header.Header, error) {
	h, err := header.Read(b)
	if err != nil {
		return nil, err
	}

	deps.Engine.NotifyBeginUpdate()

	numTypes, err := varint.ReadUint64(b)
	if err != nil {
		return nil, hollowerrors.NewMalformedBlobError(err, "failed to read type count")
	}

	for i := uint64(0); i < numTypes; i++ {
		s, err := schema.ReadSchema(b)
		if err != nil {
			return nil, err
		}

		included := deps.Filter.DoesIncludeType(s.TypeName())
		if deps.DumpBlobLayout {
			deps.Logger.Infow("snapshot type encountered",
				"type", s.TypeName(), "kind", s.SchemaKind().String(), "included", included)
		}

		state := typestate.New(s, deps.Filter)
		if state == nil {
			return nil, hollowerrors.NewMalformedBlobError(nil, "unrecognized schema kind during snapshot read")
		}

		if !included {
			if err := state.DiscardSnapshot(b); err != nil {
				return nil, err
			}
			continue
		}

		if err := state.ReadSnapshot(b, deps.MemoryMode, deps.Pool); err != nil {
			return nil, err
		}
		deps.Engine.AddTypeState(state)
	}

	if err := deps.Engine.WireTypeStatesToSchemas(); err != nil {
		return nil, err
	}

	deps.Engine.NotifyEndUpdate()
	deps.Engine.SetRandomizedTag(h.DestTag)
	deps.Engine.SetHeaderTags(h.Tags)

	if err := deps.Engine.AfterInitialization(); err != nil {
		return nil, err
	}

	return h, nil
}

// ReadDelta performs the delta read sequence: header verification
// (asserting the origin tag against the engine's current tag), then for
// each type sub-stream, applying the delta if the engine has the type
// or discarding it otherwise, swapping the memory recycler's generation
// between types.
func ReadDelta(b *blob.Blob, deps Dependencies) (*header.Header, error) {
	h, err := header.Read(b)
	if err != nil {
		return nil, err
	}
	if err := h.AssertOrigin(deps.Engine.RandomizedTag()); err != nil {
		return nil, err
	}

	deps.Engine.NotifyBeginUpdate()

	numTypes, err := varint.ReadUint64(b)
	if err != nil {
		return nil, hollowerrors.NewMalformedBlobError(err, "failed to read delta type count")
	}

	for i := uint64(0); i < numTypes; i++ {
		s, err := schema.ReadSchema(b)
		if err != nil {
			return nil, err
		}

		existing, ok := deps.Engine.GetTypeState(s.TypeName())
		if deps.DumpBlobLayout {
			deps.Logger.Infow("delta type encountered", "type", s.TypeName(), "resident", ok)
		}

		if !ok {
			throwaway := typestate.New(s, deps.Filter)
			if throwaway == nil {
				return nil, hollowerrors.NewMalformedBlobError(nil, "unrecognized schema kind during delta read")
			}
			if err := throwaway.DiscardDelta(b); err != nil {
				return nil, err
			}
			if deps.Pool != nil {
				deps.Pool.Swap()
			}
			continue
		}

		if err := existing.ApplyDelta(b, s, deps.MemoryMode, deps.Pool); err != nil {
			return nil, err
		}
		if deps.Pool != nil {
			deps.Pool.Swap()
		}
	}

	deps.Engine.NotifyEndUpdate()
	deps.Engine.SetRandomizedTag(h.DestTag)
	deps.Engine.SetHeaderTags(h.Tags)

	return h, nil
}

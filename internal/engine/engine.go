// Package engine implements the read state engine: the registry of
// per-type read states populated by a snapshot, mutated in place by
// deltas, and exposed to readers through a single consistent generation
// at a time.
package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/iamNilotpal/hollow/internal/index"
	"github.com/iamNilotpal/hollow/internal/typestate"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
)

// Engine is the { typeStates, memoryRecycler, randomizedTag, headerTags }
// aggregate described by the data model. Concurrency contract: updates
// run single-writer; readers that hold a completed generation's handle
// may read concurrently with any number of other readers but never
// concurrently with a write in flight (enforced by the consumer driver,
// not by this type).
type Engine struct {
	mu sync.RWMutex

	typeStates map[string]typestate.TypeReadState

	randomizedTag uint64
	headerTags    map[string]string

	// primaryKeyIndex maps a type name that declares a primary key to a
	// derived ordinal lookup by the field's string representation,
	// rebuilt by AfterInitialization after every snapshot.
	primaryKeyIndex map[string]*index.Index

	logger *zap.SugaredLogger
}

// New constructs an empty Engine.
func New(logger *zap.SugaredLogger) *Engine {
	return &Engine{
		typeStates:      make(map[string]typestate.TypeReadState),
		primaryKeyIndex: make(map[string]*index.Index),
		logger:          logger,
	}
}

// AddTypeState registers state under its own schema's type name,
// replacing any existing registration for that name (used when a
// snapshot supersedes a prior generation wholesale).
func (e *Engine) AddTypeState(state typestate.TypeReadState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typeStates[state.TypeName()] = state
}

// GetTypeState returns the registered state for name, if any.
func (e *Engine) GetTypeState(name string) (typestate.TypeReadState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.typeStates[name]
	return s, ok
}

// TypeStates returns every registered type state, in no particular
// order.
func (e *Engine) TypeStates() []typestate.TypeReadState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]typestate.TypeReadState, 0, len(e.typeStates))
	for _, s := range e.typeStates {
		out = append(out, s)
	}
	return out
}

// Reset destroys and clears every registered type state, used before a
// fresh snapshot under double-snapshot semantics.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.typeStates {
		if err := s.Destroy(); err != nil {
			e.logger.Errorw("failed to destroy type state during reset", "type", s.TypeName(), "error", err)
		}
	}
	e.typeStates = make(map[string]typestate.TypeReadState)
	for _, idx := range e.primaryKeyIndex {
		_ = idx.Close()
	}
	e.primaryKeyIndex = make(map[string]*index.Index)
}

// WireTypeStatesToSchemas checks the element type of every registered
// list and set schema against the registered type states and logs each
// one that is absent (for example, filtered out). Map key/value types and
// object reference fields are not checked.
func (e *Engine) WireTypeStatesToSchemas() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, state := range e.typeStates {
		for _, referenced := range referencedTypeNames(state) {
			if _, ok := e.typeStates[referenced]; !ok {
				e.logger.Infow("type references an absent type (likely filtered out)",
					"type", state.TypeName(), "referencedType", referenced)
			}
		}
	}
	return nil
}

// primaryKeyIndexable is implemented by ObjectTypeReadState; kept as a
// narrow interface here so engine does not need to import the concrete
// object type state package.
type primaryKeyIndexable interface {
	HasPrimaryKey() bool
	PrimaryKeyValue(ordinal int64) (string, bool, error)
}

// AfterInitialization runs after every successful snapshot read: it
// rebuilds the derived index for every object type that declares a
// primary key.
func (e *Engine) AfterInitialization() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, idx := range e.primaryKeyIndex {
		_ = idx.Close()
	}
	e.primaryKeyIndex = make(map[string]*index.Index)

	for name, state := range e.typeStates {
		indexable, ok := state.(primaryKeyIndexable)
		if !ok || !indexable.HasPrimaryKey() {
			continue
		}

		idx, err := index.New(context.Background(), &index.Config{TypeName: name, Logger: e.logger})
		if err != nil {
			return hollowerrors.NewBlobError(err, hollowerrors.ErrorCodeInternal, "failed to construct primary key index").
				WithTypeName(name)
		}

		for _, ordinal := range state.Populated() {
			key, ok, err := indexable.PrimaryKeyValue(ordinal)
			if err != nil {
				return hollowerrors.NewBlobError(err, hollowerrors.ErrorCodeInternal, "failed to build primary key index").
					WithTypeName(name)
			}
			if !ok {
				continue
			}
			if err := idx.Put(key, ordinal); err != nil {
				return hollowerrors.NewBlobError(err, hollowerrors.ErrorCodeInternal, "failed to populate primary key index").
					WithTypeName(name)
			}
		}
		e.primaryKeyIndex[name] = idx
	}
	return nil
}

// PrimaryKeyIndex returns the ordinal lookup for typeName's primary key,
// if that type declares one and AfterInitialization has run.
func (e *Engine) PrimaryKeyIndex(typeName string) (*index.Index, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, ok := e.primaryKeyIndex[typeName]
	return idx, ok
}

// NotifyBeginUpdate fans out to every registered type state's listeners.
func (e *Engine) NotifyBeginUpdate() {
	for _, s := range e.TypeStates() {
		s.NotifyBeginUpdate()
	}
}

// NotifyEndUpdate fans out to every registered type state's listeners.
func (e *Engine) NotifyEndUpdate() {
	for _, s := range e.TypeStates() {
		s.NotifyEndUpdate()
	}
}

// RandomizedTag returns the engine's current destination tag, the value
// a subsequent delta's origin tag must match.
func (e *Engine) RandomizedTag() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.randomizedTag
}

// SetRandomizedTag replaces the engine's current tag, done after every
// successful snapshot or delta application.
func (e *Engine) SetRandomizedTag(tag uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.randomizedTag = tag
}

// HeaderTags returns the most recently ingested blob's header tags.
func (e *Engine) HeaderTags() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.headerTags
}

// SetHeaderTags replaces the engine's header tag map.
func (e *Engine) SetHeaderTags(tags map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.headerTags = tags
}

func referencedTypeNames(state typestate.TypeReadState) []string {
	if s, ok := state.Schema().(interface{ ElementType() string }); ok {
		return []string{s.ElementType()}
	}
	return nil
}

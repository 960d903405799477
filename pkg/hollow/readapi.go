package hollow

import (
	"github.com/iamNilotpal/hollow/internal/engine"
	"github.com/iamNilotpal/hollow/internal/typestate"
)

// ReadAPI is a handle over the client's engine, tagged with the version
// that was current when it was minted. It reads the engine's type states
// at call time and does not pin a generation: a later snapshot update
// resets the same engine, destroying the type states this handle read
// before, and the handle then reads the new generation's states.
type ReadAPI struct {
	engine  *engine.Engine
	version uint64
}

// Version returns the engine version this handle was minted against.
func (a *ReadAPI) Version() uint64 { return a.version }

// TypeState returns the registered type state for name, if any.
func (a *ReadAPI) TypeState(name string) (typestate.TypeReadState, bool) {
	return a.engine.GetTypeState(name)
}

// Object returns the object type state for name, if the registered
// state for that name is in fact an object type.
func (a *ReadAPI) Object(name string) (*typestate.ObjectTypeReadState, bool) {
	state, ok := a.engine.GetTypeState(name)
	if !ok {
		return nil, false
	}
	obj, ok := state.(*typestate.ObjectTypeReadState)
	return obj, ok
}

// List returns the list type state for name.
func (a *ReadAPI) List(name string) (*typestate.ListTypeReadState, bool) {
	state, ok := a.engine.GetTypeState(name)
	if !ok {
		return nil, false
	}
	list, ok := state.(*typestate.ListTypeReadState)
	return list, ok
}

// Set returns the set type state for name.
func (a *ReadAPI) Set(name string) (*typestate.SetTypeReadState, bool) {
	state, ok := a.engine.GetTypeState(name)
	if !ok {
		return nil, false
	}
	set, ok := state.(*typestate.SetTypeReadState)
	return set, ok
}

// Map returns the map type state for name.
func (a *ReadAPI) Map(name string) (*typestate.MapTypeReadState, bool) {
	state, ok := a.engine.GetTypeState(name)
	if !ok {
		return nil, false
	}
	m, ok := state.(*typestate.MapTypeReadState)
	return m, ok
}

// FindByPrimaryKey looks up an object type's ordinal by its primary-key
// string value, using the engine's derived index built during
// afterInitialization.
func (a *ReadAPI) FindByPrimaryKey(typeName, key string) (int64, bool) {
	idx, ok := a.engine.PrimaryKeyIndex(typeName)
	if !ok {
		return 0, false
	}
	return idx.Get(key)
}

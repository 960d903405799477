package consumer

import "weak"

// HistoricalState is one generation of a superseded read API: the engine
// snapshot as of some version, and a weak back-reference to its
// predecessor. Because the back-reference is weak, a generation becomes
// collectible the moment no embedder code holds a strong reference to it
// (directly or transitively via a later generation's chain), without
// this package needing to track liveness itself.
type HistoricalState struct {
	Version uint64
	prior   weak.Pointer[HistoricalState]
}

// NewHistoricalState creates a generation at version, chained weakly to
// prior. prior may be nil for the first generation.
func NewHistoricalState(version uint64, prior *HistoricalState) *HistoricalState {
	h := &HistoricalState{Version: version}
	if prior != nil {
		h.prior = weak.Make(prior)
	}
	return h
}

// Prior returns the predecessor generation, or (nil, false) if it has
// already been collected or this is the first generation.
func (h *HistoricalState) Prior() (*HistoricalState, bool) {
	if h == nil {
		return nil, false
	}
	p := h.prior.Value()
	return p, p != nil
}

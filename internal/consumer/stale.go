package consumer

import (
	"sync"

	"go.uber.org/zap"
)

// observation pairs the generation a handle was minted against with a
// liveness check closed over a weak.Pointer to the handle itself (typed
// at the call site in ObserveAPIHandle, where the concrete type is still
// known). This lets the detector track arbitrary handle types without
// wrapping them in an intermediate struct that nothing else references,
// which would make it collectible independent of the real handle.
type observation struct {
	version uint64
	alive   func() bool
}

// StaleReferenceDetector observes each newly created API handle through
// a weak reference and can report handles that remain strongly
// reachable elsewhere after their generation has been superseded.
type StaleReferenceDetector struct {
	mu           sync.Mutex
	logger       *zap.SugaredLogger
	current      uint64
	observations []observation
}

// NewStaleReferenceDetector returns a detector that logs through logger.
func NewStaleReferenceDetector(logger *zap.SugaredLogger) *StaleReferenceDetector {
	return &StaleReferenceDetector{logger: logger}
}

// observe registers alive, a liveness check for the handle minted at
// version, as the live API for that version. Called by the package-level
// generic ObserveAPIHandle, which is where the handle's concrete pointer
// type is available to weak.Make.
func (d *StaleReferenceDetector) observe(version uint64, alive func() bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = version
	d.observations = append(d.observations, observation{version: version, alive: alive})
}

// Sweep drops entries whose handle has already been collected and logs
// a diagnostic for every handle that is still reachable despite its
// generation having been superseded. Returns the number still stale.
func (d *StaleReferenceDetector) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	staleCount := 0
	live := d.observations[:0]
	for _, o := range d.observations {
		if !o.alive() {
			continue
		}
		if o.version < d.current {
			staleCount++
			if d.logger != nil {
				d.logger.Infow("stale API handle still reachable past its generation",
					"handleVersion", o.version, "currentVersion", d.current)
			}
		}
		live = append(live, o)
	}
	d.observations = live
	return staleCount
}

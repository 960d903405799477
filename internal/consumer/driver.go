package consumer

import (
	"sync"
	"weak"

	"go.uber.org/zap"

	"github.com/iamNilotpal/hollow/internal/blobreader"
	"github.com/iamNilotpal/hollow/internal/engine"
	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/pkg/filter"
	"github.com/iamNilotpal/hollow/pkg/options"
)

// State is the update driver's coarse-grained lifecycle position.
type State int

const (
	StateIdle State = iota
	StateApplyingSnapshot
	StateApplyingDeltas
	StateNotifyingListeners
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateApplyingSnapshot:
		return "APPLYING_SNAPSHOT"
	case StateApplyingDeltas:
		return "APPLYING_DELTAS"
	case StateNotifyingListeners:
		return "NOTIFYING_LISTENERS"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Driver runs the update state machine described by the consumer update
// driver component: Idle -> ApplyingSnapshot? -> ApplyingDeltas* ->
// NotifyListeners -> Idle, or Failed on any error along the way.
type Driver struct {
	mu sync.Mutex

	engine  *engine.Engine
	tracker *FailedTransitionTracker
	stale   *StaleReferenceDetector
	logger  *zap.SugaredLogger

	doubleSnapshot options.DoubleSnapshotConfig
	longevity      options.ObjectLongevityConfig
	memoryMode     options.MemoryMode
	dumpBlobLayout bool

	// mintAPI, if set, builds the embedder-facing read handle passed to
	// listener callbacks for a given engine generation. Left nil in
	// contexts (tests, internal tooling) that have no read-API type to
	// mint; listeners then receive a nil api.
	mintAPI func(eng *engine.Engine, version uint64) any

	pool   *recycler.Recycler
	filter *filter.Config

	state          State
	currentVersion uint64
	historical     *HistoricalState

	blobLoadedListeners     []BlobLoadedListener
	transitionAwareListeners []TransitionAwareListener
	updateListeners         []UpdateListener
}

// Config bundles the Driver's fixed dependencies and configuration.
type Config struct {
	Engine         *engine.Engine
	Pool           *recycler.Recycler
	Filter         *filter.Config
	Logger         *zap.SugaredLogger
	DoubleSnapshot options.DoubleSnapshotConfig
	Longevity      options.ObjectLongevityConfig
	MemoryMode     options.MemoryMode
	DumpBlobLayout bool
	MintAPI        func(eng *engine.Engine, version uint64) any
}

// New constructs an idle Driver.
func New(cfg Config) *Driver {
	return &Driver{
		engine:         cfg.Engine,
		tracker:        NewFailedTransitionTracker(),
		stale:          NewStaleReferenceDetector(cfg.Logger),
		logger:         cfg.Logger,
		doubleSnapshot: cfg.DoubleSnapshot,
		longevity:      cfg.Longevity,
		memoryMode:     cfg.MemoryMode,
		dumpBlobLayout: cfg.DumpBlobLayout,
		mintAPI:        cfg.MintAPI,
		pool:           cfg.Pool,
		filter:         cfg.Filter,
		state:          StateIdle,
	}
}

// RegisterListener wires l into whichever listener categories it
// implements; a single value may satisfy more than one.
func (d *Driver) RegisterListener(l any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if bl, ok := l.(BlobLoadedListener); ok {
		d.blobLoadedListeners = append(d.blobLoadedListeners, bl)
	}
	if ta, ok := l.(TransitionAwareListener); ok {
		d.transitionAwareListeners = append(d.transitionAwareListeners, ta)
	}
	if ul, ok := l.(UpdateListener); ok {
		d.updateListeners = append(d.updateListeners, ul)
	}
}

// CurrentVersion returns the version of the last successfully applied
// plan.
func (d *Driver) CurrentVersion() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentVersion
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ObserveAPIHandle registers handle with the stale-reference detector,
// called by the embedder-facing layer each time it mints a new read API.
// It is a free function rather than a Driver method because Go methods
// cannot carry their own type parameters; T is resolved at the call site,
// which is what lets the detector hold a weak.Pointer[T] to the handle
// itself instead of an untyped wrapper.
func ObserveAPIHandle[T any](d *Driver, handle *T) {
	version := d.CurrentVersion()
	wp := weak.Make(handle)
	d.stale.observe(version, func() bool { return wp.Value() != nil })
}

// SweepStaleReferences runs one pass of the stale-reference detector,
// returning how many previously observed handles are still reachable
// past their generation.
func (d *Driver) SweepStaleReferences() int {
	return d.stale.Sweep()
}

// Historical returns the current historical state generation, the root
// of the weak back-reference chain a caller can walk via Prior.
func (d *Driver) Historical() *HistoricalState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.historical
}

// Update applies plan, transitioning through the driver's state machine.
// On any failure, the driver moves to Failed, marks the offending
// blob(s) in the tracker, and returns the error. currentVersion and the
// historical chain are left unchanged on every failure, including one
// that happens after a snapshot has already reset the engine; the driver
// keeps no separate poisoned flag, so a later plan is applied to whatever
// state the failed attempt left in the engine.
func (d *Driver) Update(plan *Plan) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.doubleSnapshot.Allow {
		if identity, failed := d.tracker.Intersects(plan); failed {
			return hollowerrors.NewKnownFailingTransitionError(string(identity)).
				WithDestinationVersion(plan.DestinationVersion)
		}
	}

	deps := blobreader.Dependencies{
		Engine:         d.engine,
		Filter:         d.filter,
		Pool:           d.pool,
		MemoryMode:     d.memoryMode,
		Logger:         d.logger,
		DumpBlobLayout: d.dumpBlobLayout,
	}

	if plan.IsSnapshotPlan() {
		d.state = StateApplyingSnapshot
		d.engine.Reset()

		if _, err := blobreader.ReadSnapshot(plan.Snapshot, deps); err != nil {
			d.state = StateFailed
			d.tracker.MarkPlan(plan)
			return err
		}
		d.notifyBlobLoaded(plan.Snapshot)
		d.notifySnapshotApplied(plan.DestinationVersion)
	}

	d.state = StateApplyingDeltas
	for _, deltaBlob := range plan.Deltas {
		if _, err := blobreader.ReadDelta(deltaBlob, deps); err != nil {
			d.state = StateFailed
			d.tracker.Mark(deltaBlob.Identity())
			return err
		}
		d.notifyBlobLoaded(deltaBlob)
	}

	d.state = StateNotifyingListeners
	if plan.IsSnapshotPlan() {
		d.notifySnapshotUpdateOccurred(plan.DestinationVersion)
	} else {
		d.notifyDeltaUpdateOccurred(plan.DestinationVersion)
	}

	d.currentVersion = plan.DestinationVersion
	d.historical = NewHistoricalState(d.currentVersion, d.historical)
	d.state = StateIdle
	return nil
}

func (d *Driver) notifyBlobLoaded(b *blob.Blob) {
	for _, l := range d.blobLoadedListeners {
		l.BlobLoaded(b)
	}
}

// mintForNotify builds the read handle passed to listener callbacks for
// version, or nil if the driver was never configured with a MintAPI hook.
func (d *Driver) mintForNotify(version uint64) any {
	if d.mintAPI == nil {
		return nil
	}
	return d.mintAPI(d.engine, version)
}

func (d *Driver) notifySnapshotApplied(version uint64) {
	api := d.mintForNotify(version)
	for _, l := range d.transitionAwareListeners {
		l.SnapshotApplied(api, d.engine, version)
	}
}

func (d *Driver) notifySnapshotUpdateOccurred(version uint64) {
	api := d.mintForNotify(version)
	for _, l := range d.updateListeners {
		l.SnapshotUpdateOccurred(api, d.engine, version)
	}
}

func (d *Driver) notifyDeltaUpdateOccurred(version uint64) {
	api := d.mintForNotify(version)
	for _, l := range d.updateListeners {
		l.DeltaUpdateOccurred(api, d.engine, version)
	}
}

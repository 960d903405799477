package consumer

import (
	"runtime"
	"testing"
	"weak"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/pkg/logger"
)

type testAPIHandle struct{ v int }

func TestSweepReportsStillReachableStaleHandle(t *testing.T) {
	d := NewStaleReferenceDetector(logger.NewNop())

	handle := &testAPIHandle{v: 1}
	wp := weak.Make(handle)
	d.observe(1, func() bool { return wp.Value() != nil })
	d.observe(2, func() bool { return true })

	count := d.Sweep()
	require.Equal(t, 1, count, "handle from version 1 outlives current version 2 while kept alive by the test")
	runtime.KeepAlive(handle)
}

func TestSweepDropsCollectedHandles(t *testing.T) {
	d := NewStaleReferenceDetector(logger.NewNop())

	func() {
		handle := &testAPIHandle{v: 2}
		wp := weak.Make(handle)
		d.observe(1, func() bool { return wp.Value() != nil })
	}()

	d.observe(2, func() bool { return true })

	runtime.GC()
	runtime.GC()

	count := d.Sweep()
	require.Equal(t, 0, count, "a collected handle is dropped rather than reported stale")
}

func TestSweepReturnsZeroWhenNoObservations(t *testing.T) {
	d := NewStaleReferenceDetector(logger.NewNop())
	require.Equal(t, 0, d.Sweep())
}

// Package options provides data structures and functions for configuring
// the dataset engine: segment sizing for the segmented arrays, the blob
// directory/prefix naming convention, the memory mode, the
// double-snapshot gate, long-lived-object support, and an optional debug
// flag for the blob-layout diagnostic dump.
package options

import (
	"strings"

	"github.com/c2h5oh/datasize"
)

// MemoryMode controls how a type state's segmented arrays are backed.
type MemoryMode string

const (
	// MemoryModeOnHeap eagerly copies blob payload bytes into owned,
	// recycler-managed buffers instead of referencing the mapped region.
	MemoryModeOnHeap MemoryMode = "ON_HEAP"

	// MemoryModeSharedLazy memory-maps the blob and demand-pages segments
	// as they are first touched.
	MemoryModeSharedLazy MemoryMode = "SHARED_MEMORY_LAZY"

	// MemoryModeSharedEager memory-maps the blob exactly as
	// MemoryModeSharedLazy does; segments are not prefaulted.
	MemoryModeSharedEager MemoryMode = "SHARED_MEMORY_EAGER"
)

// DoubleSnapshotConfig controls whether the consumer update driver may
// re-snapshot after a delta failure.
type DoubleSnapshotConfig struct {
	// Allow, when true, permits a fresh snapshot to replace a read state
	// engine after a delta has failed, subject to the failed-transition
	// tracker rejecting plans that retry a known-bad blob.
	Allow bool `json:"allow"`
}

// ObjectLongevityConfig controls whether read APIs are handed out through
// a generation-safe indirection for consumers that hold references across
// multiple updates.
type ObjectLongevityConfig struct {
	// EnableLongLivedObjectSupport is carried into the consumer driver's
	// configuration. No proxy data-access indirection is built from it:
	// API handles are minted the same way whether it is true or false.
	EnableLongLivedObjectSupport bool `json:"enableLongLivedObjectSupport"`
}

// DebugConfig gates optional diagnostic output that has no effect on
// correctness.
type DebugConfig struct {
	// DumpBlobLayout, when true, logs every TypeBlock the blob reader
	// walks: for a snapshot the type name, schema kind and whether the
	// filter includes it; for a delta the type name and whether the
	// engine already holds that type.
	DumpBlobLayout bool `json:"dumpBlobLayout"`
}

// ArrayOptions configures the segmented byte/long arrays shared by every
// type state.
type ArrayOptions struct {
	// SegmentLengthBits is L in "segment length = 2^L bytes". The type
	// states do not read this field: their segmented arrays are always
	// built with DefaultSegmentLengthBits.
	//
	//   - Default: 16 (64KiB segments)
	//   - Minimum: 10 (1KiB segments)
	//   - Maximum: 20 (1MiB segments)
	SegmentLengthBits uint8 `json:"segmentLengthBits"`

	// RecyclerPoolSize bounds how much memory the memory recycler may hold
	// in reusable segment buffers across its two generations.
	//
	// Default: 64MiB
	RecyclerPoolSize datasize.ByteSize `json:"recyclerPoolSize"`
}

// Options defines the configuration parameters for the dataset engine. It
// provides control over blob naming, memory layout, and update behavior.
type Options struct {
	// DataDir specifies the base path under which blob files are
	// discovered when a local filesystem blob source is used.
	//
	// Default: "/var/lib/hollow"
	DataDir string `json:"dataDir"`

	// BlobOptions configures how snapshot/delta blob files are named and
	// located on disk.
	BlobOptions *BlobNamingOptions `json:"blobOptions"`

	// Array configures the segmented byte/long array layout.
	Array ArrayOptions `json:"array"`

	// MemoryMode selects how type states back their segmented arrays.
	//
	// Default: SHARED_MEMORY_LAZY
	MemoryMode MemoryMode `json:"memoryMode"`

	// DoubleSnapshot controls re-snapshot-after-delta-failure behavior.
	DoubleSnapshot DoubleSnapshotConfig `json:"doubleSnapshotConfig"`

	// ObjectLongevity controls long-lived read API handle support.
	ObjectLongevity ObjectLongevityConfig `json:"objLongevityConfig"`

	// Debug gates optional, non-semantic diagnostic output.
	Debug DebugConfig `json:"debug"`
}

// BlobNamingOptions controls how snapshot/delta blob files are named and
// located within the blob directory.
type BlobNamingOptions struct {
	// Directory specifies where blob files are stored, relative to DataDir.
	//
	// Default: "/blobs"
	Directory string `json:"directory"`

	// Prefix specifies the filename prefix for blob files.
	//
	// Default: "dataset"
	Prefix string `json:"prefix"`
}

// OptionFunc is a function type that modifies the engine's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.BlobOptions = opts.BlobOptions
		o.Array = opts.Array
		o.MemoryMode = opts.MemoryMode
		o.DoubleSnapshot = opts.DoubleSnapshot
		o.ObjectLongevity = opts.ObjectLongevity
		o.Debug = opts.Debug
	}
}

// WithDataDir sets the base directory under which blob files are discovered.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithBlobDirectory sets the directory (relative to DataDir) that holds blob files.
func WithBlobDirectory(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.BlobOptions.Directory = directory
		}
	}
}

// WithBlobPrefix sets the filename prefix for blob files.
func WithBlobPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.BlobOptions.Prefix = prefix
		}
	}
}

// WithMemoryMode selects how type states back their segmented arrays.
func WithMemoryMode(mode MemoryMode) OptionFunc {
	return func(o *Options) {
		switch mode {
		case MemoryModeOnHeap, MemoryModeSharedLazy, MemoryModeSharedEager:
			o.MemoryMode = mode
		}
	}
}

// WithDoubleSnapshotAllowed enables or disables re-snapshot after a delta failure.
func WithDoubleSnapshotAllowed(allow bool) OptionFunc {
	return func(o *Options) {
		o.DoubleSnapshot.Allow = allow
	}
}

// WithLongLivedObjectSupport sets ObjectLongevity.EnableLongLivedObjectSupport;
// no proxy indirection for API handles is built from it.
func WithLongLivedObjectSupport(enable bool) OptionFunc {
	return func(o *Options) {
		o.ObjectLongevity.EnableLongLivedObjectSupport = enable
	}
}

// WithSegmentLengthBits sets Array.SegmentLengthBits; the type states'
// segmented arrays do not read it (see ArrayOptions.SegmentLengthBits).
func WithSegmentLengthBits(bits uint8) OptionFunc {
	return func(o *Options) {
		if bits >= MinSegmentLengthBits && bits <= MaxSegmentLengthBits {
			o.Array.SegmentLengthBits = bits
		}
	}
}

// WithRecyclerPoolSize bounds the memory recycler's reusable buffer pool.
func WithRecyclerPoolSize(size datasize.ByteSize) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.Array.RecyclerPoolSize = size
		}
	}
}

// WithDebugDumpBlobLayout turns on the optional, non-semantic blob-layout
// diagnostic log.
func WithDebugDumpBlobLayout(enable bool) OptionFunc {
	return func(o *Options) {
		o.Debug.DumpBlobLayout = enable
	}
}

package options

import "github.com/c2h5oh/datasize"

const (
	// DefaultDataDir specifies the default base directory the engine will
	// use to discover blob files when a local filesystem blob source is
	// configured.
	DefaultDataDir = "/var/lib/hollow"

	// DefaultBlobDirectory specifies the default subdirectory (within
	// DataDir) where blob files are stored.
	DefaultBlobDirectory = "/blobs"

	// DefaultBlobPrefix defines the default prefix for blob file names.
	// For example, a snapshot blob might be named "dataset_0000000001.snapshot".
	DefaultBlobPrefix = "dataset"

	// DefaultSegmentLengthBits is L in "segment length = 2^L bytes" for
	// the segmented byte/long arrays: 2^16 = 64KiB segments.
	DefaultSegmentLengthBits uint8 = 16

	// MinSegmentLengthBits is the smallest segment length this engine
	// accepts: 2^10 = 1KiB.
	MinSegmentLengthBits uint8 = 10

	// MaxSegmentLengthBits is the largest segment length this engine
	// accepts: 2^20 = 1MiB.
	MaxSegmentLengthBits uint8 = 20

	// DefaultRecyclerPoolSize bounds the memory recycler's reusable
	// segment buffer pool in ON_HEAP mode.
	DefaultRecyclerPoolSize = 64 * datasize.MB
)

// Holds the default configuration settings for a dataset engine instance.
var defaultOptions = Options{
	DataDir: DefaultDataDir,
	BlobOptions: &BlobNamingOptions{
		Directory: DefaultBlobDirectory,
		Prefix:    DefaultBlobPrefix,
	},
	Array: ArrayOptions{
		SegmentLengthBits: DefaultSegmentLengthBits,
		RecyclerPoolSize:  DefaultRecyclerPoolSize,
	},
	MemoryMode: MemoryModeSharedLazy,
}

// NewDefaultOptions returns a copy of the default Options.
func NewDefaultOptions() Options {
	opts := defaultOptions
	blobOpts := *defaultOptions.BlobOptions
	opts.BlobOptions = &blobOpts
	return opts
}

// Package index provides the in-memory hash table that backs an object
// type's primary-key lookup, one instance per type that declares a
// primary key. It is rebuilt wholesale after every snapshot rather than
// incrementally maintained across deltas, since a delta can touch any
// ordinal and the full rebuild is cheap relative to reading the delta
// itself.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/iamNilotpal/hollow/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new Index instance configured according
// to the provided parameters. The returned Index is immediately ready
// for concurrent use and includes optimizations like pre-allocated map
// capacity.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.TypeName == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		typeName: config.TypeName,
		log:      config.Logger,
		entries:  make(map[string]int64, 2046),
	}, nil
}

// Put records ordinal as the row for key, overwriting any prior entry.
func (idx *Index) Put(key string, ordinal int64) error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[key] = ordinal
	return nil
}

// Get returns the ordinal stored for key, if any.
func (idx *Index) Get(key string) (int64, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ordinal, ok := idx.entries[key]
	return ordinal, ok
}

// Len returns the number of entries currently indexed.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Close gracefully shuts down the Index, cleaning up resources and
// ensuring that the index cannot be used after closure.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing primary key index", "type", idx.typeName)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.entries)
	idx.entries = nil

	return nil
}

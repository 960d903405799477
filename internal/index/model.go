package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Index is the in-memory hash table backing one object type's primary-
// key lookup. It keeps the same minimal-metadata-in-memory principle as
// a Bitcask-style key index, but the value a key maps to is no longer a
// disk offset: it is the ordinal of a row already resident in that
// type's mapped segment arrays, so a lookup costs a map read plus the
// field accessors the caller then drives off the ordinal itself.
type Index struct {
	typeName string             // The object type this index was built for.
	log      *zap.SugaredLogger // Structured logger for lifecycle events.
	entries  map[string]int64   // Maps a primary-key string to its ordinal.
	mu       sync.RWMutex       // Protects concurrent access to entries.
	closed   atomic.Bool        // Indicates whether the index has been closed.
}

// Config encapsulates the parameters required to initialize an Index.
type Config struct {
	TypeName string             // The object type this index is scoped to.
	Logger   *zap.SugaredLogger // Structured logger for Index operations.
}

package typestate

import (
	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
)

// MapEntry is one key/value ordinal pair of a map ordinal's contents,
// each ordinal referencing a record in the map schema's key/value types
// respectively.
type MapEntry struct {
	KeyOrdinal   int64
	ValueOrdinal int64
}

// MapTypeReadState populates and serves key/value collections. Wire
// representation reuses the collection shard framing: each map ordinal's
// "elements" are its key/value ordinals interleaved, two entries per
// MapEntry.
type MapTypeReadState struct {
	listeners
	schema *schema.MapSchema
	shards []*collectionShard
}

func newMapTypeReadState(s *schema.MapSchema) *MapTypeReadState {
	return &MapTypeReadState{schema: s}
}

func (s *MapTypeReadState) TypeName() string      { return s.schema.TypeName() }
func (s *MapTypeReadState) Schema() schema.Schema { return s.schema }
func (s *MapTypeReadState) NumShards() int        { return len(s.shards) }

func (s *MapTypeReadState) ReadSnapshot(b *blob.Blob, mode options.MemoryMode, pool *recycler.Recycler) error {
	numShards, err := readShardPreamble(b)
	if err != nil {
		return err
	}
	shards := make([]*collectionShard, numShards)
	for i := 0; i < numShards; i++ {
		shard, err := readCollectionShard(b)
		if err != nil {
			return hollowerrors.NewMalformedBlobError(err, "failed to read map shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
		shards[i] = shard
	}
	s.shards = shards
	return nil
}

func (s *MapTypeReadState) DiscardSnapshot(b *blob.Blob) error {
	numShards, err := readShardPreamble(b)
	if err != nil {
		return err
	}
	for i := 0; i < numShards; i++ {
		if err := discardCollectionShard(b); err != nil {
			return hollowerrors.NewMalformedBlobError(err, "failed to discard map shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
	}
	return nil
}

func (s *MapTypeReadState) ApplyDelta(b *blob.Blob, deltaSchema schema.Schema, mode options.MemoryMode, pool *recycler.Recycler) error {
	if !schema.Equals(s.schema, deltaSchema) {
		return hollowerrors.NewSchemaMismatchError(s.TypeName())
	}

	numShards, err := readShardPreamble(b)
	if err != nil {
		return err
	}
	if numShards != len(s.shards) {
		return hollowerrors.NewTransitionShardMismatchError(s.TypeName(), len(s.shards), numShards)
	}
	next := make([]*collectionShard, numShards)
	for i := 0; i < numShards; i++ {
		shard, err := readCollectionShard(b)
		if err != nil {
			return hollowerrors.NewMalformedBlobError(err, "failed to apply map delta shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
		next[i] = shard
	}
	s.shards = next
	return nil
}

func (s *MapTypeReadState) DiscardDelta(b *blob.Blob) error {
	return s.DiscardSnapshot(b)
}

func (s *MapTypeReadState) Populated() []int64 {
	var out []int64
	numShards := int64(len(s.shards))
	for i, shard := range s.shards {
		for _, local := range shard.pop.ordinals() {
			out = append(out, local*numShards+int64(i))
		}
	}
	return out
}

func (s *MapTypeReadState) Destroy() error {
	s.shards = nil
	return nil
}

// Entries returns the key/value ordinal pairs of the map at ordinal.
func (s *MapTypeReadState) Entries(ordinal int64) ([]MapEntry, bool) {
	numShards := len(s.shards)
	if numShards == 0 {
		return nil, false
	}
	shard := s.shards[shardOf(ordinal, numShards)]
	local := ordinal / int64(numShards)
	if !shard.pop.isPopulated(local) {
		return nil, false
	}

	raw := shard.elements[local]
	entries := make([]MapEntry, len(raw)/2)
	for i := range entries {
		entries[i] = MapEntry{KeyOrdinal: raw[2*i], ValueOrdinal: raw[2*i+1]}
	}
	return entries, true
}

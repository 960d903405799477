package typestate

import (
	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
)

// SetTypeReadState populates and serves unordered, deduplicated
// collections. Deduplication and hash-key comparison are a producer-side
// concern; the reader only needs each ordinal's member element ordinals.
type SetTypeReadState struct {
	listeners
	schema *schema.SetSchema
	shards []*collectionShard
}

func newSetTypeReadState(s *schema.SetSchema) *SetTypeReadState {
	return &SetTypeReadState{schema: s}
}

func (s *SetTypeReadState) TypeName() string      { return s.schema.TypeName() }
func (s *SetTypeReadState) Schema() schema.Schema { return s.schema }
func (s *SetTypeReadState) NumShards() int        { return len(s.shards) }

func (s *SetTypeReadState) ReadSnapshot(b *blob.Blob, mode options.MemoryMode, pool *recycler.Recycler) error {
	numShards, err := readShardPreamble(b)
	if err != nil {
		return err
	}
	shards := make([]*collectionShard, numShards)
	for i := 0; i < numShards; i++ {
		shard, err := readCollectionShard(b)
		if err != nil {
			return hollowerrors.NewMalformedBlobError(err, "failed to read set shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
		shards[i] = shard
	}
	s.shards = shards
	return nil
}

func (s *SetTypeReadState) DiscardSnapshot(b *blob.Blob) error {
	numShards, err := readShardPreamble(b)
	if err != nil {
		return err
	}
	for i := 0; i < numShards; i++ {
		if err := discardCollectionShard(b); err != nil {
			return hollowerrors.NewMalformedBlobError(err, "failed to discard set shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
	}
	return nil
}

func (s *SetTypeReadState) ApplyDelta(b *blob.Blob, deltaSchema schema.Schema, mode options.MemoryMode, pool *recycler.Recycler) error {
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
			return hollowerrors.NewMalformedBlobError(err, "failed to apply set delta shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
		next[i] = shard
	}
	s.shards = next
	return nil
}

func (s *SetTypeReadState) DiscardDelta(b *blob.Blob) error {
	return s.DiscardSnapshot(b)
}

func (s *SetTypeReadState) Populated() []int64 {
	var out []int64
	numShards := int64(len(s.shards))
	for i, shard := range s.shards {
		for _, local := range shard.pop.ordinals() {
			out = append(out, local*numShards+int64(i))
		}
	}
	return out
}

func (s *SetTypeReadState) Destroy() error {
	s.shards = nil
	return nil
}

// Members returns the member element ordinals of the set at ordinal.
func (s *SetTypeReadState) Members(ordinal int64) ([]int64, bool) {
	numShards := len(s.shards)
	if numShards == 0 {
		return nil, false
	}
	shard := s.shards[shardOf(ordinal, numShards)]
	local := ordinal / int64(numShards)
	if !shard.pop.isPopulated(local) {
		return nil, false
	}
	return shard.elements[local], true
}

package typestate

import (
	"github.com/iamNilotpal/hollow/internal/recycler"
	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/pkg/options"
	"github.com/iamNilotpal/hollow/pkg/schema"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

// collectionShard is the population bitmap plus, per populated ordinal,
// the ordered element ordinals it refers to into the collection's
// element type. Shared by list, set, and map (a map's "elements" are the
// interleaved key/value ordinal pairs).
type collectionShard struct {
	pop      *populationBitmap
	elements map[int64][]int64
}

func readCollectionShard(b *blob.Blob) (*collectionShard, error) {
	length, err := readShardPayloadLength(b)
	if err != nil {
		return nil, err
	}
	start := b.Position()

	pop, err := readPopulationBitmap(b)
	if err != nil {
		return nil, err
	}

	elements := make(map[int64][]int64)
	for _, ordinal := range pop.ordinals() {
		count, err := varint.ReadUint64(b)
		if err != nil {
			return nil, hollowerrors.NewMalformedBlobError(err, "failed to read collection element count")
		}
		elems := make([]int64, count)
		for i := range elems {
			e, err := varint.ReadInt64(b)
			if err != nil {
				return nil, hollowerrors.NewMalformedBlobError(err, "failed to read collection element ordinal")
			}
			elems[i] = e
		}
		elements[ordinal] = elems
	}

	// Defensively resync to the declared shard boundary: protects
	// against a malformed stream that under- or over-reads relative to
	// its own length prefix.
	consumed := b.Position() - start
	if consumed != length {
		if err := b.Skip(length - consumed); err != nil {
			return nil, hollowerrors.NewMalformedBlobError(nil, "collection shard did not match its declared length")
		}
	}

	return &collectionShard{pop: pop, elements: elements}, nil
}

func discardCollectionShard(b *blob.Blob) error {
	length, err := readShardPayloadLength(b)
	if err != nil {
		return err
	}
	return b.Skip(length)
}

// ListTypeReadState populates and serves ordered collections: each
// ordinal maps to an ordered sequence of element ordinals.
type ListTypeReadState struct {
	listeners
	schema *schema.ListSchema
	shards []*collectionShard
}

func newListTypeReadState(s *schema.ListSchema) *ListTypeReadState {
	return &ListTypeReadState{schema: s}
}

func (s *ListTypeReadState) TypeName() string      { return s.schema.TypeName() }
func (s *ListTypeReadState) Schema() schema.Schema { return s.schema }
func (s *ListTypeReadState) NumShards() int        { return len(s.shards) }

func (s *ListTypeReadState) ReadSnapshot(b *blob.Blob, mode options.MemoryMode, pool *recycler.Recycler) error {
	numShards, err := readShardPreamble(b)
	if err != nil {
		return err
	}
	shards := make([]*collectionShard, numShards)
	for i := 0; i < numShards; i++ {
		shard, err := readCollectionShard(b)
		if err != nil {
			return hollowerrors.NewMalformedBlobError(err, "failed to read list shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
		shards[i] = shard
	}
	s.shards = shards
	return nil
}

func (s *ListTypeReadState) DiscardSnapshot(b *blob.Blob) error {
	numShards, err := readShardPreamble(b)
	if err != nil {
		return err
	}
	for i := 0; i < numShards; i++ {
		if err := discardCollectionShard(b); err != nil {
			return hollowerrors.NewMalformedBlobError(err, "failed to discard list shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
	}
	return nil
}

func (s *ListTypeReadState) ApplyDelta(b *blob.Blob, deltaSchema schema.Schema, mode options.MemoryMode, pool *recycler.Recycler) error {
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
			return hollowerrors.NewMalformedBlobError(err, "failed to apply list delta shard").WithTypeName(s.TypeName()).WithShardIndex(i)
		}
		next[i] = shard
	}
	s.shards = next
	return nil
}

func (s *ListTypeReadState) DiscardDelta(b *blob.Blob) error {
	return s.DiscardSnapshot(b)
}

func (s *ListTypeReadState) Populated() []int64 {
	var out []int64
	numShards := int64(len(s.shards))
	for i, shard := range s.shards {
		for _, local := range shard.pop.ordinals() {
			out = append(out, local*numShards+int64(i))
		}
	}
	return out
}

func (s *ListTypeReadState) Destroy() error {
	s.shards = nil
	return nil
}

// Get returns the ordered element ordinals referenced by ordinal.
func (s *ListTypeReadState) Get(ordinal int64) ([]int64, bool) {
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

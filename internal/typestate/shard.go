package typestate

import (
	"github.com/iamNilotpal/hollow/pkg/blob"
	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

// readShardPreamble parses the ShardPreamble framing shared by every
// type kind: a backwards-compatibility sentinel, an optional
// forwards-compatibility padding region, and the shard count.
func readShardPreamble(b *blob.Blob) (int, error) {
	v0, err := varint.ReadUint64(b)
	if err != nil {
		return 0, hollowerrors.NewMalformedBlobError(err, "failed to read shard preamble sentinel")
	}
	if v0 == 0 {
		return 1, nil
	}

	fwdCompatLen, err := varint.ReadUint64(b)
	if err != nil {
		return 0, hollowerrors.NewMalformedBlobError(err, "failed to read forward-compatibility length")
	}
	if err := b.Skip(int64(fwdCompatLen)); err != nil {
		return 0, err
	}

	numShards, err := varint.ReadUint64(b)
	if err != nil {
		return 0, hollowerrors.NewMalformedBlobError(err, "failed to read shard count")
	}
	if numShards == 0 || numShards&(numShards-1) != 0 {
		return 0, hollowerrors.NewMalformedBlobError(nil, "shard count is not a power of two")
	}
	return int(numShards), nil
}

// shardOf returns the shard index owning ordinal under numShards shards.
func shardOf(ordinal int64, numShards int) int {
	return int(ordinal & int64(numShards-1))
}

// populationBitmap records which ordinals in a shard are populated.
type populationBitmap struct {
	maxOrdinal int64 // -1 means the shard is empty
	bits       []byte
}

// readPopulationBitmap reads the variable-length max-ordinal VarInt
// followed by its bitmap bytes directly off the blob's sequential cursor.
func readPopulationBitmap(b *blob.Blob) (*populationBitmap, error) {
	maxOrdinal, err := varint.ReadInt64(b)
	if err != nil {
		return nil, hollowerrors.NewMalformedBlobError(err, "failed to read shard max ordinal")
	}
	if maxOrdinal < -1 {
		return nil, hollowerrors.NewMalformedBlobError(nil, "negative shard max ordinal")
	}

	numBytes := int64(0)
	if maxOrdinal >= 0 {
		numBytes = maxOrdinal/8 + 1
	}

	bits := make([]byte, numBytes)
	for i := range bits {
		c, err := b.ReadByte()
		if err != nil {
			return nil, hollowerrors.NewMalformedBlobError(err, "truncated population bitmap")
		}
		bits[i] = c
	}

	return &populationBitmap{maxOrdinal: maxOrdinal, bits: bits}, nil
}

func (p *populationBitmap) isPopulated(ordinal int64) bool {
	if ordinal < 0 || ordinal > p.maxOrdinal {
		return false
	}
	return p.bits[ordinal/8]&(1<<uint(ordinal%8)) != 0
}

func (p *populationBitmap) ordinals() []int64 {
	var out []int64
	for o := int64(0); o <= p.maxOrdinal; o++ {
		if p.isPopulated(o) {
			out = append(out, o)
		}
	}
	return out
}

// shardPayloadLength reads the VarInt byte length that precedes every
// shard's framed payload, letting discard paths skip a whole shard
// without interpreting its contents.
func readShardPayloadLength(b *blob.Blob) (int64, error) {
	length, err := varint.ReadUint64(b)
	if err != nil {
		return 0, hollowerrors.NewMalformedBlobError(err, "failed to read shard payload length")
	}
	return int64(length), nil
}

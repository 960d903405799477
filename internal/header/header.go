// Package header implements the blob header framing shared by snapshot
// and delta blobs: magic prefix, format version, the origin/destination
// randomized tag pair, and a length-prefixed set of free-form string
// tags.
package header

import (
	"encoding/binary"

	hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

// Magic is the fixed 4-byte prefix every blob begins with.
const Magic uint32 = 0x484f4c57 // "HOLW"

// MinSupportedVersion and MaxSupportedVersion bound the blobFormatVersion
// values this engine accepts.
const (
	MinSupportedVersion uint32 = 1
	MaxSupportedVersion uint32 = 1
)

// Header is the parsed result of a blob's framing: version, the tag pair
// used to validate delta chaining, and arbitrary key/value metadata.
type Header struct {
	Version     uint32
	OriginTag   uint64
	DestTag     uint64
	Tags        map[string]string
}

type byteReaderAt interface {
	ReadByte() (byte, error)
	Read(p []byte) (int, error)
}

// Read parses a Header from r. Snapshot and delta headers share the same
// framing, so Read does not distinguish them; a caller applying a delta
// checks the origin tag with AssertOrigin after parsing.
func Read(r byteReaderAt) (*Header, error) {
	var magicBuf [4]byte
	if _, err := readFull(r, magicBuf[:]); err != nil {
		return nil, err
	}
	magic := binary.LittleEndian.Uint32(magicBuf[:])
	if magic != Magic {
		return nil, hollowerrors.NewMalformedBlobError(nil, "blob magic prefix does not match")
	}

	var versionBuf [4]byte
	if _, err := readFull(r, versionBuf[:]); err != nil {
		return nil, err
	}
	version := binary.LittleEndian.Uint32(versionBuf[:])
	if version < MinSupportedVersion || version > MaxSupportedVersion {
		return nil, hollowerrors.NewUnsupportedVersionError(version, MinSupportedVersion, MaxSupportedVersion)
	}

	originTag, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	destTag, err := readUint64(r)
	if err != nil {
		return nil, err
	}

	tagCount, err := varint.ReadUint64(r)
	if err != nil {
		return nil, hollowerrors.NewMalformedBlobError(err, "failed to read header tag count")
	}

	tags := make(map[string]string, tagCount)
	for i := uint64(0); i < tagCount; i++ {
		key, err := varint.ReadString(r)
		if err != nil {
			return nil, hollowerrors.NewMalformedBlobError(err, "failed to read header tag key")
		}
		value, err := varint.ReadString(r)
		if err != nil {
			return nil, hollowerrors.NewMalformedBlobError(err, "failed to read header tag value")
		}
		tags[key] = value
	}

	return &Header{Version: version, OriginTag: originTag, DestTag: destTag, Tags: tags}, nil
}

// AssertOrigin validates that the header's origin tag matches the
// engine's current randomized tag, as required before a delta may be
// applied.
func (h *Header) AssertOrigin(currentTag uint64) error {
	if h.OriginTag != currentTag {
		return hollowerrors.NewWrongOriginError(h.OriginTag, currentTag)
	}
	return nil
}

func readUint64(r byteReaderAt) (uint64, error) {
	var buf [8]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readFull(r byteReaderAt, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, hollowerrors.NewMalformedBlobError(err, "truncated blob header")
		}
	}
	return total, nil
}

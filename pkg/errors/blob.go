package errors

// BlobError is a specialized error type for failures that occur while
// reading a snapshot or delta blob. It embeds baseError to inherit
// chaining and structured details, then adds the blob-specific context
// needed to pinpoint exactly where in the stream a read went wrong.
type BlobError struct {
	*baseError

	// typeName identifies which type's sub-stream was being read, empty
	// if the failure occurred before any type was parsed (e.g. in the
	// header).
	typeName string

	// byteOffset records the blob's logical read position at the point of
	// failure, used to diagnose truncation and to verify the "discard
	// leaves the stream position where a full read would have" invariant.
	byteOffset int64

	// shardIndex records which shard was being populated, -1 if not
	// applicable.
	shardIndex int
}

// NewBlobError creates a new blob-specific error.
func NewBlobError(err error, code ErrorCode, msg string) *BlobError {
	return &BlobError{baseError: NewBaseError(err, code, msg), shardIndex: -1}
}

// WithMessage updates the error message while maintaining the BlobError type.
func (be *BlobError) WithMessage(msg string) *BlobError {
	be.baseError.WithMessage(msg)
	return be
}

// WithCode sets the error code while preserving the BlobError type.
func (be *BlobError) WithCode(code ErrorCode) *BlobError {
	be.baseError.WithCode(code)
	return be
}

// WithDetail adds contextual information while maintaining the BlobError type.
func (be *BlobError) WithDetail(key string, value any) *BlobError {
	be.baseError.WithDetail(key, value)
	return be
}

// WithTypeName records which type's sub-stream was being read.
func (be *BlobError) WithTypeName(name string) *BlobError {
	be.typeName = name
	return be
}

// WithByteOffset records the blob's logical read position at failure time.
func (be *BlobError) WithByteOffset(offset int64) *BlobError {
	be.byteOffset = offset
	return be
}

// WithShardIndex records which shard was being populated at failure time.
func (be *BlobError) WithShardIndex(idx int) *BlobError {
	be.shardIndex = idx
	return be
}

// TypeName returns the type name associated with the error, if any.
func (be *BlobError) TypeName() string { return be.typeName }

// ByteOffset returns the blob's logical read position at failure time.
func (be *BlobError) ByteOffset() int64 { return be.byteOffset }

// ShardIndex returns the shard index associated with the error, or -1.
func (be *BlobError) ShardIndex() int { return be.shardIndex }

// NewMalformedBlobError builds the common "truncated or invalid bytes"
// error raised by the header and schema readers, the type states, and the
// segmented arrays, which also wrap the VarInt codec's own ErrMalformed in
// it.
func NewMalformedBlobError(cause error, msg string) *BlobError {
	return NewBlobError(cause, ErrorCodeMalformedBlob, msg)
}

// NewUnsupportedVersionError builds the error raised when a header's
// blobFormatVersion falls outside the accepted range.
func NewUnsupportedVersionError(version, minVersion, maxVersion uint32) *BlobError {
	return NewBlobError(nil, ErrorCodeUnsupportedVersion, "blob format version is not supported").
		WithDetail("version", version).
		WithDetail("minSupportedVersion", minVersion).
		WithDetail("maxSupportedVersion", maxVersion)
}

// NewOutOfRangeError builds the error raised when a read falls outside the
// populated range of a segmented array, shard, or ordinal space.
func NewOutOfRangeError(msg string, index, bound int64) *BlobError {
	return NewBlobError(nil, ErrorCodeOutOfRange, msg).
		WithDetail("index", index).
		WithDetail("bound", bound)
}

package errors

// TransitionError is a specialized error type for failures that occur
// while the consumer update driver applies an update plan: a schema
// mismatch between a delta and its resident snapshot, a delta whose
// origin tag does not match the engine's current tag, or a plan that
// intersects the failed-transition tracker.
type TransitionError struct {
	*baseError

	// blobIdentity identifies which blob in the plan the failure is
	// attributed to, used by the driver to mark the correct entry (or
	// entries) in the failed-transition tracker.
	blobIdentity string

	// destinationVersion is the version the plan was attempting to reach.
	destinationVersion uint64
}

// NewTransitionError creates a new transition-specific error.
func NewTransitionError(err error, code ErrorCode, msg string) *TransitionError {
	return &TransitionError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the TransitionError type.
func (te *TransitionError) WithMessage(msg string) *TransitionError {
	te.baseError.WithMessage(msg)
	return te
}

// WithCode sets the error code while preserving the TransitionError type.
func (te *TransitionError) WithCode(code ErrorCode) *TransitionError {
	te.baseError.WithCode(code)
	return te
}

// WithDetail adds contextual information while maintaining the TransitionError type.
func (te *TransitionError) WithDetail(key string, value any) *TransitionError {
	te.baseError.WithDetail(key, value)
	return te
}

// WithBlobIdentity records which blob the failure is attributed to.
func (te *TransitionError) WithBlobIdentity(identity string) *TransitionError {
	te.blobIdentity = identity
	return te
}

// WithDestinationVersion records the version the plan was attempting to reach.
func (te *TransitionError) WithDestinationVersion(v uint64) *TransitionError {
	te.destinationVersion = v
	return te
}

// BlobIdentity returns the blob identity associated with the error.
func (te *TransitionError) BlobIdentity() string { return te.blobIdentity }

// DestinationVersion returns the plan's target version.
func (te *TransitionError) DestinationVersion() uint64 { return te.destinationVersion }

// NewSchemaMismatchError builds the error raised when a delta's schema is
// structurally incompatible with the resident snapshot schema.
func NewSchemaMismatchError(typeName string) *TransitionError {
	return NewTransitionError(nil, ErrorCodeSchemaMismatch, "delta schema does not match resident schema").
		WithDetail("typeName", typeName)
}

// NewWrongOriginError builds the error raised when a delta's origin tag
// does not equal the engine's current randomized tag.
func NewWrongOriginError(originTag, currentTag uint64) *TransitionError {
	return NewTransitionError(nil, ErrorCodeWrongOrigin, "delta origin tag does not match engine's current tag").
		WithDetail("originTag", originTag).
		WithDetail("currentTag", currentTag)
}

// NewKnownFailingTransitionError builds the error raised when an update
// plan intersects the failed-transition tracker under double-snapshot mode.
func NewKnownFailingTransitionError(identity string) *TransitionError {
	return NewTransitionError(nil, ErrorCodeKnownFailingTransition, "plan contains a blob known to have failed previously").
		WithBlobIdentity(identity)
}

// NewTransitionShardMismatchError builds the error raised when a delta's
// shard count does not match the resident type state's shard count, a
// special case of schema/structural mismatch between a delta and the
// snapshot it is applied against.
func NewTransitionShardMismatchError(typeName string, resident, delta int) *TransitionError {
	return NewTransitionError(nil, ErrorCodeSchemaMismatch, "delta shard count does not match resident shard count").
		WithDetail("typeName", typeName).
		WithDetail("residentShards", resident).
		WithDetail("deltaShards", delta)
}

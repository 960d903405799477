package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"

	// ErrorCodeIO represents failures in the underlying file or mapped
	// region: open, seek, mmap, or read.
	ErrorCodeIO ErrorCode = "IO_ERROR"
)

// Blob-taxonomy error codes map directly onto the error kinds a blob
// reader can encounter: a blob's bytes can be truncated or malformed, its
// version can be unsupported, a schema can mismatch between snapshot and
// delta, a delta's origin tag can be wrong, a plan can intersect the
// failed-transition tracker, or a read can fall outside the populated
// range of a segmented array or shard.
const (
	// ErrorCodeMalformedBlob indicates a truncated stream, a bad magic
	// number, a bad VarInt, or a schema body whose declared length does
	// not match its contents.
	ErrorCodeMalformedBlob ErrorCode = "MALFORMED_BLOB"

	// ErrorCodeUnsupportedVersion indicates the header's blobFormatVersion
	// falls outside the range this engine accepts.
	ErrorCodeUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"

	// ErrorCodeSchemaMismatch indicates a delta's schema is structurally
	// incompatible with the snapshot schema already registered for that
	// type name.
	ErrorCodeSchemaMismatch ErrorCode = "SCHEMA_MISMATCH"

	// ErrorCodeWrongOrigin indicates a delta's originRandomizedTag does not
	// equal the engine's current randomized tag.
	ErrorCodeWrongOrigin ErrorCode = "WRONG_ORIGIN"

	// ErrorCodeKnownFailingTransition indicates an update plan intersects
	// the failed-transition tracker while double-snapshot mode is enabled.
	ErrorCodeKnownFailingTransition ErrorCode = "KNOWN_FAILING_TRANSITION"

	// ErrorCodeOutOfRange indicates an ordinal, bit offset, or segment
	// index read past the populated range of a segmented array or shard.
	ErrorCodeOutOfRange ErrorCode = "OUT_OF_RANGE"
)

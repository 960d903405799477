// Package errors provides the structured error hierarchy used across the
// engine. Every error embeds baseError, which carries a cause, a message,
// an ErrorCode, and a lazily-allocated details map, and every domain error
// type adds fluent With* methods specific to its context: BlobError for
// stream/position failures while parsing a blob, TransitionError for
// update-plan failures, and ValidationError for configuration input
// failures.
//
// Error codes (ErrorCode) give programmatic error handling that does not
// depend on parsing messages: callers switch on GetErrorCode(err) or use
// the IsXError/AsXError helpers to recover the richer, typed context.
package errors

import (
	stdErrors "errors"
)

// IsValidationError checks if the given error is a ValidationError or contains one in its error chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsBlobError determines if an error occurred while parsing a blob's bytes
// (truncation, bad magic, unsupported version, out-of-range read).
func IsBlobError(err error) bool {
	var be *BlobError
	return stdErrors.As(err, &be)
}

// IsTransitionError determines if an error occurred while the consumer
// update driver applied a plan (schema mismatch, wrong origin, known
// failing transition).
func IsTransitionError(err error) bool {
	var te *TransitionError
	return stdErrors.As(err, &te)
}

// AsValidationError safely extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsBlobError safely extracts a BlobError from an error chain, giving
// access to TypeName(), ByteOffset(), and ShardIndex().
func AsBlobError(err error) (*BlobError, bool) {
	var be *BlobError
	if stdErrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// AsTransitionError safely extracts a TransitionError from an error chain,
// giving access to BlobIdentity() and DestinationVersion().
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or
// returns ErrorCodeInternal for errors that don't have specific codes.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if be, ok := AsBlobError(err); ok {
		return be.Code()
	}
	if te, ok := AsTransitionError(err); ok {
		return te.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from any error that supports
// them, returning an empty map for errors without details.
func GetErrorDetails(err error) map[string]any {
	if ve, ok := AsValidationError(err); ok {
		if details := ve.Details(); details != nil {
			return details
		}
	}
	if be, ok := AsBlobError(err); ok {
		if details := be.Details(); details != nil {
			return details
		}
	}
	if te, ok := AsTransitionError(err); ok {
		if details := te.Details(); details != nil {
			return details
		}
	}
	return make(map[string]any)
}

// Package errors provides the engine's structured error hierarchy: a
// baseError carrying a code and optional details, and three domain-specific
// wrappers (ValidationError, CapacityError, StorageError) that attach the
// context needed to diagnose a failure without parsing its message.
//
// Callers that only need to branch on failure kind use the Is* predicates;
// callers that need the extra context use the As* extractors.
package errors

import stdErrors "errors"

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsCapacityError reports whether err is, or wraps, a *CapacityError.
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return stdErrors.As(err, &ce)
}

// IsStorageError reports whether err is, or wraps, a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return stdErrors.As(err, &se)
}

// AsValidationError extracts a *ValidationError from err's chain, if present.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsCapacityError extracts a *CapacityError from err's chain, if present.
func AsCapacityError(err error) (*CapacityError, bool) {
	var ce *CapacityError
	if stdErrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsStorageError extracts a *StorageError from err's chain, if present.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error in this package's
// hierarchy, or ErrorCodeInternal for errors that don't carry one.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if ce, ok := AsCapacityError(err); ok {
		return ce.Code()
	}
	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}
	return ErrorCodeInternal
}

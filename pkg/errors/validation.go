package errors

// ValidationError is a specialized error type for input validation failures.
// It embeds baseError to inherit all the standard error functionality, then adds
// validation-specific fields that identify exactly what failed and with what value.
type ValidationError struct {
	*baseError

	// field identifies which argument failed validation ("key", "ttlMillis", ...).
	field string

	// rule names the constraint that was violated ("blank", "negative", "required").
	rule string

	// provided captures the offending value for debugging and logging.
	provided any
}

// NewValidationError creates a new validation-specific error with the provided context.
func NewValidationError(err error, code ErrorCode, msg string) *ValidationError {
	return &ValidationError{baseError: NewBaseError(err, code, msg)}
}

// WithDetail adds contextual information while maintaining the ValidationError type.
func (ve *ValidationError) WithDetail(key string, value any) *ValidationError {
	ve.baseError.WithDetail(key, value)
	return ve
}

// WithField sets which argument failed validation.
func (ve *ValidationError) WithField(field string) *ValidationError {
	ve.field = field
	return ve
}

// WithRule specifies which validation rule was violated.
func (ve *ValidationError) WithRule(rule string) *ValidationError {
	ve.rule = rule
	return ve
}

// WithProvided captures what value was provided that failed validation.
func (ve *ValidationError) WithProvided(value any) *ValidationError {
	ve.provided = value
	return ve
}

// Field returns the argument name that failed validation.
func (ve *ValidationError) Field() string {
	return ve.field
}

// Rule returns the validation rule that was violated.
func (ve *ValidationError) Rule() string {
	return ve.rule
}

// Provided returns the value that was provided and failed validation.
func (ve *ValidationError) Provided() any {
	return ve.provided
}

// NewBlankKeyError reports a key that is absent or whitespace-only.
func NewBlankKeyError(provided string) *ValidationError {
	return NewValidationError(nil, ErrorCodeInvalidInput, "key must not be blank").
		WithField("key").
		WithRule("blank").
		WithProvided(provided)
}

// NewNullValueError reports an absent value passed to SET.
func NewNullValueError() *ValidationError {
	return NewValidationError(nil, ErrorCodeNullValue, "value must not be nil").
		WithField("value").
		WithRule("required")
}

// NewNegativeTTLError reports a negative ttlMillis passed to EXPIRE.
func NewNegativeTTLError(ttlMillis int64) *ValidationError {
	return NewValidationError(nil, ErrorCodeInvalidInput, "ttlMillis must not be negative").
		WithField("ttlMillis").
		WithRule("negative").
		WithProvided(ttlMillis)
}

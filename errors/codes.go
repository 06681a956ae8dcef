package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Pipeline errors
const (
	// ErrCodeSourceNotFound indicates an audio source is neither a local file nor a URL.
	ErrCodeSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	// ErrCodeTranscriptionFailed indicates the transcription provider reported a terminal failure.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeGenerationFailed indicates the language model produced no valid output within the retry budget.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeMalformedOutput indicates a single model response was not valid JSON.
	ErrCodeMalformedOutput ErrorCode = "MALFORMED_OUTPUT"
	// ErrCodeUnknownTask indicates an analysis task identifier is not registered.
	ErrCodeUnknownTask ErrorCode = "UNKNOWN_TASK"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
	ErrCodeMalformedOutput:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

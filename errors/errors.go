// Package errors provides unified error handling for the service.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// ExternalServiceError creates a new AppError for an error from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// --- Pipeline Error Constructors ---

// SourceNotFound creates a new AppError for an audio source that is neither
// an existing local file nor a well-formed URL.
func SourceNotFound(source string) *AppError {
	return &AppError{
		Code: ErrCodeSourceNotFound, Message: fmt.Sprintf("Audio source not found: %s", source),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"source": source},
	}
}

// TranscriptionFailed creates a new AppError for a terminal transcription failure.
func TranscriptionFailed(providerMessage string) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: fmt.Sprintf("Transcription failed: %s", providerMessage),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
	}
}

// GenerationFailed creates a new AppError when the model never produced valid
// JSON within the retry budget. The last raw response is retained for diagnostics.
func GenerationFailed(attempts int, lastResponse string) *AppError {
	return &AppError{
		Code:       ErrCodeGenerationFailed,
		Message:    fmt.Sprintf("Model failed to produce valid JSON after %d attempts.", attempts),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"attempts": attempts, "last_response": lastResponse},
	}
}

// MalformedOutput creates a new AppError for a single invalid model response.
func MalformedOutput(raw string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeMalformedOutput, Message: "Model response was not valid JSON.",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"raw": raw}, Cause: cause,
	}
}

// UnknownTask creates a new AppError for an unregistered analysis task.
func UnknownTask(taskID string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownTask, Message: fmt.Sprintf("Unknown analysis task: %q.", taskID),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"task": taskID},
	}
}

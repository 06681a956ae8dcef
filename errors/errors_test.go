package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := New(ErrCodeNotFound, "job not found", http.StatusNotFound)
	want := "NOT_FOUND: job not found"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	cause := stderrors.New("row missing")
	err = err.WithCause(cause)
	if err.Error() != want+" (cause: row missing)" {
		t.Errorf("unexpected error string: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to see the cause")
	}
}

func TestRetryableDetection(t *testing.T) {
	if !IsRetryableCode(ErrCodeMalformedOutput) {
		t.Error("malformed output should be retryable")
	}
	if IsRetryableCode(ErrCodeUnknownTask) {
		t.Error("unknown task should not be retryable")
	}
	if IsRetryableCode(ErrCodeGenerationFailed) {
		t.Error("exhausted generation should not be retryable")
	}
}

func TestGenerationFailedDetails(t *testing.T) {
	err := GenerationFailed(3, `{"broken`)
	if err.Details["attempts"] != 3 {
		t.Errorf("expected 3 attempts, got %v", err.Details["attempts"])
	}
	if err.Details["last_response"] != `{"broken` {
		t.Errorf("expected last response retained, got %v", err.Details["last_response"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := SourceNotFound("/tmp/missing.mp3")
	wrapped := fmt.Errorf("transcribe: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError through wrapping")
	}
	if got.Code != ErrCodeSourceNotFound {
		t.Errorf("expected SOURCE_NOT_FOUND, got %s", got.Code)
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
}

func TestHasCode(t *testing.T) {
	err := UnknownTask("speculation")
	if !HasCode(err, ErrCodeUnknownTask) {
		t.Error("expected HasCode to match")
	}
	if HasCode(err, ErrCodeNotFound) {
		t.Error("expected HasCode to reject a different code")
	}
}

func TestToResponse(t *testing.T) {
	err := NotFound("job", "job_42")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", resp.Error.Code)
	}
	if resp.Error.Details["id"] != "job_42" {
		t.Errorf("expected id detail, got %v", resp.Error.Details)
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "resource not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "resource not found" {
		t.Errorf("expected message 'resource not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("timeout")
	ctx := map[string]interface{}{
		"command": "sbatch",
		"cores":   4,
	}

	err := WrapWithContext(ErrCodeJobFailed, "job submission failed", cause, ctx)

	if err.Code != ErrCodeJobFailed {
		t.Errorf("expected code %s, got %s", ErrCodeJobFailed, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["command"] != "sbatch" {
		t.Errorf("expected command to be sbatch")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeNotFound,
		ErrCodeUnauthorized,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
		ErrCodeServiceUnavailable,
		ErrCodeJobFailed,
		ErrCodePreparationFailed,
		ErrCodeTelemetryUnavailable,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}

func TestIsCode(t *testing.T) {
	jobErr := New(ErrCodeJobFailed, "slurm job failed")

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{name: "nil error", err: nil, code: ErrCodeJobFailed, want: false},
		{name: "plain error", err: errors.New("boom"), code: ErrCodeJobFailed, want: false},
		{name: "direct match", err: jobErr, code: ErrCodeJobFailed, want: true},
		{name: "direct mismatch", err: jobErr, code: ErrCodeNotFound, want: false},
		{name: "wrapped by fmt", err: fmt.Errorf("run: %w", jobErr), code: ErrCodeJobFailed, want: true},
		{name: "nested structured", err: Wrap(ErrCodeInternal, "outer", jobErr), code: ErrCodeJobFailed, want: true},
		{name: "outer code", err: Wrap(ErrCodeInternal, "outer", jobErr), code: ErrCodeInternal, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %s, want %s", got, ErrCodeInternal)
	}
	err := fmt.Errorf("ctx: %w", New(ErrCodeNotFound, "missing"))
	if got := CodeOf(err); got != ErrCodeNotFound {
		t.Errorf("CodeOf(wrapped) = %s, want %s", got, ErrCodeNotFound)
	}
}

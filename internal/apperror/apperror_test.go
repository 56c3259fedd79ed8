package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("project", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("content", "content is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("tip", "pi_12345"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("only the author may edit a comment"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated("valid credential required"),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "NotFound does not match ErrForbidden",
			err:       NotFound("comment", "xyz"),
			target:    ErrForbidden,
			wantMatch: false,
		},
		{
			name:      "Unauthenticated does not match ErrValidation",
			err:       Unauthenticated("no token"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	// Services wrap repository errors with fmt.Errorf("...: %w", err).
	// Classification must survive the extra layer.
	inner := NotFound("track", "t1")
	wrapped := fmt.Errorf("resolving comment target: %w", inner)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error lost its ErrNotFound classification")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to extract *AppError from wrapped chain")
	}
	if appErr.Message != "track not found with id t1" {
		t.Errorf("Message = %q, want %q", appErr.Message, "track not found with id t1")
	}
}

func TestValidationFailedCarriesField(t *testing.T) {
	err := ValidationFailed("timestamp_seconds", "timestamp must be non-negative")

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As failed")
	}
	if appErr.Field != "timestamp_seconds" {
		t.Errorf("Field = %q, want %q", appErr.Field, "timestamp_seconds")
	}
}

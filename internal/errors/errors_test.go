package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("fetch window 40: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "no hint", duration: 0, expected: "quota exceeded"},
		{name: "30 seconds", duration: 30 * time.Second, expected: "quota exceeded (retry after 30s)"},
		{name: "1 hour", duration: time.Hour, expected: "quota exceeded (retry after 1h0m0s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("quota exceeded", tt.duration)
			if err.Error() != tt.expected {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.expected)
			}
			if err.RetryAfter != tt.duration {
				t.Fatalf("RetryAfter = %v, want %v", err.RetryAfter, tt.duration)
			}
		})
	}
}

func TestDuplicateBookError(t *testing.T) {
	cause := stdErrors.New("UNIQUE constraint failed: books.book_id")
	err := NewDuplicateBookError("zyTCAlFPjgYC", cause)

	expected := "book zyTCAlFPjgYC already exists: UNIQUE constraint failed: books.book_id"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !stdErrors.Is(err, cause) {
		t.Fatalf("DuplicateBookError does not unwrap to its cause")
	}

	wrapped := fmt.Errorf("insert book: %w", err)
	if !IsDuplicateBookError(wrapped) {
		t.Fatalf("IsDuplicateBookError returned false for wrapped DuplicateBookError")
	}

	if IsDuplicateBookError(cause) {
		t.Fatalf("IsDuplicateBookError returned true for a plain error")
	}
}

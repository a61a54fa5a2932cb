package errors

import (
	"errors"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeMalformedOverlay, "arcs expects an array, got %s", "string")
	if want := "INVALID_OVERLAY: arcs expects an array, got string"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "fetch topology")
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false")
	}
	if errors.Unwrap(wrapped) != cause {
		t.Error("Unwrap() did not return the cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching", New(ErrCodeInvalidScope, "mars"), ErrCodeInvalidScope, true},
		{"other code", New(ErrCodeInvalidScope, "mars"), ErrCodeNetwork, false},
		{"outer code wins", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := GetCode(New(ErrCodeMissingCollaborator, "x")); got != ErrCodeMissingCollaborator {
		t.Errorf("GetCode() = %v", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeMapNotFound, "no saved map %q", "abc")); got != `no saved map "abc"` {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidScope, ""), 400},
		{New(ErrCodeMalformedOverlay, ""), 400},
		{New(ErrCodeMapNotFound, ""), 404},
		{New(ErrCodeRateLimited, ""), 429},
		{Wrap(ErrCodeNetwork, errors.New("x"), ""), 502},
		{New(ErrCodeTimeout, ""), 504},
		{errors.New("plain"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRateLimitedError(t *testing.T) {
	if got := (&RateLimitedError{RetryAfter: 60}).Error(); got != "rate limited: retry after 60 seconds" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&RateLimitedError{}).Error(); got != "rate limited" {
		t.Errorf("Error() = %q", got)
	}
	if (&RateLimitedError{}).Code() != ErrCodeRateLimited {
		t.Error("Code() mismatch")
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDimensions, "shape %d has width %v", 3, -1.0)

	if err.Code != ErrCodeInvalidDimensions {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDimensions)
	}
	if err.Message != "shape 3 has width -1" {
		t.Errorf("Message = %q", err.Message)
	}
	if got, want := err.Error(), "INVALID_DIMENSIONS: shape 3 has width -1"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "writing sheet")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "INTERNAL: writing sheet: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodePackingExhausted, "x"), ErrCodePackingExhausted, true},
		{"other code", New(ErrCodePackingExhausted, "x"), ErrCodeAlreadyPacked, false},
		{"outer code wins", Wrap(ErrCodeInvalidImage, New(ErrCodeFileNotFound, "inner"), "outer"), ErrCodeInvalidImage, true},
		{"fmt wrapped", fmt.Errorf("loading: %w", New(ErrCodeInvalidSidecar, "bad")), ErrCodeInvalidSidecar, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeUnsupported, "engine")); got != ErrCodeUnsupported {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeUnsupported)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "no sprites")); got != "no sprites" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

// Package errors provides coded error values shared by the packer, the
// sprite loader and the command-line tools.
//
// Packing codes (INVALID_DIMENSIONS, PACKING_EXHAUSTED, ALREADY_PACKED)
// come from package packer and describe a rejected layout request. Input
// codes (INVALID_INPUT, INVALID_CONFIG, INVALID_IMAGE, INVALID_SIDECAR,
// FILE_NOT_FOUND) mean a file or setting supplied by the user is wrong.
// UNSUPPORTED and INTERNAL cover the rest.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Packing
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodePackingExhausted  Code = "PACKING_EXHAUSTED"
	ErrCodeAlreadyPacked     Code = "ALREADY_PACKED"

	// Input
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidImage   Code = "INVALID_IMAGE"
	ErrCodeInvalidSidecar Code = "INVALID_SIDECAR"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// Only the outermost *Error in the chain is consulted.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, or "" if err carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error
// values and err.Error() for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

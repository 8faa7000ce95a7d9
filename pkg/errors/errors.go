// Package errors provides structured error types for imagestitch.
//
// Every failure the stitch pipeline can produce carries a machine-readable
// [Code]. The CLI uses the code to pick a process exit status and prints the
// human-readable message; library callers can branch on the code with [Is].
//
// # Error Codes
//
//   - INVALID_*: bad flags, options or layout parameters
//   - INPUT_NOT_FOUND, EMPTY_INPUT: the input directory cannot be used
//   - DECODE_FAILED, DIMENSION_MISMATCH: a source image is unusable
//   - PATH_ERROR, IO_ERROR: the output cannot be written
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyInput, "no images found in %s", dir)
//	if errors.Is(err, errors.ErrCodeEmptyInput) {
//	    // Handle empty directory
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecode, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"

	// Source errors
	ErrCodeInputNotFound     Code = "INPUT_NOT_FOUND"
	ErrCodeEmptyInput        Code = "EMPTY_INPUT"
	ErrCodeDecode            Code = "DECODE_FAILED"
	ErrCodeDimensionMismatch Code = "DIMENSION_MISMATCH"

	// Output errors
	ErrCodePath Code = "PATH_ERROR"
	ErrCodeIO   Code = "IO_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Process exit statuses returned by [ExitCode].
const (
	ExitOK                = 0
	ExitInternal          = 1
	ExitInvalidInput      = 2
	ExitInputNotFound     = 3
	ExitEmptyInput        = 4
	ExitDecode            = 5
	ExitDimensionMismatch = 6
	ExitOutput            = 7
)

var exitCodes = map[Code]int{
	ErrCodeInvalidInput:      ExitInvalidInput,
	ErrCodeInvalidFormat:     ExitInvalidInput,
	ErrCodeInvalidDirection:  ExitInvalidInput,
	ErrCodeInputNotFound:     ExitInputNotFound,
	ErrCodeEmptyInput:        ExitEmptyInput,
	ErrCodeDecode:            ExitDecode,
	ErrCodeDimensionMismatch: ExitDimensionMismatch,
	ErrCodePath:              ExitOutput,
	ErrCodeIO:                ExitOutput,
	ErrCodeInternal:          ExitInternal,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
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
// Only the outermost *Error in the chain is inspected, so a wrapping error
// with a different code takes precedence over its cause.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message followed by the cause, without the
// code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// ExitCode maps err to a process exit status.
// A nil error is ExitOK; errors without a known code are ExitInternal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if c, ok := exitCodes[GetCode(err)]; ok {
		return c
	}
	return ExitInternal
}

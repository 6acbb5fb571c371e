// Package errs defines the error taxonomy shared by the service and the
// transport layer.
//
// The service is the only place that turns storage state into NotFound or
// Conflict. The transport is the only place that turns a Code into a
// protocol status. Anything that is not an *Error is treated as Internal.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a failure.
type Code string

const (
	CodeMalformedRequest Code = "malformed_request"
	CodeValidationFailed Code = "validation_failed"
	CodeNotFound         Code = "not_found"
	CodeConflict         Code = "conflict"
	CodeInternal         Code = "internal"
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Code    Code
	Message string

	// Violations lists every failed field rule for CodeValidationFailed,
	// formatted as "field: message".
	Violations []string

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Violations) > 0 {
		msg = strings.Join(e.Violations, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed reports a request that could not be parsed.
func Malformed(msg string, err error) *Error {
	return &Error{Code: CodeMalformedRequest, Message: msg, Err: err}
}

// Validation reports one or more field rule violations.
func Validation(violations []string) *Error {
	return &Error{
		Code:       CodeValidationFailed,
		Message:    "validation failed",
		Violations: violations,
	}
}

// NotFound reports that an operation needed a record that does not exist.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// CodeOf returns the Code carried by err, or CodeInternal when err is not
// (and does not wrap) an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// PublicMessage returns the text that may be shown to a caller. Internal
// failures never expose their cause.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Code == CodeInternal {
		return "internal server error"
	}
	if len(e.Violations) > 0 {
		return strings.Join(e.Violations, "; ")
	}
	return e.Message
}

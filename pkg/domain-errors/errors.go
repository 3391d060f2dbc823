// Package domainerrors provides coded errors shared across services and stores.
//
// Every error that crosses a package boundary carries a Code so callers can
// branch on the class of failure without string matching. Use New at the point
// a failure originates and Wrap when annotating an error from a lower layer.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	// CodeValidation: input data failed validation (malformed URL, empty field).
	CodeValidation Code = "validation"
	// CodeInvalidInput: a caller-supplied parameter is malformed.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound: the requested record does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict: concurrent-update conflict; safe to retry.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation: a caller contract or domain invariant was broken.
	// Never retried.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeUnavailable: a backing resource cannot be reached at all.
	CodeUnavailable Code = "unavailable"
	// CodeInternal: unexpected failure in this process or a dependency.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. Returns nil if err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var derr *Error
	for errors.As(err, &derr) {
		if derr.Code == code {
			return true
		}
		err = derr.Cause
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the code of the outermost coded error, or CodeInternal if
// the chain carries none.
func CodeOf(err error) Code {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return CodeInternal
}

// Is delegates to errors.Is for use alongside sentinel errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

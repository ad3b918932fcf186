package contract

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable error category.
type ErrorCode string

// Error codes surfaced by mlscore.
const (
	CodeInvalidInput ErrorCode = "invalid_input"
	CodeConfig       ErrorCode = "config"
	CodeHarvest      ErrorCode = "harvest"
	CodeNotFound     ErrorCode = "not_found"
	CodeStorage      ErrorCode = "storage"
)

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput = NewError(CodeInvalidInput, "invalid input")
	ErrNotFound     = NewError(CodeNotFound, "artifact not found")
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is works against
// the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a coded error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps err under a code. A nil err returns nil.
func WrapError(code ErrorCode, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// HasCode reports whether any error in the chain carries the code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost coded error, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MessageOf returns the message of a coded error without its code prefix.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

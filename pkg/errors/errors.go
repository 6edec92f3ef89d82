// Package errors defines the coded errors shared by the pipeline, the CLI
// and the HTTP API.
//
// Two codes are fatal and raised before any scoring starts:
//
//   - INVALID_CONFIG: the stripe configuration cannot be applied to the
//     image, for example a stripe width that does not divide the image width
//   - INPUT_LOAD: the image cannot be opened, decoded or accessed
//
// The remaining codes belong to the outer surfaces (flags, requests, run
// stores). Errors may carry a hint that tells the user how to recover:
//
//	err := errors.Configuration("stripe width %d does not divide %d", 7, 40).
//		WithHint("widths that divide 40: 1, 2, 4, 5, 8, 10, 20, 40")
//	if errors.IsFatal(err) {
//		fmt.Println(errors.UserMessage(err), errors.HintOf(err))
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInputLoad     Code = "INPUT_LOAD"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeUnsupported   Code = "UNSUPPORTED"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause and recovery hint.
type Error struct {
	Code    Code
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithHint sets the recovery hint and returns e.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Configuration creates an INVALID_CONFIG error.
func Configuration(format string, args ...any) *Error {
	return New(ErrCodeInvalidConfig, format, args...)
}

// InputLoad wraps cause as an INPUT_LOAD error.
func InputLoad(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeInputLoad, cause, format, args...)
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost coded error, or "".
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix. Errors
// without a code are returned as-is.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// HintOf returns the first hint found in err's chain, or "".
func HintOf(err error) string {
	for err != nil {
		e, ok := find(err)
		if !ok {
			return ""
		}
		if e.Hint != "" {
			return e.Hint
		}
		err = e.Cause
	}
	return ""
}

// IsFatal reports whether err is INVALID_CONFIG or INPUT_LOAD. Retrying
// either with the same input fails the same way.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfig, ErrCodeInputLoad:
		return true
	}
	return false
}

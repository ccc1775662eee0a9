// Package bomerr defines the status-style errors returned by the folding and
// materialization code.
package bomerr

import (
	"errors"
	"fmt"
)

// Code classifies an Error
type Code string

const (
	// CodeInvalidArgument marks input that is wrong regardless of system state
	// (missing key, ragged row, unparsable number).
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeUnimplemented marks a configuration that names an unsupported feature.
	CodeUnimplemented Code = "UNIMPLEMENTED"
	// CodeUnknown is reported by CodeOf for errors that carry no code.
	CodeUnknown Code = "UNKNOWN"
)

// Sentinels for errors.Is matching.
var (
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
	ErrUnimplemented   = &Error{Code: CodeUnimplemented}
)

// Error is a coded error with a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports a match on Code alone, so any InvalidArgument error matches
// ErrInvalidArgument.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// InvalidArgument builds a CodeInvalidArgument error.
func InvalidArgument(format string, args ...any) error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Unimplemented builds a CodeUnimplemented error.
func Unimplemented(format string, args ...any) error {
	return &Error{Code: CodeUnimplemented, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

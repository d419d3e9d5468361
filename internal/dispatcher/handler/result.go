package handler

import (
	"errors"
	"fmt"
)

// ResultStatus indicates the outcome of a handler call.
type ResultStatus uint8

const (
	// StatusOK indicates successful execution.
	StatusOK ResultStatus = iota
	// StatusNoOp indicates the command had no effect.
	StatusNoOp
	// StatusError indicates the command failed.
	StatusError
)

// String returns a string representation of the status.
func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is what a handler reports back.
type Result struct {
	Status ResultStatus

	// Error is set for StatusError.
	Error error

	// Message is optional text for the console.
	Message string
}

// IsOK returns true if the result indicates success.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError returns true if the result indicates an error.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// WithMessage returns a copy of the result with the message set.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}

// Success creates a successful result with no text.
func Success() Result {
	return Result{Status: StatusOK}
}

// SuccessWithMessage creates a successful result with text for the console.
func SuccessWithMessage(msg string) Result {
	return Result{Status: StatusOK, Message: msg}
}

// Successf creates a successful result with formatted text.
func Successf(format string, args ...any) Result {
	return Result{Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

// NoOp creates a no-operation result.
func NoOp() Result {
	return Result{Status: StatusNoOp}
}

// Error creates an error result.
func Error(err error) Result {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result{Status: StatusError, Error: err, Message: err.Error()}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Error(fmt.Errorf(format, args...))
}

package error

import (
	"errors"
	"fmt"
	"runtime"
)

// Exit codes attached to errors that reach main.
const (
	ExitCodeGeneric             uint = 1
	ExitCodeInvalidConfig       uint = 2
	ExitCodeUnsupportedPlatform uint = 3
	ExitCodeProfileNotFound     uint = 4
)

type ErrorWithExitCode struct {
	ExitCode uint
	Wrapped  error
}

func (e ErrorWithExitCode) Error() string {
	return e.Wrapped.Error()
}

func (e ErrorWithExitCode) Unwrap() error {
	return e.Wrapped
}

func WithExitCode(exitCode uint, err error) error {
	if err == nil {
		return nil
	}
	var existing ErrorWithExitCode
	if errors.As(err, &existing) && existing.ExitCode == exitCode {
		return err
	}
	return ErrorWithExitCode{
		ExitCode: exitCode,
		Wrapped:  err,
	}
}

// WithExitCodeFor attaches exitCode to err if err matches target.
// Other errors are returned unchanged.
func WithExitCodeFor(err error, target error, exitCode uint) error {
	if err == nil || !errors.Is(err, target) {
		return err
	}
	return WithExitCode(exitCode, err)
}

func GetExitCode(err error) (exitCode uint, hasExitCode bool) {
	var withCode ErrorWithExitCode
	if errors.As(err, &withCode) {
		return withCode.ExitCode, true
	}
	return 0, false
}

// ErrorWithStackTrace is an error that attaches a stack trace to its
// message.
type ErrorWithStackTrace struct {
	StackTrace string
	Wrapped    error
}

// Error returns this error's message.
func (s ErrorWithStackTrace) Error() string {
	return fmt.Sprintf("%v\n\n%s\nEND OF StackTraceError", s.Wrapped, s.StackTrace)
}

// Unwrap returns the underlying error of this error.
func (s ErrorWithStackTrace) Unwrap() error {
	return s.Wrapped
}

// WithStackTrace attaches a stack trace to the error, if it does not
// already contain one.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}
	if hasStackTrace(err) {
		return err
	}
	st := make([]byte, 1<<16)
	n := runtime.Stack(st, false)
	return ErrorWithStackTrace{
		Wrapped:    err,
		StackTrace: string(st[:n]),
	}
}

func hasStackTrace(err error) bool {
	var withTrace ErrorWithStackTrace
	return errors.As(err, &withTrace)
}

func StackTracef(format string, a ...interface{}) error {
	return WithStackTrace(fmt.Errorf(format, a...))
}

// Message returns the message of err without any attached stack
// trace.
func Message(err error) string {
	var withTrace ErrorWithStackTrace
	if errors.As(err, &withTrace) {
		return withTrace.Wrapped.Error()
	}
	return err.Error()
}

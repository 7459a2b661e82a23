// Package errors provides structured error types and exit codes for diffgen.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess         = 0 // Success
	ExitRuntimeError    = 1 // Runtime error (interrupted run, I/O failure, etc.)
	ExitConfigError     = 2 // Configuration error (malformed document, inconsistent domains, etc.)
	ExitToolingError    = 3 // Tooling error (interpreter missing, implementation cannot be invoked)
	ExitGenerationError = 4 // Generation error (exhaustive domain too large, invariant violated)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindGeneration
	KindTooling
)

// DiffgenError is the base error type for diffgen.
type DiffgenError struct {
	Kind    ErrorKind
	Message string
	Target  string // Implementation identifier if applicable
	Cause   error  // Underlying error
}

func (e *DiffgenError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s", e.Target, msg)
	}
	return msg
}

func (e *DiffgenError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *DiffgenError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation, KindNotFound:
		return ExitConfigError
	case KindTooling:
		return ExitToolingError
	case KindGeneration:
		return ExitGenerationError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *DiffgenError {
	return &DiffgenError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *DiffgenError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *DiffgenError {
	return &DiffgenError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *DiffgenError {
	return Config(fmt.Sprintf(format, args...))
}

// Validation wraps a structural inconsistency between types and domains.
func Validation(err error, message string) *DiffgenError {
	return &DiffgenError{
		Kind:    KindValidation,
		Message: message,
		Cause:   err,
	}
}

// Generation wraps a failure to generate the base test set.
func Generation(err error, message string) *DiffgenError {
	return &DiffgenError{
		Kind:    KindGeneration,
		Message: message,
		Cause:   err,
	}
}

// Tooling wraps a failure to invoke an implementation at all.
func Tooling(target string, err error, message string) *DiffgenError {
	return &DiffgenError{
		Kind:    KindTooling,
		Target:  target,
		Message: message,
		Cause:   err,
	}
}

// Toolingf creates a tooling error with formatting and no underlying cause.
func Toolingf(target, format string, args ...interface{}) *DiffgenError {
	return Tooling(target, nil, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *DiffgenError {
	return &DiffgenError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *DiffgenError {
	return &DiffgenError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// IsKind reports whether err carries a DiffgenError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DiffgenError
	return stderrors.As(err, &de) && de.Kind == kind
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var de *DiffgenError
	if stderrors.As(err, &de) {
		return de.ExitCode()
	}
	return ExitRuntimeError
}

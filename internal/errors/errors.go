// Package errors provides structured error types and exit codes for storyline.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error (failed scenario, fatal action error, etc.)
	ExitConfigError      = 2 // Configuration error (invalid settings, unparseable stories, etc.)
	ExitEnvironmentError = 3 // Environment error (browser unavailable, etc.)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindValidation
	KindEnvironment
)

// StorylineError is the base error type for storyline.
type StorylineError struct {
	Kind    ErrorKind
	Message string
	Story   string // Story identity if applicable
	Cause   error  // Underlying error
}

func (e *StorylineError) Error() string {
	if e.Story != "" {
		return fmt.Sprintf("[%s] %s", e.Story, e.Message)
	}
	return e.Message
}

func (e *StorylineError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *StorylineError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// Config creates a new configuration error.
func Config(message string) *StorylineError {
	return &StorylineError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *StorylineError {
	return Config(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *StorylineError {
	return &StorylineError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// WrapEnvironment wraps an error caused by the environment, such as an
// unreachable browser.
func WrapEnvironment(err error, message string) *StorylineError {
	return &StorylineError{
		Kind:    KindEnvironment,
		Message: message,
		Cause:   err,
	}
}

// StoryError creates an error for a specific story file.
func StoryError(story, message string) *StorylineError {
	return &StorylineError{
		Kind:    KindValidation,
		Story:   story,
		Message: message,
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var se *StorylineError
	if stderrors.As(err, &se) {
		return se.ExitCode()
	}
	return ExitRuntimeError
}

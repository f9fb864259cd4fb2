package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"runtime/debug"

	pkgerrors "github.com/pkg/errors"
)

// AssertionError reports that an expectation checked by an action did not hold.
// It is the expected outcome of a failed web assertion, not a harness fault:
// the runner records it on the action and moves on to the next scenario.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// Failed creates an assertion failure with the given message.
func Failed(message string) *AssertionError {
	return &AssertionError{Message: message}
}

// IsAssertion reports whether err is, or wraps, an assertion failure.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return stderrors.As(err, &ae)
}

// AsAssertion returns the assertion failure wrapped by err, if any.
func AsAssertion(err error) (*AssertionError, bool) {
	var ae *AssertionError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ExecutionError is a fatal error raised while running an action body.
// It aborts the sequential run, or the current scenario of a parallel worker.
type ExecutionError struct {
	Action string // Action identity (step phrase or registry name)
	Cause  error
	Stack  string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("error executing action %s: %v", e.Action, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Format prints the stack trace with the %+v verb.
func (e *ExecutionError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, e.Error())
			if e.Stack != "" {
				_, _ = io.WriteString(s, "\n"+e.Stack)
			}
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Execution wraps an error returned by an action body. The stack recorded
// by pkg/errors is kept when the cause carries one; otherwise it is captured here.
func Execution(action string, cause error) *ExecutionError {
	var st stackTracer
	if !stderrors.As(cause, &st) {
		cause = pkgerrors.WithStack(cause)
	}
	return &ExecutionError{
		Action: action,
		Cause:  cause,
		Stack:  fmt.Sprintf("%+v", cause),
	}
}

// Panicked converts a recovered panic value into an execution error.
// Must be called from the deferred function that recovered.
func Panicked(action string, recovered interface{}) *ExecutionError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("panic: %v", recovered)
	}
	return &ExecutionError{
		Action: action,
		Cause:  cause,
		Stack:  string(debug.Stack()),
	}
}

// IsExecution reports whether err is, or wraps, a fatal execution error.
func IsExecution(err error) bool {
	var ee *ExecutionError
	return stderrors.As(err, &ee)
}

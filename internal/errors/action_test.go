package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestAssertion_Detection(t *testing.T) {
	t.Parallel()

	plain := Failed(`expected title "Home"`)
	wrapped := fmt.Errorf("step 2: %w", plain)

	if !IsAssertion(plain) {
		t.Error("IsAssertion(plain) = false, want true")
	}
	if !IsAssertion(wrapped) {
		t.Error("IsAssertion(wrapped) = false, want true")
	}
	if IsAssertion(errors.New("boom")) {
		t.Error("IsAssertion(generic) = true, want false")
	}

	ae, ok := AsAssertion(wrapped)
	if !ok {
		t.Fatal("AsAssertion(wrapped) ok = false")
	}
	if ae.Message != `expected title "Home"` {
		t.Errorf("Message = %q", ae.Message)
	}
}

func TestExecution_CapturesStack(t *testing.T) {
	t.Parallel()

	cause := errors.New("driver crashed")
	err := Execution("I see \"x\" title", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if !IsExecution(err) {
		t.Error("IsExecution() = false, want true")
	}
	if IsAssertion(err) {
		t.Error("execution error must not be an assertion")
	}
	if err.Stack == "" {
		t.Error("Stack is empty")
	}
	if !strings.Contains(err.Error(), "driver crashed") {
		t.Errorf("Error() = %q, want cause message", err.Error())
	}

	full := fmt.Sprintf("%+v", err)
	if !strings.Contains(full, "TestExecution_CapturesStack") {
		t.Errorf("%%+v output lacks stack frame:\n%s", full)
	}
	if short := fmt.Sprintf("%v", err); strings.Contains(short, "\n") {
		t.Errorf("%%v output should be one line, got %q", short)
	}
}

func TestExecution_KeepsExistingStack(t *testing.T) {
	t.Parallel()

	cause := pkgerrors.New("already traced")
	err := Execution("step", cause)

	if err.Cause != cause {
		t.Error("cause with stack should not be rewrapped")
	}
}

func TestPanicked(t *testing.T) {
	t.Parallel()

	var got *ExecutionError
	func() {
		defer func() {
			if r := recover(); r != nil {
				got = Panicked("step", r)
			}
		}()
		panic("nil map write")
	}()

	if got == nil {
		t.Fatal("Panicked() not reached")
	}
	if !strings.Contains(got.Error(), "nil map write") {
		t.Errorf("Error() = %q", got.Error())
	}
	if !strings.Contains(got.Stack, "goroutine") {
		t.Errorf("Stack does not look like a goroutine dump: %q", got.Stack)
	}
}

// Package model provides the fixture tree executed by the runner:
// fixtures hold stories, stories hold scenarios, scenarios hold actions.
// The tree is built before the run and read afterwards for reporting;
// only action outcomes and run timestamps change while it executes.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/storyline/storyline/internal/execution"
)

// Status is the outcome of an action.
type Status int

const (
	Pending Status = iota
	Passed
	Failed
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Arguments are the values bound to an action when its step is resolved.
type Arguments struct {
	Positional []string
	Named      map[string]string
}

// Func is the executable body of an action. Returning an *errors.AssertionError
// marks the action failed; any other error is fatal to the run.
type Func func(ctx context.Context, ec *execution.Context, args Arguments) error

// Action is one executable step of a scenario.
type Action struct {
	Keyword     string // given, when or then
	Description string // step text as written in the story
	Name        string // registry name of the implementation
	Execute     Func
	Args        Arguments

	// Guards the outcome; an interrupted run may still be marking actions
	// while the result is read.
	mu      sync.Mutex
	status  Status
	message string
}

// NewAction creates a pending action.
func NewAction(keyword, description, name string, fn Func, args Arguments) *Action {
	return &Action{
		Keyword:     keyword,
		Description: description,
		Name:        name,
		Execute:     fn,
		Args:        args,
	}
}

// Identity names the action in error messages.
func (a *Action) Identity() string {
	if a.Description != "" {
		return fmt.Sprintf("%q (%s)", a.Description, a.Name)
	}
	return a.Name
}

// Status returns the current outcome.
func (a *Action) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Message returns the failure detail; empty unless the action failed.
func (a *Action) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

// MarkPassed records a successful execution.
func (a *Action) MarkPassed() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != Pending {
		return fmt.Errorf("action %s already %s", a.Identity(), a.status)
	}
	a.status = Passed
	return nil
}

// MarkFailed records a failed expectation with its message.
func (a *Action) MarkFailed(message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != Pending {
		return fmt.Errorf("action %s already %s", a.Identity(), a.status)
	}
	a.status = Failed
	a.message = strings.TrimSpace(message)
	return nil
}

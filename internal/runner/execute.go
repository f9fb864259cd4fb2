package runner

import (
	"context"
	"errors"

	storylineerrors "github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/model"
)

// ExecuteAction runs one action against ec and records its outcome.
//
// It returns true when the body returned normally and false when the body
// reported an assertion failure. Any other error, including a panic in the
// body, leaves the action untouched and is returned as an
// *errors.ExecutionError carrying the action identity and a stack trace.
func ExecuteAction(ctx context.Context, ec *execution.Context, action *model.Action) (bool, error) {
	if err := invoke(ctx, ec, action); err != nil {
		ae, ok := storylineerrors.AsAssertion(err)
		if !ok {
			return false, err
		}
		if markErr := action.MarkFailed(ae.Message); markErr != nil {
			return false, storylineerrors.Execution(action.Identity(), markErr)
		}
		return false, nil
	}

	if err := action.MarkPassed(); err != nil {
		return false, storylineerrors.Execution(action.Identity(), err)
	}
	return true, nil
}

// invoke calls the action body, converting panics and non-assertion errors
// into execution errors.
func invoke(ctx context.Context, ec *execution.Context, action *model.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = storylineerrors.Panicked(action.Identity(), r)
		}
	}()

	if action.Execute == nil {
		return storylineerrors.Execution(action.Identity(), errors.New("action has no body"))
	}
	if err := action.Execute(ctx, ec, action.Args); err != nil {
		if storylineerrors.IsAssertion(err) {
			return err
		}
		return storylineerrors.Execution(action.Identity(), err)
	}
	return nil
}

// runActions executes actions in order and stops at the first failure.
// Actions after a failed one stay pending.
func runActions(ctx context.Context, ec *execution.Context, actions []*model.Action) error {
	for _, action := range actions {
		ok, err := ExecuteAction(ctx, ec, action)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

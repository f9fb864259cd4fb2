// Package runner executes fixtures: actions in order within a scenario,
// scenarios either one after another or across a bounded worker pool.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/storyline/storyline/internal/config"
	storylineerrors "github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/model"
	"github.com/storyline/storyline/internal/output"
)

// StoryRunner runs every scenario of a fixture.
type StoryRunner interface {
	RunStories(ctx context.Context, settings *config.Settings, fixture *model.Fixture, ec *execution.Context) (*model.Result, error)
}

// New returns the runner matching settings: sequential for one worker,
// parallel otherwise.
func New(settings *config.Settings, factory execution.Factory, out *output.Writer) StoryRunner {
	seq := NewSequential(factory).WithOutput(out)
	if settings.Workers > 1 {
		return NewParallel(seq, settings.Workers)
	}
	return seq
}

// runScenario brackets one scenario with a browser session: the session is
// started before the first action and stopped after the last, including when
// an action fails fatally. EndRun is skipped when the scenario aborts with
// a fatal error.
func runScenario(ctx context.Context, ec *execution.Context, scenario *model.Scenario) (err error) {
	if err := ec.Browser.StartTest(ctx, ec.BaseURL()); err != nil {
		return storylineerrors.WrapEnvironment(err, fmt.Sprintf("failed to start browser session at %s: %v", ec.BaseURL(), err))
	}
	defer func() {
		if stopErr := ec.Browser.StopTest(); stopErr != nil && err == nil {
			err = storylineerrors.Wrap(stopErr, fmt.Sprintf("failed to stop browser session: %v", stopErr))
		}
	}()

	scenario.StartRun()
	if err := runActions(ctx, ec, scenario.Actions()); err != nil {
		return err
	}
	scenario.EndRun()
	return nil
}

// errorCollector gathers fatal errors from concurrent workers.
type errorCollector struct {
	mu   sync.Mutex
	errs []error
}

func (c *errorCollector) add(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

func (c *errorCollector) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return combineErrors(c.errs)
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// formatScenarioError prefixes err with the scenario location.
// Format: [story] scenario N: message
func formatScenarioError(scenario *model.Scenario, err error) error {
	story := "?"
	if scenario.Story != nil {
		story = scenario.Story.Identity
	}
	return fmt.Errorf("[%s] scenario %d: %w", story, scenario.Index, err)
}

package runner

import (
	"context"

	"github.com/storyline/storyline/internal/config"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/model"
	"github.com/storyline/storyline/internal/output"
)

// Sequential runs scenarios one at a time on the calling goroutine.
type Sequential struct {
	factory execution.Factory
	out     *output.Writer
}

// NewSequential creates a sequential runner that builds contexts with factory.
func NewSequential(factory execution.Factory) *Sequential {
	return &Sequential{factory: factory, out: output.New()}
}

// WithOutput sets the writer used for progress and warnings.
func (r *Sequential) WithOutput(out *output.Writer) *Sequential {
	if out != nil {
		r.out = out
	}
	return r
}

// RunStories runs every scenario of fixture in declaration order.
//
// When ec is nil a context is created from settings for the first scenario
// and shared by the rest. An assertion failure stops only its scenario; a
// fatal error stops the run and is returned together with the result
// reflecting what was attempted. A fatal error raised after ctx is
// cancelled is reported as an interruption instead.
func (r *Sequential) RunStories(ctx context.Context, settings *config.Settings, fixture *model.Fixture, ec *execution.Context) (*model.Result, error) {
	result := model.NewResult(fixture)
	fixture.StartRun()
	defer fixture.EndRun()

	for _, story := range fixture.Stories {
		for _, scenario := range story.Scenarios {
			// Early exit if the run was interrupted between scenarios
			if ctx.Err() != nil {
				return r.interrupted(result), nil
			}

			if ec == nil {
				var err error
				if ec, err = r.factory(settings); err != nil {
					return result, err
				}
			}

			r.out.ScenarioStart(scenario)
			if err := runScenario(ctx, ec, scenario); err != nil {
				// An action cut short by the interrupt is not a harness fault.
				if ctx.Err() != nil {
					return r.interrupted(result), nil
				}
				return result, formatScenarioError(scenario, err)
			}
			r.out.ScenarioDone(scenario)
		}
	}

	return result, nil
}

// RunScenario runs a single scenario. When ec is nil a context is created
// from settings.
func (r *Sequential) RunScenario(ctx context.Context, scenario *model.Scenario, settings *config.Settings, fixture *model.Fixture, ec *execution.Context) (*model.Result, error) {
	result := model.NewResult(fixture)

	if ec == nil {
		var err error
		if ec, err = r.factory(settings); err != nil {
			return result, err
		}
	}

	r.out.ScenarioStart(scenario)
	if err := runScenario(ctx, ec, scenario); err != nil {
		if ctx.Err() != nil {
			return r.interrupted(result), nil
		}
		return result, formatScenarioError(scenario, err)
	}
	r.out.ScenarioDone(scenario)
	return result, nil
}

func (r *Sequential) interrupted(result *model.Result) *model.Result {
	result.Interrupted = true
	r.out.WarningSimple("tests interrupted by user")
	return result
}

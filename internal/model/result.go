package model

import (
	"time"

	"github.com/google/uuid"
)

// Result wraps a fixture once the run loop has exited.
// Outcomes are read off the fixture's action tree.
type Result struct {
	RunID       string
	Fixture     *Fixture
	Interrupted bool
}

// NewResult creates a result for fixture with a fresh run ID.
func NewResult(fixture *Fixture) *Result {
	return &Result{
		RunID:   uuid.NewString(),
		Fixture: fixture,
	}
}

// Counts tallies outcomes at one level of the tree.
type Counts struct {
	Total   int
	Passed  int
	Failed  int
	Pending int
}

func (c *Counts) add(s Status) {
	c.Total++
	switch s {
	case Passed:
		c.Passed++
	case Failed:
		c.Failed++
	default:
		c.Pending++
	}
}

// Summary contains aggregated outcomes of a run.
type Summary struct {
	Stories      int
	Scenarios    Counts
	Actions      Counts
	InvalidFiles int
	Duration     time.Duration
}

// Summary aggregates the outcomes recorded on the fixture.
func (r *Result) Summary() Summary {
	var sum Summary
	if r.Fixture == nil {
		return sum
	}
	sum.Stories = len(r.Fixture.Stories)
	sum.InvalidFiles = len(r.Fixture.InvalidFiles)
	for _, sc := range r.Fixture.Scenarios() {
		sum.Scenarios.add(sc.Status())
		for _, a := range sc.Actions() {
			sum.Actions.add(a.Status())
		}
	}
	if !r.Fixture.StartTime.IsZero() && !r.Fixture.EndTime.IsZero() {
		sum.Duration = r.Fixture.EndTime.Sub(r.Fixture.StartTime)
	}
	return sum
}

// Successful reports whether every scenario passed and every story file parsed.
func (r *Result) Successful() bool {
	sum := r.Summary()
	return !r.Interrupted &&
		sum.InvalidFiles == 0 &&
		sum.Scenarios.Failed == 0 &&
		sum.Scenarios.Pending == 0
}

// FailedScenarios returns the scenarios with at least one failed action,
// in declaration order.
func (r *Result) FailedScenarios() []*Scenario {
	var failed []*Scenario
	if r.Fixture == nil {
		return failed
	}
	for _, sc := range r.Fixture.Scenarios() {
		if sc.Status() == Failed {
			failed = append(failed, sc)
		}
	}
	return failed
}

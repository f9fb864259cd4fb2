package model

import (
	"sync"
	"time"
)

// Scenario is one ordered given/when/then test case.
type Scenario struct {
	Index int
	Title string
	Story *Story

	Givens []*Action
	Whens  []*Action
	Thens  []*Action

	mu        sync.Mutex
	startTime time.Time
	endTime   time.Time
}

// NewScenario creates a scenario and links it to its story.
func NewScenario(story *Story, index int, title string) *Scenario {
	return &Scenario{Story: story, Index: index, Title: title}
}

// Actions returns givens, whens and thens concatenated in that order.
func (s *Scenario) Actions() []*Action {
	actions := make([]*Action, 0, len(s.Givens)+len(s.Whens)+len(s.Thens))
	actions = append(actions, s.Givens...)
	actions = append(actions, s.Whens...)
	return append(actions, s.Thens...)
}

// StartRun records the start of an execution attempt.
func (s *Scenario) StartRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = time.Now()
	s.endTime = time.Time{}
}

// EndRun records the end of an execution attempt.
func (s *Scenario) EndRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
}

// Ended reports whether EndRun was called after the last StartRun.
func (s *Scenario) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.endTime.IsZero()
}

// Duration is the wall time of the last execution attempt.
func (s *Scenario) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() || s.endTime.IsZero() {
		return 0
	}
	return s.endTime.Sub(s.startTime)
}

// Status derives the scenario outcome from its actions: failed if any action
// failed, passed if every action passed, pending otherwise.
func (s *Scenario) Status() Status {
	actions := s.Actions()
	passed := 0
	for _, a := range actions {
		switch a.Status() {
		case Failed:
			return Failed
		case Passed:
			passed++
		}
	}
	if passed == len(actions) && s.Ended() {
		return Passed
	}
	return Pending
}

// Story groups scenarios sharing a narrative.
type Story struct {
	AsA       string
	IWant     string
	SoThat    string
	Identity  string // source file the story was parsed from
	Scenarios []*Scenario
}

// AddScenario appends a new scenario to the story.
func (s *Story) AddScenario(title string) *Scenario {
	sc := NewScenario(s, len(s.Scenarios)+1, title)
	s.Scenarios = append(s.Scenarios, sc)
	return sc
}

// InvalidFile records a story file that could not be parsed.
type InvalidFile struct {
	Path string
	Err  error
}

// Fixture is the full set of stories under test in one invocation.
type Fixture struct {
	Stories      []*Story
	InvalidFiles []InvalidFile

	StartTime time.Time
	EndTime   time.Time
}

// AddStory appends a story to the fixture.
func (f *Fixture) AddStory(story *Story) {
	f.Stories = append(f.Stories, story)
}

// Scenarios returns every scenario in declaration order.
func (f *Fixture) Scenarios() []*Scenario {
	var all []*Scenario
	for _, story := range f.Stories {
		all = append(all, story.Scenarios...)
	}
	return all
}

// StartRun records the start of the fixture run.
func (f *Fixture) StartRun() {
	f.StartTime = time.Now()
}

// EndRun records the end of the fixture run.
func (f *Fixture) EndRun() {
	f.EndTime = time.Now()
}

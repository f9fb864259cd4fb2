package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storyline/storyline/internal/config"
	storylineerrors "github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/model"
)

// Parallel runs scenarios on a fixed pool of workers. Every scenario gets its
// own context, created before any worker starts, so scenarios never share a
// browser session.
//
// Runs on one Parallel are serialized; WorkersStarted and Unfinished report
// the most recent run.
type Parallel struct {
	*Sequential
	workers int

	runMu   sync.Mutex
	started atomic.Int32
	queue   atomic.Pointer[workQueue]

	reportMu sync.Mutex
}

// NewParallel creates a parallel runner with the given number of workers,
// using seq's context factory and output.
func NewParallel(seq *Sequential, workers int) *Parallel {
	if workers < config.MinWorkers {
		workers = config.MinWorkers
	}
	return &Parallel{Sequential: seq, workers: workers}
}

// Workers returns the pool size.
func (p *Parallel) Workers() int { return p.workers }

// WorkersStarted returns how many workers the last run started.
func (p *Parallel) WorkersStarted() int { return int(p.started.Load()) }

// Unfinished returns the unfinished task count of the last run's queue.
func (p *Parallel) Unfinished() int64 {
	if q := p.queue.Load(); q != nil {
		return q.Unfinished()
	}
	return 0
}

// RunStories enqueues every scenario of fixture, starts the workers and
// polls until the queue drains or ctx is cancelled. ec is ignored: each
// scenario runs in a fresh context.
//
// Cancellation is observed only between polls. Workers still running a
// scenario are abandoned, not stopped, so the outcomes of an interrupted run
// are not guaranteed consistent. Fatal errors abort only the scenario that
// raised them; they are returned joined once the run ends. Errors raised
// after ctx is cancelled are dropped.
func (p *Parallel) RunStories(ctx context.Context, settings *config.Settings, fixture *model.Fixture, _ *execution.Context) (*model.Result, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	result := model.NewResult(fixture)
	p.started.Store(0)
	p.queue.Store(nil)
	if len(fixture.Stories) == 0 {
		return result, nil
	}

	q := newWorkQueue()
	p.queue.Store(q)
	if err := p.fillQueue(q, fixture, settings); err != nil {
		return result, err
	}

	fixture.StartRun()
	defer fixture.EndRun()

	errs := &errorCollector{}
	p.startWorkers(ctx, q, errs)
	// Release idle workers once the driver stops waiting.
	defer q.Close()

	if interrupted := p.wait(ctx, q, settings.Parallel); interrupted {
		p.out.WarningSimple("parallel tests interrupted by user")
		result.Interrupted = true
	}
	return result, errs.err()
}

// fillQueue creates one context per scenario and enqueues the pairs.
func (p *Parallel) fillQueue(q *workQueue, fixture *model.Fixture, settings *config.Settings) error {
	for _, story := range fixture.Stories {
		for _, scenario := range story.Scenarios {
			ec, err := p.factory(settings)
			if err != nil {
				return err
			}
			q.Put(task{scenario: scenario, ctx: ec})
		}
	}
	return nil
}

func (p *Parallel) startWorkers(ctx context.Context, q *workQueue, errs *errorCollector) {
	for i := 0; i < p.workers; i++ {
		p.started.Add(1)
		go p.worker(ctx, q, errs)
	}
}

// worker pulls tasks until the queue is closed.
func (p *Parallel) worker(ctx context.Context, q *workQueue, errs *errorCollector) {
	for {
		t, ok := q.Get()
		if !ok {
			return
		}
		p.process(ctx, q, t, errs)
	}
}

func (p *Parallel) process(ctx context.Context, q *workQueue, t task, errs *errorCollector) {
	defer q.TaskDone()
	defer func() {
		// A panic outside an action body (e.g. in the driver) must not take
		// the other workers down with it.
		if r := recover(); r != nil {
			errs.add(formatScenarioError(t.scenario, storylineerrors.Panicked("scenario", r)))
		}
	}()

	p.report(func() { p.out.ScenarioStart(t.scenario) })
	if err := runScenario(ctx, t.ctx, t.scenario); err != nil {
		if ctx.Err() == nil {
			errs.add(formatScenarioError(t.scenario, err))
		}
		return
	}
	p.report(func() { p.out.ScenarioDone(t.scenario) })
}

// report serializes progress output from concurrent workers.
func (p *Parallel) report(fn func()) {
	p.reportMu.Lock()
	defer p.reportMu.Unlock()
	fn()
}

// wait sleeps through the grace delay, then polls the queue until no task is
// unfinished. It reports true when ctx was cancelled first.
func (p *Parallel) wait(ctx context.Context, q *workQueue, cfg config.ParallelConfig) bool {
	grace, poll := cfg.GraceDelay, cfg.PollInterval
	if poll <= 0 {
		poll = config.DefaultPollInterval
	}

	if grace > 0 {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return true
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for q.Unfinished() > 0 {
		select {
		case <-ctx.Done():
			return true
		case <-ticker.C:
		}
	}
	return false
}

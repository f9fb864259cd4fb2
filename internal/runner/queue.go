package runner

import (
	"sync"
	"sync/atomic"

	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/model"
)

// task pairs a scenario with the context created exclusively for it.
type task struct {
	scenario *model.Scenario
	ctx      *execution.Context
}

// workQueue is an unbounded FIFO shared by the parallel workers. It tracks
// the number of tasks put but not yet marked done, so the driver can poll
// for completion instead of blocking on a join.
type workQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []task
	closed bool

	unfinished atomic.Int64
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends t. It reports false if the queue is closed.
func (q *workQueue) Put(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, t)
	q.unfinished.Add(1)
	q.cond.Signal()
	return true
}

// Get blocks until a task is available. It reports false once the queue is
// closed and empty.
func (q *workQueue) Get() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return task{}, false
	}
	t := q.items[0]
	q.items[0] = task{}
	q.items = q.items[1:]
	return t, true
}

// TaskDone marks one task obtained from Get as finished.
func (q *workQueue) TaskDone() {
	if q.unfinished.Add(-1) < 0 {
		panic("runner: TaskDone called more times than tasks were put")
	}
}

// Unfinished returns the number of tasks not yet marked done.
func (q *workQueue) Unfinished() int64 {
	return q.unfinished.Load()
}

// Close wakes every blocked Get. Tasks still queued are dropped.
func (q *workQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}

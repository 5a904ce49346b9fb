package work

import (
	"log"
	"sync"
)

// #region queue

// Queue runs submitted tasks strictly in submission order on one background
// goroutine. Submit never blocks the caller, queued tasks always run (there
// is no cancellation), and a failing task never takes the worker down.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []task
	running bool
	closed  bool
}

type task struct {
	name string
	fn   func()
}

// NewQueue starts the worker goroutine and returns the queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// #endregion queue

// #region submit

// Submit enqueues fn under a name used only for logging. Tasks submitted
// after Close are dropped.
func (q *Queue) Submit(name string, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		log.Printf("[work] dropping task %q: queue closed", name)
		return
	}
	q.pending = append(q.pending, task{name: name, fn: fn})
	q.cond.Broadcast()
}

// #endregion submit

// #region drain-close

// Drain blocks until every task submitted so far has finished.
func (q *Queue) Drain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) > 0 || q.running {
		q.cond.Wait()
	}
}

// Close stops accepting tasks, lets the already-queued ones finish, and
// returns once the worker is idle.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	q.Drain()
}

// #endregion drain-close

// #region worker

func (q *Queue) run() {
	q.mu.Lock()
	for {
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending = q.pending[1:]
		q.running = true
		q.mu.Unlock()

		runTask(t)

		q.mu.Lock()
		q.running = false
		q.cond.Broadcast()
	}
}

// runTask keeps a task failure inside the task.
func runTask(t task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[work] task %q panicked: %v", t.name, r)
		}
	}()
	t.fn()
}

// #endregion worker

package syncpool

import (
	"github.com/utilitywarehouse/ghopac/internal/lock"
	"github.com/utilitywarehouse/ghopac/syncer"
)

// Queue is a single producer, multiple consumer queue of jobs.
// Enqueue and Close must only be called by the producer.
type Queue struct {
	lock   lock.Mutex
	ch     chan syncer.Job
	closed bool
}

// NewQueue returns queue which can hold size jobs before Enqueue blocks
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan syncer.Job, size)}
}

// Enqueue adds job to the queue, it blocks while the queue is full.
// It panics if queue is already closed.
func (q *Queue) Enqueue(job syncer.Job) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		panic("syncpool: enqueue on closed queue")
	}
	q.ch <- job
}

// Dequeue blocks until a job is available. ok is false only once the
// queue is closed and all queued jobs have been dequeued.
func (q *Queue) Dequeue() (job syncer.Job, ok bool) {
	job, ok = <-q.ch
	return job, ok
}

// Close marks the end of jobs. It panics if called more than once.
func (q *Queue) Close() {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		panic("syncpool: queue closed twice")
	}
	q.closed = true
	close(q.ch)
}

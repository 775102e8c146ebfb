package syncpool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utilitywarehouse/ghopac/internal/lock"
	"github.com/utilitywarehouse/ghopac/syncer"
)

// MaxExitCode is the largest failure count that can be reported as a
// process exit status
const MaxExitCode = 255

// Executor syncs a single job, *syncer.Executor is the implementation used
// outside of tests.
type Executor interface {
	Execute(ctx context.Context, job syncer.Job) syncer.Outcome
}

// WorkerResult is the private tally of a single worker
type WorkerResult struct {
	ID        int
	Processed int
	Failed    int
}

// Result is the aggregated result of all workers of a pool
type Result struct {
	Workers   []WorkerResult
	Processed int
	Failed    int
	Duration  time.Duration
}

// ExitCode returns number of failed jobs clamped to MaxExitCode.
// 0 means every job was synced.
func (r Result) ExitCode() int {
	return min(r.Failed, MaxExitCode)
}

// Pool represents fixed number of workers draining a shared job queue.
// Start must be called once before Wait, Enqueue and Close must only
// be called from a single producer goroutine.
type Pool struct {
	lock        lock.Mutex
	concurrency int
	exec        Executor
	log         *slog.Logger
	queue       *Queue
	wg          sync.WaitGroup
	results     []WorkerResult // one slot per worker, only written by that worker
	started     time.Time
}

// New will create pool based on given config. Workers are not started
// until Start is called.
func New(conf Config, exec Executor, log *slog.Logger) (*Pool, error) {
	if err := conf.validateAndApplyDefaults(); err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	return &Pool{
		concurrency: conf.Concurrency,
		exec:        exec,
		log:         log,
		queue:       NewQueue(conf.QueueSize),
		results:     make([]WorkerResult, conf.Concurrency),
	}, nil
}

// Concurrency returns number of workers of the pool
func (p *Pool) Concurrency() int {
	return p.concurrency
}

// Start will start all workers. Cancelling ctx does not interrupt running
// or queued jobs, workers only stop once the queue is closed and drained.
func (p *Pool) Start(ctx context.Context) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if !p.started.IsZero() {
		p.log.Warn("pool already started")
		return
	}
	p.started = time.Now()

	// running git commands must run to completion
	ctx = context.WithoutCancel(ctx)

	p.log.Debug("starting workers", "concurrency", p.concurrency)
	for id := range p.concurrency {
		p.wg.Add(1)
		go p.worker(ctx, id)
	}
}

// Enqueue adds job to the queue, it will block if queue is full
func (p *Pool) Enqueue(job syncer.Job) {
	p.queue.Enqueue(job)
}

// Close signals workers that no more jobs will be queued.
func (p *Pool) Close() {
	p.queue.Close()
}

// Wait blocks until queue is closed and every worker has exited and
// returns the sum of all workers results.
func (p *Pool) Wait() Result {
	p.wg.Wait()

	res := Result{
		Workers:  p.results,
		Duration: time.Since(p.started),
	}
	for _, wr := range p.results {
		res.Processed += wr.Processed
		res.Failed += wr.Failed
	}

	recordRun(res)
	p.log.Debug("all workers finished", "jobs", res.Processed, "failed", res.Failed, "time", res.Duration)

	return res
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	res := WorkerResult{ID: id}
	for {
		job, ok := p.queue.Dequeue()
		if !ok {
			break
		}
		res.Processed++
		if p.exec.Execute(ctx, job).Failed() {
			res.Failed++
		}
	}

	p.results[id] = res
	p.log.Log(ctx, -8, "worker finished", "worker", id, "jobs", res.Processed, "failed", res.Failed)
}

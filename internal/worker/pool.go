package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed set of workers. Label chunk fetches fan
// out through it: submit every chunk, then Wait for the full result
// set. The pool always drains its queue; cancellation flows through
// the context handed to Start and is the jobs' concern.
type Pool struct {
	workers int
	jobs    chan Job

	mu      sync.Mutex
	results []Result
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers),
	}
}

// Start launches the workers. Every job they execute receives ctx.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()

	for job := range p.jobs {
		res := job.Execute(ctx)
		p.mu.Lock()
		p.results = append(p.results, res)
		p.mu.Unlock()
	}
}

// Submit queues one job, blocking while all workers are busy and the
// queue is full.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Wait closes the queue, lets the workers drain it, and returns every
// result in completion order.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

package worker

import (
	"context"
	"sync/atomic"
	"time"
)

// CancelFlag is a one-shot cooperative cancellation signal shared
// between a driver and a single worker goroutine. The driver sets it,
// the worker polls it at its own safe points (turn boundaries).
type CancelFlag struct {
	set atomic.Bool
}

// Set marks the flag. Safe to call more than once.
func (f *CancelFlag) Set() {
	f.set.Store(true)
}

// IsSet reports whether the flag has been set
func (f *CancelFlag) IsSet() bool {
	return f.set.Load()
}

// TimedJob is a unit of work that cooperates with cancellation
type TimedJob interface {
	Execute(ctx context.Context, cancel *CancelFlag) Result
}

// RunWithTimeout executes the job on its own goroutine with a wall
// clock budget. A job that finishes in time returns its result. On
// timeout the cancel flag is set and the worker is abandoned: it keeps
// running until it observes the flag at its next safe point, then stops
// on its own. The caller must not reuse the flag. The bool reports
// whether the budget was exceeded.
func RunWithTimeout(ctx context.Context, job TimedJob, timeout time.Duration) (Result, bool) {
	cancel := &CancelFlag{}
	// Buffered so an abandoned worker's final send never blocks
	done := make(chan Result, 1)

	go func() {
		done <- job.Execute(ctx, cancel)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res, false
	case <-timer.C:
		cancel.Set()
		return nil, true
	}
}

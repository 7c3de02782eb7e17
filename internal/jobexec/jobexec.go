// Package jobexec runs the reconciliation engine's agent commands
// concurrently, bounded by a fixed worker count, with an explicit Wait
// barrier for points where the planner needs ordering (a rename of a
// source whose copy is still in flight, between renaming and copying in
// conflict resolution, between phases M and S). Grounded on rsinc's
// SubPool (bounded concurrent subprocess launcher) but expressed with
// errgroup + a semaphore channel instead of polling for a finished slot.
package jobexec

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Pool is a bounded worker pool over arbitrary jobs. Jobs are queued with
// Run and may execute any time after that call; Wait blocks until every
// job queued so far has returned.
type Pool struct {
	sem *semaphore
	grp *errgroup.Group

	mu   sync.Mutex
	errs error
}

// semaphore is a counting semaphore built on a buffered channel, bounding
// how many jobs run concurrently.
type semaphore struct {
	slots chan struct{}
}

func newSemaphore(n int) *semaphore {
	if n < 1 {
		n = 1
	}

	return &semaphore{slots: make(chan struct{}, n)}
}

func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.slots
}

// New returns a Pool that runs at most workers jobs concurrently.
func New(workers int) *Pool {
	return &Pool{sem: newSemaphore(workers), grp: &errgroup.Group{}}
}

// Run queues fn to execute as soon as a worker slot is free. It never
// blocks: the job's own goroutine waits for the free slot, so Run returns
// at once even when the pool is at capacity. Errors are collected, not raised, so one
// failed job never aborts sibling jobs already in flight — the driver
// decides what a non-empty Errors() means for its exit code.
func (p *Pool) Run(ctx context.Context, fn func(context.Context) error) {
	p.grp.Go(func() error {
		if err := p.sem.acquire(ctx); err != nil {
			p.recordErr(err)

			return nil
		}
		defer p.sem.release()

		if err := fn(ctx); err != nil {
			p.recordErr(err)
		}

		return nil
	})
}

func (p *Pool) recordErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errs = multierr.Append(p.errs, err)
}

// Wait blocks until every job queued so far has returned. The pool remains
// usable for further Run calls afterward.
func (p *Pool) Wait() {
	_ = p.grp.Wait()
	p.grp = &errgroup.Group{}
}

// Errors returns every error recorded by completed jobs so far, combined
// via multierr.
func (p *Pool) Errors() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.errs
}

package worker

import (
	"context"
	"errors"
	"sync"

	"nuance/backend/internal/logger"
)

// ErrStopped is returned when work is submitted after Stop.
var ErrStopped = errors.New("worker pool stopped")

// Pool is a process-wide bounded pool for blocking work: provider calls
// dispatched by the pipeline and detached persistence after streaming.
// It is constructed once at startup and stopped on shutdown.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	// mu guards the stopped flag. Senders hold the read lock while
	// enqueueing so Stop cannot close the channel under them.
	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool with the given number of workers.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		tasks: make(chan func(), size*2),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	logger.Info("worker pool started", "module", "worker", "action", "start", "resource", "pool", "result", "ok", "size", size)
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit hands a task to the pool without waiting for it to run.
// Used for detached work whose outcome is only logged.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	p.tasks <- task
	return nil
}

// Run executes the task on a pool worker and blocks until it returns.
// ctx only bounds the wait for a free worker; a task that has started
// always runs to completion.
func (p *Pool) Run(ctx context.Context, task func() error) error {
	done := make(chan error, 1)
	if err := p.submitWait(ctx, func() { done <- task() }); err != nil {
		return err
	}
	return <-done
}

func (p *Pool) submitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains the pool. Everything already submitted runs to completion;
// further submissions fail with ErrStopped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	logger.Info("worker pool stopped", "module", "worker", "action", "stop", "resource", "pool", "result", "ok")
}

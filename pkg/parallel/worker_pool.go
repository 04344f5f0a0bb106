// Package parallel runs independent pipeline jobs (validating or encoding a
// batch of pipelines) on a bounded set of goroutines.
package parallel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dd0wney/cluso-fable/pkg/logging"
)

// ErrTooManyWorkers is returned when the worker count exceeds MaxWorkers.
var ErrTooManyWorkers = errors.New("worker count exceeds maximum")

// MaxWorkers caps a pool. Batch jobs are CPU bound, so more goroutines than
// this only add scheduling overhead.
const MaxWorkers = 1024

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	logger    logging.Logger
}

// Option configures a WorkerPool.
type Option func(*WorkerPool)

// WithLogger sets where recovered task panics are reported.
func WithLogger(l logging.Logger) Option {
	return func(wp *WorkerPool) {
		if l != nil {
			wp.logger = l
		}
	}
}

// NewWorkerPool creates a pool with the given number of workers. A count
// below one means one worker.
func NewWorkerPool(workers int, opts ...Option) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(pool)
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(task)
	}
}

// run executes one task. A panicking task is logged and does not take the
// worker down with it.
func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker task panicked", logging.Any("panic", r))
		}
	}()
	task()
}

// Submit queues a task. It returns false if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for queued ones to finish. It is
// safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Map applies fn to every item on a pool of workers and returns the results
// in input order. An item whose fn panics yields the zero R.
func Map[T, R any](workers int, items []T, fn func(T) R, opts ...Option) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	pool, err := NewWorkerPool(min(workers, len(items)), opts...)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		pool.Submit(func() {
			results[i] = fn(item)
		})
	}
	pool.Close()
	return results, nil
}

// Package parallel runs independent index-addressed tasks on a fixed set of workers.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-pdbgraph/pkg/logging"
)

var (
	// ErrTooManyWorkers is returned when the worker count exceeds MaxWorkers.
	ErrTooManyWorkers = errors.New("worker count exceeds maximum")
	// ErrPoolClosed is returned by Run once the pool has been closed.
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrTaskPanicked wraps a recovered panic from a task.
	ErrTaskPanicked = errors.New("task panicked")
)

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = 1 << 16

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // guards taskQueue against close during send
	closed    bool
	logger    logging.Logger
	panics    atomic.Int64
}

// NewWorkerPool starts a pool. workers <= 0 means runtime.NumCPU().
func NewWorkerPool(workers int, logger logging.Logger) (*WorkerPool, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		logger:    logger.With(logging.Component("parallel")),
	}

	for i := 0; i < pool.workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}
	return pool, nil
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.panics.Add(1)
					wp.logger.Error("worker panic recovered", logging.String("panic", fmt.Sprint(r)))
				}
			}()
			task()
		}()
	}
}

// Submit queues a task. It returns false if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// Run executes fn(0) through fn(n-1) on the pool and waits for all of them. It
// returns the first error by index order, a panic converted to
// ErrTaskPanicked, or ctx.Err() if the context ended before every task was
// queued. The pool stays open for further runs.
func (wp *WorkerPool) Run(ctx context.Context, n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if n > math.MaxInt32 {
		return fmt.Errorf("run of %d tasks is too large", n)
	}

	errs := make([]error, n)
	var wg sync.WaitGroup

	var submitErr error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		wg.Add(1)
		ok := wp.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: task %d: %v", ErrTaskPanicked, i, r)
				}
			}()
			errs[i] = fn(i)
		})
		if !ok {
			wg.Done()
			submitErr = ErrPoolClosed
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		return submitErr
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Panics returns how many raw Submit tasks panicked.
func (wp *WorkerPool) Panics() int64 {
	return wp.panics.Load()
}

// Close stops accepting work and waits for queued tasks to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

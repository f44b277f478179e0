package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newPool(t *testing.T, workers int) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d) error: %v", workers, err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestWorkerPoolSizing(t *testing.T) {
	if got := newPool(t, 3).Workers(); got != 3 {
		t.Errorf("Workers() = %d, want 3", got)
	}
	if got := newPool(t, 0).Workers(); got != runtime.NumCPU() {
		t.Errorf("Workers() for 0 = %d, want NumCPU %d", got, runtime.NumCPU())
	}
	if got := newPool(t, -2).Workers(); got != runtime.NumCPU() {
		t.Errorf("Workers() for -2 = %d, want NumCPU %d", got, runtime.NumCPU())
	}
	if _, err := NewWorkerPool(MaxWorkers+1, nil); !errors.Is(err, ErrTooManyWorkers) {
		t.Errorf("NewWorkerPool(MaxWorkers+1) error = %v, want ErrTooManyWorkers", err)
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := newPool(t, 10)

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() {
				atomic.AddInt64(&counter, 1)
			})
		}()
	}

	wg.Wait()
	pool.Close()

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := newPool(t, 4)
	pool.Close()

	if pool.Submit(func() { t.Error("This task should never execute") }) {
		t.Error("Task submission after close should return false")
	}
	if err := pool.Run(context.Background(), 3, func(int) error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Run() after close error = %v, want ErrPoolClosed", err)
	}
}

// TestWorkerPoolConcurrentClose tests concurrent close calls
func TestWorkerPoolConcurrentClose(t *testing.T) {
	pool := newPool(t, 4)
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			time.Sleep(time.Millisecond)
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Close()
		}()
	}
	wg.Wait()
}

func TestWorkerPoolRecoversSubmitPanics(t *testing.T) {
	pool := newPool(t, 2)

	var counter int64
	for i := 0; i < 3; i++ {
		pool.Submit(func() { panic("intentional panic") })
	}
	for i := 0; i < 10; i++ {
		pool.Submit(func() { atomic.AddInt64(&counter, 1) })
	}
	pool.Close()

	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
	if pool.Panics() != 3 {
		t.Errorf("Panics() = %d, want 3", pool.Panics())
	}
}

func TestRunExecutesEveryIndex(t *testing.T) {
	pool := newPool(t, 4)

	results := make([]int, 50)
	err := pool.Run(context.Background(), len(results), func(i int) error {
		results[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for i, v := range results {
		if v != i*i {
			t.Errorf("results[%d] = %d, want %d", i, v, i*i)
		}
	}

	// The pool is reusable after a run
	if err := pool.Run(context.Background(), 5, func(int) error { return nil }); err != nil {
		t.Errorf("second Run() error: %v", err)
	}
}

func TestRunReturnsLowestIndexError(t *testing.T) {
	pool := newPool(t, 4)

	errLow := errors.New("low")
	errHigh := errors.New("high")
	err := pool.Run(context.Background(), 10, func(i int) error {
		switch i {
		case 2:
			return errLow
		case 7:
			return errHigh
		}
		return nil
	})
	if !errors.Is(err, errLow) {
		t.Errorf("Run() error = %v, want %v", err, errLow)
	}
}

func TestRunConvertsPanics(t *testing.T) {
	pool := newPool(t, 2)

	err := pool.Run(context.Background(), 4, func(i int) error {
		if i == 1 {
			panic("boom")
		}
		return nil
	})
	if !errors.Is(err, ErrTaskPanicked) {
		t.Errorf("Run() error = %v, want ErrTaskPanicked", err)
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	pool := newPool(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int64
	err := pool.Run(ctx, 10, func(int) error {
		atomic.AddInt64(&ran, 1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if ran != 0 {
		t.Errorf("%d tasks ran after cancellation, want 0", ran)
	}
}

func TestRunZeroTasks(t *testing.T) {
	pool := newPool(t, 1)
	if err := pool.Run(context.Background(), 0, func(int) error { return errors.New("never") }); err != nil {
		t.Errorf("Run(0) error = %v, want nil", err)
	}
}

// BenchmarkWorkerPoolRun benchmarks a run of small tasks
func BenchmarkWorkerPoolRun(b *testing.B) {
	pool, _ := NewWorkerPool(runtime.NumCPU(), nil)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Run(context.Background(), 64, func(int) error {
			sum := 0
			for j := 0; j < 100; j++ {
				sum += j
			}
			_ = sum
			return nil
		})
	}
}

package parallel

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dd0wney/cluso-fable/pkg/logging"
)

func newPool(t *testing.T, workers int, opts ...Option) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers, opts...)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d): %v", workers, err)
	}
	return pool
}

func TestWorkerPoolSize(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"zero defaults to one", 0, 1},
		{"negative defaults to one", -5, 1},
		{"single", 1, 1},
		{"many", 64, 64},
		{"at limit", MaxWorkers, MaxWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newPool(t, tt.workers)
			defer pool.Close()
			if pool.Workers() != tt.want {
				t.Errorf("Expected %d workers, got %d", tt.want, pool.Workers())
			}
		})
	}
}

func TestWorkerPoolTooManyWorkers(t *testing.T) {
	_, err := NewWorkerPool(MaxWorkers + 1)
	if !errors.Is(err, ErrTooManyWorkers) {
		t.Errorf("Expected ErrTooManyWorkers, got %v", err)
	}
}

// TestWorkerPoolTaskExecution tests that all submitted tasks execute
func TestWorkerPoolTaskExecution(t *testing.T) {
	pool := newPool(t, 5)

	numTasks := 50
	executed := make([]bool, numTasks)
	var mu sync.Mutex

	for i := 0; i < numTasks; i++ {
		if !pool.Submit(func() {
			mu.Lock()
			executed[i] = true
			mu.Unlock()
		}) {
			t.Fatalf("Submit %d failed on an open pool", i)
		}
	}

	pool.Close()

	for i, exec := range executed {
		if !exec {
			t.Errorf("Task %d was not executed", i)
		}
	}
}

// TestWorkerPoolCloseRace tests that closing the pool while submitting tasks
// doesn't panic
func TestWorkerPoolCloseRace(t *testing.T) {
	for iteration := 0; iteration < 50; iteration++ {
		pool := newPool(t, 4)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					pool.Submit(func() {
						time.Sleep(time.Millisecond)
					})
				}
			}()
		}

		time.Sleep(2 * time.Millisecond)
		pool.Close()
		wg.Wait()
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := newPool(t, 4)

	if !pool.Submit(func() {}) {
		t.Error("Task submission before close should succeed")
	}

	pool.Close()

	if pool.Submit(func() { t.Error("This task should never execute") }) {
		t.Error("Task submission after close should return false")
	}
}

// TestWorkerPoolConcurrentClose tests concurrent and repeated close calls
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
	pool.Close()
}

// TestWorkerPoolWithPanic tests that panics in tasks are logged and don't
// stop the pool
func TestWorkerPoolWithPanic(t *testing.T) {
	var buf bytes.Buffer
	pool := newPool(t, 4, WithLogger(logging.NewJSONLogger(&buf, logging.ErrorLevel)))

	var counter int64
	for i := 0; i < 5; i++ {
		pool.Submit(func() {
			panic("intentional panic")
		})
	}
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}

	pool.Close()

	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
	if n := strings.Count(buf.String(), "worker task panicked"); n != 5 {
		t.Errorf("Expected 5 panic log lines, got %d", n)
	}
}

func TestMap(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	results, err := Map(8, items, func(n int) int { return n * n })
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("results[%d] = %d, want %d", i, r, i*i)
		}
	}
}

func TestMap_Empty(t *testing.T) {
	results, err := Map(4, nil, func(s string) int { return len(s) })
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
}

func TestMap_PanicYieldsZero(t *testing.T) {
	results, err := Map(2, []string{"a", "boom", "ccc"}, func(s string) int {
		if s == "boom" {
			panic("boom")
		}
		return len(s)
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := []int{1, 0, 3}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, results[i], want[i])
		}
	}
}

// BenchmarkWorkerPoolThroughput benchmarks worker pool throughput
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	pool, _ := NewWorkerPool(10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(func() {})
	}

	pool.Close()
}

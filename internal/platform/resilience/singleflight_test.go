package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlightDeduplicatesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int64

	const goroutines = 20
	results := make([]any, goroutines)
	shared := make([]bool, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			val, err, wasShared := g.Do("stage-result:tour-2026:14", func() (any, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "payload", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[idx] = val
			shared[idx] = wasShared
		}(i)
	}
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected exactly one execution, got %d", got)
	}
	sharedCount := 0
	for i := 0; i < goroutines; i++ {
		if results[i] != "payload" {
			t.Fatalf("goroutine %d got unexpected value %v", i, results[i])
		}
		if shared[i] {
			sharedCount++
		}
	}
	if sharedCount != goroutines-1 {
		t.Fatalf("expected %d shared results, got %d", goroutines-1, sharedCount)
	}
}

func TestSingleFlightRunsAgainAfterCompletion(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int64

	fn := func() (any, error) {
		executions.Add(1)
		return executions.Load(), nil
	}

	if val, err, shared := g.Do("leaderboard:giro-2026", fn); err != nil || shared || val != int64(1) {
		t.Fatalf("unexpected first call result: val=%v err=%v shared=%v", val, err, shared)
	}
	if val, err, shared := g.Do("leaderboard:giro-2026", fn); err != nil || shared || val != int64(2) {
		t.Fatalf("unexpected second call result: val=%v err=%v shared=%v", val, err, shared)
	}
}

package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/provider"
)

func TestRun_HappyPath(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	attempt := func(ctx context.Context, item int, a *provider.Adapter) (int, error) {
		return item * 10, nil
	}
	onFail := func(item int, err error) int { return -1 }

	results := Run(context.Background(), Options{Stage: "test", WorkerCount: 2}, items, nil, nil, attempt, onFail)
	require.Len(t, results, 5)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, results)
}

func TestRun_FailureUsesOnFail(t *testing.T) {
	items := []int{1, 2, 3}
	attempt := func(ctx context.Context, item int, a *provider.Adapter) (int, error) {
		if item == 2 {
			return 0, domain.NewPipelineError(domain.KindUpstreamError, "boom", "", nil)
		}
		return item, nil
	}
	onFail := func(item int, err error) int { return -999 }

	results := Run(context.Background(), Options{Stage: "test", WorkerCount: 3}, items, nil, nil, attempt, onFail)
	assert.Equal(t, []int{1, -999, 3}, results)
}

func TestRun_RetryableErrorFallsBackToSecondAdapter(t *testing.T) {
	primary := &provider.Adapter{}
	fallback := &provider.Adapter{}
	items := []int{1}
	attempt := func(ctx context.Context, item int, a *provider.Adapter) (string, error) {
		if a == primary {
			return "", domain.NewPipelineError(domain.KindTimeoutError, "timed out", "", nil)
		}
		return "fallback-succeeded", nil
	}
	onFail := func(item int, err error) string { return "failed" }

	results := Run(context.Background(), Options{Stage: "test", WorkerCount: 1}, items, primary, fallback, attempt, onFail)
	assert.Equal(t, []string{"fallback-succeeded"}, results)
}

func TestRun_NonRetryableErrorDoesNotFallBack(t *testing.T) {
	primary := &provider.Adapter{}
	fallback := &provider.Adapter{}
	calledFallback := false
	items := []int{1}
	attempt := func(ctx context.Context, item int, a *provider.Adapter) (string, error) {
		if a == fallback {
			calledFallback = true
			return "should not happen", nil
		}
		return "", domain.NewPipelineError(domain.KindShapeError, "bad shape", "", nil)
	}
	onFail := func(item int, err error) string { return "failed" }

	results := Run(context.Background(), Options{Stage: "test", WorkerCount: 1}, items, primary, fallback, attempt, onFail)
	assert.False(t, calledFallback)
	assert.Equal(t, []string{"failed"}, results)
}

func TestRun_ProgressEventsFireEveryN(t *testing.T) {
	var mu sync.Mutex
	var events []domain.ProgressEvent
	listener := domain.ProgressListenerFunc(func(ev domain.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	items := make([]int, 25)
	attempt := func(ctx context.Context, item int, a *provider.Adapter) (int, error) { return item, nil }
	onFail := func(item int, err error) int { return -1 }

	Run(context.Background(), Options{Stage: "test", WorkerCount: 4, ProgressEvery: 10, Listener: listener}, items, nil, nil, attempt, onFail)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, 25, last.Done)
	assert.Equal(t, 25, last.Total)
}

func TestRun_RespectsWorkerCountBound(t *testing.T) {
	var concurrent int32
	var maxConcurrent int32
	items := make([]int, 20)
	attempt := func(ctx context.Context, item int, a *provider.Adapter) (int, error) {
		n := atomic.AddInt32(&concurrent, 1)
		for {
			m := atomic.LoadInt32(&maxConcurrent)
			if n <= m || atomic.CompareAndSwapInt32(&maxConcurrent, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&concurrent, -1)
		return item, nil
	}
	onFail := func(item int, err error) int { return -1 }

	Run(context.Background(), Options{Stage: "test", WorkerCount: 3}, items, nil, nil, attempt, onFail)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxConcurrent), int32(3))
}

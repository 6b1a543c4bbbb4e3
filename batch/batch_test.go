package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanFor(t *testing.T) {
	tests := []struct {
		name            string
		tasks, maxW, c  int
		wantW, wantConc int
	}{
		{"fewer tasks than one worker handles", 10, 16, 100, 1, 100},
		{"exact fit", 200, 16, 100, 2, 100},
		{"packs into two workers", 100, 16, 80, 2, 80},
		{"clamped workers keep the concurrency cap", 10000, 4, 100, 4, 100},
		{"single task", 1, 16, 100, 1, 100},
		{"no tasks", 0, 16, 100, 0, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := PlanFor(tc.tasks, tc.maxW, tc.c)
			assert.Equal(t, tc.wantW, p.Workers)
			assert.Equal(t, tc.wantConc, p.Concurrency)
			assert.LessOrEqual(t, p.Concurrency, tc.c, "concurrency stays under the cap")
		})
	}
}

func TestPoolRunsEveryTask(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]int{}

	pool := NewPool(Plan{Workers: 2, Concurrency: 4}, 0)
	pool.Run(context.Background(), 50, func(_ context.Context, i int) {
		mu.Lock()
		seen[i]++
		mu.Unlock()
	})

	assert.Len(t, seen, 50)
	for i, n := range seen {
		assert.Equal(t, 1, n, "task %d ran once", i)
	}
}

func TestPoolTaskTimeout(t *testing.T) {
	var timedOut atomic.Int32

	pool := NewPool(Plan{Workers: 1, Concurrency: 4}, 10*time.Millisecond)
	pool.Run(context.Background(), 4, func(ctx context.Context, _ int) {
		select {
		case <-ctx.Done():
			timedOut.Add(1)
		case <-time.After(time.Second):
		}
	})

	assert.Equal(t, int32(4), timedOut.Load())
}

func TestPoolStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Int32

	pool := NewPool(Plan{Workers: 1, Concurrency: 1}, 0)
	pool.Run(ctx, 100, func(_ context.Context, i int) {
		if i == 3 {
			cancel()
		}
		ran.Add(1)
	})

	assert.Less(t, ran.Load(), int32(100))
}

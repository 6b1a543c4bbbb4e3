package batch

import (
	"context"
	"sync"
	"time"

	"github.com/eokit/stacforge/logger"
)

// Pool executes tasks across the planned worker fleet. Every worker runs
// its concurrency slots against a shared queue, so a slow task never
// blocks the rest of the batch.
type Pool struct {
	plan    Plan
	timeout time.Duration
}

// NewPool builds a pool for a plan. A zero timeout disables per-task
// deadlines.
func NewPool(plan Plan, taskTimeout time.Duration) *Pool {
	return &Pool{plan: plan, timeout: taskTimeout}
}

// Run feeds task indices 0..tasks-1 through fn and blocks until every
// dispatched task finished. Each invocation gets its own deadline. A
// canceled parent context stops dispatch and drops tasks still queued;
// running tasks wind down on their own.
func (p *Pool) Run(ctx context.Context, tasks int, fn func(ctx context.Context, index int)) {
	if tasks == 0 || p.plan.Workers == 0 {
		return
	}
	logger.Debugw("starting worker fleet",
		"workers", p.plan.Workers, "concurrency", p.plan.Concurrency, "tasks", tasks)

	queue := make(chan int)
	var wg sync.WaitGroup
	slots := p.plan.Workers * p.plan.Concurrency
	if slots > tasks {
		slots = tasks
	}
	for i := 0; i < slots; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				if ctx.Err() != nil {
					continue
				}
				p.runOne(ctx, idx, fn)
			}
		}()
	}

dispatch:
	for i := 0; i < tasks; i++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case queue <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(queue)
	wg.Wait()
}

func (p *Pool) runOne(ctx context.Context, idx int, fn func(context.Context, int)) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	fn(ctx, idx)
}

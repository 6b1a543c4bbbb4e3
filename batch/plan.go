// Package batch sizes and runs the worker fleet for a processing run.
package batch

// Plan is the worker layout chosen for a task count.
type Plan struct {
	Workers     int
	Concurrency int
}

// PlanFor packs tasks into the fewest workers that still satisfy the
// per-worker concurrency cap. Concurrency never exceeds the cap: when the
// worker count is clamped by the maximum, excess tasks queue behind the
// available slots.
func PlanFor(tasks, maxWorkers, concurrencyPerWorker int) Plan {
	if tasks <= 0 {
		return Plan{Workers: 0, Concurrency: concurrencyPerWorker}
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if concurrencyPerWorker < 1 {
		concurrencyPerWorker = 1
	}
	workers := (tasks + concurrencyPerWorker - 1) / concurrencyPerWorker
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return Plan{Workers: workers, Concurrency: concurrencyPerWorker}
}

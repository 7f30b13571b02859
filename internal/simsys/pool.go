// pool.go holds the GOMAXPROCS correction and a data-parallel range
// splitter for tick stages.
//
// In a containerized deployment GOMAXPROCS defaults to the host's core
// count rather than the container's cgroup quota, which over-subscribes
// the worker pool. automaxprocs.Set corrects it once at process start.
package simsys

import (
	"runtime"
	"sync"

	"go.uber.org/automaxprocs/maxprocs"
)

var initPoolOnce sync.Once

// InitComputePool applies the cgroup-aware GOMAXPROCS correction. Safe to
// call multiple times; only the first call has effect. logf receives
// informational messages in the style automaxprocs expects.
func InitComputePool(logf func(format string, args ...any)) {
	initPoolOnce.Do(func() {
		_, _ = maxprocs.Set(maxprocs.Logger(logf))
	})
}

// WorkerCount returns how many goroutines a data-parallel stage should
// use to split work, leaving one core free for the tick scheduler's own
// bookkeeping and the connection-handling goroutines.
func WorkerCount() int {
	n := runtime.GOMAXPROCS(0) - 1
	if n < 1 {
		n = 1
	}
	return n
}

// SplitRange partitions [0, n) into WorkerCount() contiguous chunks and
// runs fn on each chunk concurrently, blocking until all finish. No tick
// stage calls it: the bot engine's sweep and the physics, gravity and
// collision stages all run as sequential loops.
func SplitRange(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := WorkerCount()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

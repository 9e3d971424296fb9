// Package parallel provides the data-parallel helpers shared by estimator
// fitting and the batch pipeline jobs.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallelize divides the specified total number (items) according to the
// number of CPU cores, and executes the specified function (fn) in parallel
// for each range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items // no need for more workers than items
	}

	// Items per worker, ceiling division.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of
// items exceeds the threshold. Below the threshold the work runs
// sequentially, which is cheaper for small inputs.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}

// ForEach runs fn for every index in [0, n) with at most workers goroutines
// in flight. It is meant for independent tasks such as per-recording
// downloads: fn should record per-item failures itself and reserve its error
// return for conditions that must abort the whole batch. Context
// cancellation stops scheduling of new tasks and is reported as the
// context's error once the in-flight tasks have drained, so callers can
// distinguish a canceled batch from a completed one.
func ForEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// The derived context also ends when Wait returns, so cancellation is
	// checked against the caller's context after the drain.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return fn(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

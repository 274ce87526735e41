// Package parallel splits row ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// Workers normalizes a requested worker count: values below 1 mean one
// worker per CPU core.
func Workers(requested int) int {
	if requested < 1 {
		return runtime.NumCPU()
	}
	return requested
}

// Parallelize divides items into contiguous ranges, one per worker, and runs
// fn on each range concurrently. workers < 1 uses runtime.NumCPU().
//
// The first error returned by any range is returned after every worker has
// finished. A panic inside fn is recovered and reported as a PanicError.
func Parallelize(items, workers int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}

	numWorkers := Workers(workers)
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

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
			if err := runRange(fn, s, e); err != nil {
				once.Do(func() { firstErr = err })
			}
		}(start, end)
	}

	wg.Wait()
	return firstErr
}

// ParallelizeWithThreshold runs fn sequentially over [0, items) when items
// does not exceed threshold, and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold, workers int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}
	if items <= threshold || Workers(workers) == 1 {
		return runRange(fn, 0, items)
	}
	return Parallelize(items, workers, fn)
}

func runRange(fn func(start, end int) error, start, end int) (err error) {
	defer errors.Recover(&err, "parallel.range")
	return fn(start, end)
}

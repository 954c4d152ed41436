// Package batch applies a function to many records with a bounded number of
// goroutines.
package batch

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// minParallel is the smallest record count worth spreading over workers.
const minParallel = 8

// Workers resolves a requested worker count for n records. Values < 0 force
// serial processing, zero selects GOMAXPROCS, and the result never exceeds n.
func Workers(requested, n int) int {
	if n < 2 || requested < 0 {
		return 1
	}
	workers := requested
	if workers == 0 {
		if n < minParallel {
			return 1
		}
		workers = runtime.GOMAXPROCS(0)
	}
	return max(1, min(workers, n))
}

// Run calls fn for every i in [0, n) on the given number of workers. Each
// worker takes every workers-th index, so records are visited in order when
// workers is 1. Processing stops at the first error or when ctx is done;
// that error is returned.
func Run(ctx context.Context, n, workers int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if workers < 2 {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var stop atomic.Bool
	errCh := make(chan error, 1)
	fail := func(err error) {
		if stop.CompareAndSwap(false, true) {
			errCh <- err
		}
	}

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			for i := start; i < n; i += workers {
				if stop.Load() {
					return
				}
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				if err := fn(i); err != nil {
					fail(err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// Package worker runs pure per-record passes with bounded parallelism.
// Results are written by input index, so the output order is identical
// whether the pass runs on one worker or many.
package worker

import (
	"context"
	"sync"
)

// Pool bounds the parallelism of index-addressed work.
type Pool struct {
	workers int
}

// New creates a pool. workers <= 0 means sequential.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the configured parallelism.
func (p *Pool) Workers() int { return p.workers }

// Run invokes fn once for every index in [0, n). fn must be safe for
// concurrent calls and must write its result keyed by the index it
// received. Run returns early with ctx.Err() when the context is
// cancelled; indices already handed out still finish.
func (p *Pool) Run(ctx context.Context, n int, fn func(i int)) error {
	if n <= 0 {
		return nil
	}
	if p.workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
		return nil
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()
	return err
}

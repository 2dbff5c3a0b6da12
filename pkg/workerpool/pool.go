// Package workerpool wraps an ants goroutine pool with a chunked
// fork-join helper for CPU-bound scans over index ranges.
package workerpool

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Pool is safe for concurrent use. A nil *Pool runs work inline.
type Pool struct {
	pool *ants.Pool
}

// New creates a pool with size workers.
func New(size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}
	p, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Release stops the workers.
func (p *Pool) Release() {
	if p != nil && p.pool != nil {
		p.pool.Release()
	}
}

// Range splits [0,n) into chunks of at most chunk items and calls fn for
// each [lo,hi) on the pool, blocking until all chunks finish. fn must only
// write to state owned by its own chunk.
func (p *Pool) Range(n, chunk int, fn func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = n
	}
	if p == nil || p.pool == nil || n <= chunk {
		fn(0, n)
		return nil
	}

	var wg sync.WaitGroup
	var submitErr error
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			fn(lo, hi)
		}); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submitting chunk [%d,%d): %w", lo, hi, err)
			break
		}
	}
	wg.Wait()
	return submitErr
}

// Chunks returns how many chunks Range will use.
func Chunks(n, chunk int) int {
	if n <= 0 {
		return 0
	}
	if chunk <= 0 || chunk >= n {
		return 1
	}
	return (n + chunk - 1) / chunk
}

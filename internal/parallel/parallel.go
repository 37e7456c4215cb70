// Package parallel provides the fork-join loop used by the gate kernels.
//
// A kernel flattens its collapsed loop levels into one iteration space of
// independent groups and hands it to a Runner, which splits the space into
// contiguous static chunks and returns once every chunk is done.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Runner executes body over [0, count) in disjoint half-open chunks.
// For returns after every chunk has completed.
type Runner interface {
	For(count int, body func(lo, hi int))
}

// Serial runs the whole range inline on the calling goroutine.
type Serial struct{}

// For calls body(0, count) when count is positive.
func (Serial) For(count int, body func(lo, hi int)) {
	if count > 0 {
		body(0, count)
	}
}

// Pool is a statically scheduled work-sharing loop over a fixed number of
// workers.
type Pool struct {
	workers  int
	minChunk int
}

// NewPool returns a pool with the given worker count (<= 0 means GOMAXPROCS)
// that never hands out chunks smaller than minChunk iterations (<= 0 means 1).
func NewPool(workers, minChunk int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if minChunk <= 0 {
		minChunk = 1
	}
	return &Pool{workers: workers, minChunk: minChunk}
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// MinChunk returns the smallest chunk size handed to a worker.
func (p *Pool) MinChunk() int {
	return p.minChunk
}

// Chunks returns how many chunks For would split count iterations into.
func (p *Pool) Chunks(count int) int {
	if count <= 0 {
		return 0
	}
	chunks := (count + p.minChunk - 1) / p.minChunk
	if chunks > p.workers {
		chunks = p.workers
	}
	return chunks
}

// For splits [0, count) into at most Workers contiguous chunks of equal size
// and runs them concurrently.
func (p *Pool) For(count int, body func(lo, hi int)) {
	chunks := p.Chunks(count)
	if chunks == 0 {
		return
	}
	if chunks == 1 {
		body(0, count)
		return
	}

	size := (count + chunks - 1) / chunks

	var g errgroup.Group
	for lo := size; lo < count; lo += size {
		hi := min(lo+size, count)
		g.Go(func() error {
			body(lo, hi)
			return nil
		})
	}
	body(0, size)
	_ = g.Wait()
}

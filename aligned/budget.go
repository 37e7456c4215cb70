package aligned

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Budget caps the bytes held by live buffers. A nil *Budget is unlimited.
type Budget struct {
	limit int64
	sem   *semaphore.Weighted
	used  atomic.Int64
}

// NewBudget returns a budget of limit bytes. A non-positive limit only tracks
// usage without enforcing a cap.
func NewBudget(limit int64) *Budget {
	b := &Budget{limit: limit}
	if limit > 0 {
		b.sem = semaphore.NewWeighted(limit)
	}
	return b
}

// Limit returns the configured limit in bytes (0 if unlimited).
func (b *Budget) Limit() int64 {
	if b == nil || b.limit < 0 {
		return 0
	}
	return b.limit
}

// Used returns the bytes currently reserved.
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// reserve never blocks: an exhausted budget fails immediately.
func (b *Budget) reserve(bytes int64) error {
	if b == nil {
		return nil
	}
	if b.sem != nil && !b.sem.TryAcquire(bytes) {
		return fmt.Errorf("%w: budget of %d bytes exhausted (%d in use, %d requested)",
			ErrOutOfMemory, b.limit, b.used.Load(), bytes)
	}
	b.used.Add(bytes)
	return nil
}

func (b *Budget) release(bytes int64) {
	if b == nil {
		return
	}
	if b.sem != nil {
		b.sem.Release(bytes)
	}
	b.used.Add(-bytes)
}

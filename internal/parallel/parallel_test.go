package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func collect(t *testing.T, r Runner, count int) []int {
	t.Helper()

	hits := make([]int32, count)
	r.For(count, func(lo, hi int) {
		if lo >= hi {
			t.Errorf("empty chunk [%d, %d)", lo, hi)
		}
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})

	out := make([]int, count)
	for i, h := range hits {
		out[i] = int(h)
	}
	return out
}

func TestPoolCoversRangeOnce(t *testing.T) {
	tests := []struct {
		workers, minChunk, count int
	}{
		{1, 1, 10},
		{4, 1, 10},
		{4, 1, 3},
		{8, 16, 1000},
		{3, 1, 1 << 12},
		{16, 1024, 1 << 10},
		{7, 5, 1},
	}

	for _, tt := range tests {
		p := NewPool(tt.workers, tt.minChunk)
		for i, h := range collect(t, p, tt.count) {
			if h != 1 {
				t.Fatalf("workers=%d minChunk=%d count=%d: index %d visited %d times",
					tt.workers, tt.minChunk, tt.count, i, h)
			}
		}
	}
}

func TestPoolChunks(t *testing.T) {
	p := NewPool(4, 100)
	tests := []struct{ count, want int }{
		{0, 0},
		{-5, 0},
		{1, 1},
		{100, 1},
		{101, 2},
		{350, 4},
		{1 << 20, 4},
	}
	for _, tt := range tests {
		if got := p.Chunks(tt.count); got != tt.want {
			t.Errorf("Chunks(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestPoolSingleChunkRunsInline(t *testing.T) {
	p := NewPool(8, 1<<10)

	var mu sync.Mutex
	calls := 0
	p.For(512, func(lo, hi int) {
		mu.Lock()
		calls++
		mu.Unlock()
		if lo != 0 || hi != 512 {
			t.Errorf("chunk = [%d, %d), want [0, 512)", lo, hi)
		}
	})
	if calls != 1 {
		t.Fatalf("body called %d times, want 1", calls)
	}
}

func TestNewPoolDefaults(t *testing.T) {
	p := NewPool(0, 0)
	if p.Workers() < 1 {
		t.Fatalf("Workers() = %d, want >= 1", p.Workers())
	}
	if p.MinChunk() != 1 {
		t.Fatalf("MinChunk() = %d, want 1", p.MinChunk())
	}
}

func TestSerial(t *testing.T) {
	for i, h := range collect(t, Serial{}, 33) {
		if h != 1 {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}

	called := false
	Serial{}.For(0, func(int, int) { called = true })
	if called {
		t.Fatal("Serial.For(0) called body")
	}
}

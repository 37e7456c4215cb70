package stride

import (
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var targetSets = []struct {
	qubits int
	ids    []uint
}{
	{1, []uint{0}},
	{3, []uint{1}},
	{3, []uint{2, 0}},
	{4, []uint{0, 3}},
	{5, []uint{4, 1, 2}},
	{6, []uint{0, 5, 2, 3}},
	{7, []uint{6, 0, 3, 1, 4}},
	{5, []uint{4, 3, 2, 1, 0}},
	{8, []uint{2, 7, 5}},
}

// visit records every amplitude index touched by the walk and fails on the
// first index seen twice.
func visit(t *testing.T, p *Plan, lo, hi int, ctrlMask uint64) *roaring.Bitmap {
	t.Helper()

	seen := roaring.New()
	p.Walk(lo, hi, ctrlMask, func(base int) {
		for _, off := range p.Offsets() {
			if !seen.CheckedAdd(uint32(base + off)) {
				t.Fatalf("index %d visited twice", base+off)
			}
		}
	})
	return seen
}

func TestWalkCoversStateExactlyOnce(t *testing.T) {
	for _, ts := range targetSets {
		n := 1 << ts.qubits
		for collapse := 1; collapse <= len(ts.ids)+1; collapse++ {
			t.Run(fmt.Sprintf("n=%d/ids=%v/collapse=%d", ts.qubits, ts.ids, collapse), func(t *testing.T) {
				p := New(n, ts.ids, collapse)
				require.Equal(t, p.Groups(), p.Outer()*p.Inner())

				seen := visit(t, &p, 0, p.Outer(), 0)
				assert.Equal(t, uint64(n), seen.GetCardinality())
				assert.Equal(t, uint32(n-1), seen.Maximum())
			})
		}
	}
}

func TestWalkChunksAreDisjoint(t *testing.T) {
	p := New(1<<7, []uint{6, 0, 3}, 0)
	outer := p.Outer()
	require.Greater(t, outer, 3)

	total := roaring.New()
	for lo := 0; lo < outer; lo += 3 {
		chunk := visit(t, &p, lo, min(lo+3, outer), 0)
		assert.False(t, total.Intersects(chunk), "chunk starting at %d overlaps", lo)
		total.Or(chunk)
	}
	assert.Equal(t, uint64(1<<7), total.GetCardinality())
}

func TestNestedMatchesWalk(t *testing.T) {
	for _, ts := range targetSets {
		p := New(1<<ts.qubits, ts.ids, 0)

		var nested, walked []int
		p.Nested(func(base int) { nested = append(nested, base) })
		p.Walk(0, p.Outer(), 0, func(base int) { walked = append(walked, base) })

		assert.Equal(t, nested, walked, "ids=%v", ts.ids)
		for _, base := range walked {
			assert.Zero(t, base&p.TargetMask(), "base %d has a target bit set", base)
		}
	}
}

func TestSortedDescending(t *testing.T) {
	p := New(1<<8, []uint{2, 7, 5}, 0)
	assert.Equal(t, []int{128, 32, 4}, p.Sorted())
	assert.Equal(t, 128|32|4, p.TargetMask())
}

func TestOffsetsMostSignificantFirst(t *testing.T) {
	// ids[0] maps to matrix bit k-1, ids[k-1] to matrix bit 0.
	p := New(1<<4, []uint{3, 0}, 0)
	assert.Equal(t, []int{0, 1, 8, 9}, p.Offsets())

	p = New(1<<4, []uint{0, 3}, 0)
	assert.Equal(t, []int{0, 8, 1, 9}, p.Offsets())
}

func TestLevelCounts(t *testing.T) {
	p := New(1<<6, []uint{1, 4}, 0)
	// strides 16, 2: n/(2*16)=2, 16/(2*2)=4, 2
	assert.Equal(t, []int{2, 4, 2}, p.LevelCounts())

	prod := 1
	for _, c := range p.LevelCounts() {
		prod *= c
	}
	assert.Equal(t, p.Groups(), prod)
}

func TestCollapseInner(t *testing.T) {
	p := New(1<<6, []uint{1, 4}, 1)
	assert.Equal(t, 8, p.Inner())
	assert.Equal(t, 2, p.Outer())

	p = New(1<<6, []uint{1, 4}, 2)
	assert.Equal(t, 2, p.Inner())

	for _, c := range []int{0, 3, 4, -1} {
		p = New(1<<6, []uint{1, 4}, c)
		assert.Equal(t, 1, p.Inner(), "collapse %d", c)
	}
}

func TestWalkControlMask(t *testing.T) {
	p := New(1<<4, []uint{0}, 0)
	ctrl := uint64(1<<3 | 1<<1)

	var bases []int
	p.Walk(0, p.Outer(), ctrl, func(base int) { bases = append(bases, base) })
	assert.Equal(t, []int{10, 14}, bases)
}

func TestAllQubitsTargeted(t *testing.T) {
	p := New(1<<3, []uint{2, 1, 0}, 0)
	assert.Equal(t, 1, p.Groups())

	var bases []int
	p.Walk(0, p.Outer(), 0, func(base int) { bases = append(bases, base) })
	assert.Equal(t, []int{0}, bases)
}

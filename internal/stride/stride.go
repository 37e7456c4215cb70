// Package stride partitions a state vector into the independent amplitude
// groups a k-target gate updates.
//
// For targets with strides d_j = 1 << id, the group bases are the indices
// whose target bits are all zero. Visiting them is a k+1 level nested loop
// over the strides sorted in descending order: the outer level steps by
// 2*ds[0], level j by 2*ds[j], and the innermost level by 1. Plan exposes the
// same walk in flattened form so that a prefix of the levels can be collapsed
// into one parallel iteration space.
package stride

import "sort"

// Plan describes the group walk for one gate application.
type Plan struct {
	n          int
	sorted     []int
	offsets    []int
	targetMask int
	groups     int
	inner      int
}

// New builds the plan for a state of n amplitudes and targets ids, declared
// most significant first. collapse is the number of nested levels folded
// into the outer iteration space; values outside [1, k+1] collapse all levels.
//
// ids must be distinct and satisfy 1<<id < n.
func New(n int, ids []uint, collapse int) Plan {
	k := len(ids)
	sorted := make([]int, k)
	mask := 0
	for i, id := range ids {
		sorted[i] = 1 << id
		mask |= 1 << id
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	offsets := make([]int, 1<<k)
	for c := range offsets {
		off := 0
		for b := 0; b < k; b++ {
			if c&(1<<b) != 0 {
				off += 1 << ids[k-1-b]
			}
		}
		offsets[c] = off
	}

	p := Plan{
		n:          n,
		sorted:     sorted,
		offsets:    offsets,
		targetMask: mask,
		groups:     n >> k,
		inner:      1,
	}

	if collapse < 1 || collapse > k+1 {
		collapse = k + 1
	}
	levels := p.LevelCounts()
	for _, c := range levels[collapse:] {
		p.inner *= c
	}
	return p
}

// Sorted returns the target strides in descending order.
func (p *Plan) Sorted() []int { return p.sorted }

// Offsets returns, for each matrix index c, the distance of amplitude c from
// the group base. Bit b of c selects the stride of target ids[k-1-b].
func (p *Plan) Offsets() []int { return p.offsets }

// TargetMask returns the OR of all target strides.
func (p *Plan) TargetMask() int { return p.targetMask }

// Groups returns the number of amplitude groups, n >> k.
func (p *Plan) Groups() int { return p.groups }

// Inner returns how many consecutive groups one collapsed iteration covers.
func (p *Plan) Inner() int { return p.inner }

// Outer returns the size of the collapsed iteration space.
func (p *Plan) Outer() int { return p.groups / p.inner }

// LevelCounts returns the trip count of each of the k+1 nested levels,
// outermost first. Their product is Groups.
func (p *Plan) LevelCounts() []int {
	k := len(p.sorted)
	counts := make([]int, k+1)
	if k == 0 {
		counts[0] = p.n
		return counts
	}
	counts[0] = p.n / (2 * p.sorted[0])
	for j := 1; j < k; j++ {
		counts[j] = p.sorted[j-1] / (2 * p.sorted[j])
	}
	counts[k] = p.sorted[k-1]
	return counts
}

// Base returns the base index of group g by inserting a zero bit at every
// target position, lowest stride first.
func (p *Plan) Base(g int) int {
	for j := len(p.sorted) - 1; j >= 0; j-- {
		low := p.sorted[j] - 1
		g = (g & low) | ((g &^ low) << 1)
	}
	return g
}

// Next returns the base following base in walk order. The increment carries
// across the target bits, which are then cleared again.
func (p *Plan) Next(base int) int {
	return ((base | p.targetMask) + 1) &^ p.targetMask
}

// Range returns the group interval [first, last) covered by collapsed
// iterations [lo, hi).
func (p *Plan) Range(lo, hi int) (first, last int) {
	return lo * p.inner, hi * p.inner
}

// Walk calls fn with every group base of collapsed iterations [lo, hi).
// A non-zero ctrlMask skips bases where (base & ctrlMask) != ctrlMask.
func (p *Plan) Walk(lo, hi int, ctrlMask uint64, fn func(base int)) {
	first, last := p.Range(lo, hi)
	base := p.Base(first)
	cm := int(ctrlMask)
	for g := first; g < last; g++ {
		if base&cm == cm {
			fn(base)
		}
		base = p.Next(base)
	}
}

// Nested calls fn with every group base using the explicit nested loops over
// the descending strides. It produces the same sequence as Walk over the full
// range without a control mask.
func (p *Plan) Nested(fn func(base int)) {
	k := len(p.sorted)
	var level func(depth, start, limit int)
	level = func(depth, start, limit int) {
		if depth == k {
			for i := 0; i < limit; i++ {
				fn(start + i)
			}
			return
		}
		step := 2 * p.sorted[depth]
		for i := 0; i < limit; i += step {
			level(depth+1, start+i, p.sorted[depth])
		}
	}
	level(0, 0, p.n)
}

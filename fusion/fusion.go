// Package fusion merges consecutive gates into wider gates before they reach
// the kernels.
//
// Every kernel call sweeps the complete state vector, so applying one fused
// 5-qubit gate is usually cheaper than applying several small gates on the
// same qubits one after another. A Fuser keeps one pending gate and folds
// each added gate into it while the union of targets stays within
// kernel.MaxArity and the control mask is unchanged.
package fusion

import (
	"github.com/cwbudde/algo-qsim/gate"
	"github.com/cwbudde/algo-qsim/kernel"
)

// Fuser accumulates gates for one state vector. It is not safe for
// concurrent use.
type Fuser struct {
	eng *kernel.Engine
	psi []complex128

	maxArity int
	targets  []uint
	m        kernel.Matrix
	ctrl     uint64

	added   int
	applied int
}

// Option configures a Fuser.
type Option func(*Fuser)

// WithMaxArity caps the width of fused gates. Values outside
// [1, kernel.MaxArity] are ignored.
func WithMaxArity(k int) Option {
	return func(f *Fuser) {
		if k >= 1 && k <= kernel.MaxArity {
			f.maxArity = k
		}
	}
}

// New returns a Fuser applying through eng to psi.
func New(eng *kernel.Engine, psi []complex128, opts ...Option) *Fuser {
	f := &Fuser{eng: eng, psi: psi, maxArity: kernel.MaxArity}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Add queues m on targets under ctrlMask. The pending gate is flushed first
// when the gate cannot be merged into it.
func (f *Fuser) Add(targets []uint, m kernel.Matrix, ctrlMask uint64) error {
	if err := kernel.Validate(len(f.psi), targets, m, ctrlMask); err != nil {
		return err
	}
	f.added++

	if f.m != nil {
		union := unionOf(f.targets, targets)
		if len(union) <= f.maxArity && ctrlMask == f.ctrl {
			prev := expand(f.m, f.targets, union)
			next := expand(m, targets, union)
			f.targets = union
			f.m = gate.Mul(next, prev)
			return nil
		}
		f.Flush()
	}

	if len(targets) > f.maxArity {
		f.eng.Apply(f.psi, targets, m, ctrlMask)
		f.applied++
		return nil
	}
	f.targets = append([]uint(nil), targets...)
	f.m = clone(m)
	f.ctrl = ctrlMask
	return nil
}

// Flush applies the pending gate, if any.
func (f *Fuser) Flush() {
	if f.m == nil {
		return
	}
	f.eng.Apply(f.psi, f.targets, f.m, f.ctrl)
	f.applied++
	f.targets, f.m, f.ctrl = nil, nil, 0
}

// Pending returns the targets of the pending gate, nil if there is none.
func (f *Fuser) Pending() []uint { return f.targets }

// Added returns the number of gates passed to Add.
func (f *Fuser) Added() int { return f.added }

// Applied returns the number of kernel calls issued so far.
func (f *Fuser) Applied() int { return f.applied }

// unionOf returns a followed by the elements of b not in a.
func unionOf(a, b []uint) []uint {
	out := append([]uint(nil), a...)
	for _, id := range b {
		found := false
		for _, x := range a {
			if x == id {
				found = true
				break
			}
		}
		if !found {
			out = append(out, id)
		}
	}
	return out
}

// expand lifts m from targets onto union, a superset of targets, by acting
// as the identity on the additional qubits.
func expand(m kernel.Matrix, targets, union []uint) kernel.Matrix {
	if len(targets) == len(union) && equalOrder(targets, union) {
		return m
	}
	k, K := len(targets), len(union)

	// pos[j] is the union index bit of targets[j].
	pos := make([]int, k)
	var targetBits int
	for j, id := range targets {
		for u, x := range union {
			if x == id {
				pos[j] = K - 1 - u
				targetBits |= 1 << pos[j]
			}
		}
	}
	extract := func(idx int) int {
		v := 0
		for j := range targets {
			if idx&(1<<pos[j]) != 0 {
				v |= 1 << (k - 1 - j)
			}
		}
		return v
	}

	dim := 1 << K
	out := make(kernel.Matrix, dim)
	for r := range out {
		out[r] = make([]complex128, dim)
		for c := range out[r] {
			if r&^targetBits == c&^targetBits {
				out[r][c] = m[extract(r)][extract(c)]
			}
		}
	}
	return out
}

func equalOrder(a, b []uint) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clone(m kernel.Matrix) kernel.Matrix {
	out := make(kernel.Matrix, len(m))
	for r := range m {
		out[r] = append([]complex128(nil), m[r]...)
	}
	return out
}

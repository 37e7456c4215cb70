package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/lane"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel1 applies a one-qubit gate.
func Kernel1(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)
	d0 := p.Offsets()[1]

	var mm, mt [2]lane.Pair
	packRows(t.Matrix, 2, mm[:], mt[:])
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				v0 := lane.Broadcast(psi[base])
				v1 := lane.Broadcast(psi[base+d0])
				lane.Add(lane.Mul(v0, mm[0], mt[0]), lane.Mul(v1, mm[1], mt[1])).Store(psi, base, base+d0)
			}
			base = p.Next(base)
		}
	})
}

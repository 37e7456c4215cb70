package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/lane"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel2 applies a two-qubit gate.
func Kernel2(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)
	off := p.Offsets()
	d0, d1, d2 := off[1], off[2], off[3]

	var mm, mt [8]lane.Pair
	packRows(t.Matrix, 4, mm[:], mt[:])
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				v0 := lane.Broadcast(psi[base])
				v1 := lane.Broadcast(psi[base+d0])
				v2 := lane.Broadcast(psi[base+d1])
				v3 := lane.Broadcast(psi[base+d2])

				r0 := lane.Add(
					lane.Add(lane.Mul(v0, mm[0], mt[0]), lane.Mul(v1, mm[1], mt[1])),
					lane.Add(lane.Mul(v2, mm[2], mt[2]), lane.Mul(v3, mm[3], mt[3])),
				)
				r1 := lane.Add(
					lane.Add(lane.Mul(v0, mm[4], mt[4]), lane.Mul(v1, mm[5], mt[5])),
					lane.Add(lane.Mul(v2, mm[6], mt[6]), lane.Mul(v3, mm[7], mt[7])),
				)
				r0.Store(psi, base, base+d0)
				r1.Store(psi, base+d1, base+d2)
			}
			base = p.Next(base)
		}
	})
}

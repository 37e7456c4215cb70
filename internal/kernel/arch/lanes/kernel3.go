package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/lane"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel3 applies a three-qubit gate.
func Kernel3(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)

	var off [8]int
	copy(off[:], p.Offsets())
	var mm, mt [32]lane.Pair
	packRows(t.Matrix, 8, mm[:], mt[:])
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		var v [8]lane.Pair
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				for c := range v {
					v[c] = lane.Broadcast(psi[base+off[c]])
				}
				for r := 0; r < 4; r++ {
					row := r * 8
					acc := lane.Mul(v[0], mm[row], mt[row])
					for c := 1; c < 8; c++ {
						acc = lane.Add(acc, lane.Mul(v[c], mm[row+c], mt[row+c]))
					}
					acc.Store(psi, base+off[2*r], base+off[2*r+1])
				}
			}
			base = p.Next(base)
		}
	})
}

package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/lane"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel4 applies a four-qubit gate.
func Kernel4(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)

	var off [16]int
	copy(off[:], p.Offsets())
	var mm, mt [128]lane.Pair
	packRows(t.Matrix, 16, mm[:], mt[:])
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		var v [16]lane.Pair
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				for c := range v {
					v[c] = lane.Broadcast(psi[base+off[c]])
				}
				for r := 0; r < 8; r++ {
					row := r * 16
					acc := lane.Mul(v[0], mm[row], mt[row])
					for c := 1; c < 16; c++ {
						acc = lane.Add(acc, lane.Mul(v[c], mm[row+c], mt[row+c]))
					}
					acc.Store(psi, base+off[2*r], base+off[2*r+1])
				}
			}
			base = p.Next(base)
		}
	})
}

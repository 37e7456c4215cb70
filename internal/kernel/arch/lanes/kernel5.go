package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/lane"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel5 applies a five-qubit gate.
func Kernel5(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)

	var off [32]int
	copy(off[:], p.Offsets())
	var mm, mt [512]lane.Pair
	packRows(t.Matrix, 32, mm[:], mt[:])
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		var v [32]lane.Pair
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				for c := range v {
					v[c] = lane.Broadcast(psi[base+off[c]])
				}
				for r := 0; r < 16; r++ {
					row := r * 32
					acc := lane.Mul(v[0], mm[row], mt[row])
					for c := 1; c < 32; c++ {
						acc = lane.Add(acc, lane.Mul(v[c], mm[row+c], mt[row+c]))
					}
					acc.Store(psi, base+off[2*r], base+off[2*r+1])
				}
			}
			base = p.Next(base)
		}
	})
}

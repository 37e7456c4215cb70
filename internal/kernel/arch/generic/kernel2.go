package generic

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel2 applies a two-qubit gate.
func Kernel2(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)
	off := p.Offsets()
	d0, d1, d2 := off[1], off[2], off[3]

	var m [4][4]complex128
	for r := range m {
		copy(m[r][:], t.Matrix[r])
	}
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				v0, v1, v2, v3 := psi[base], psi[base+d0], psi[base+d1], psi[base+d2]
				psi[base] = m[0][0]*v0 + m[0][1]*v1 + m[0][2]*v2 + m[0][3]*v3
				psi[base+d0] = m[1][0]*v0 + m[1][1]*v1 + m[1][2]*v2 + m[1][3]*v3
				psi[base+d1] = m[2][0]*v0 + m[2][1]*v1 + m[2][2]*v2 + m[2][3]*v3
				psi[base+d2] = m[3][0]*v0 + m[3][1]*v1 + m[3][2]*v2 + m[3][3]*v3
			}
			base = p.Next(base)
		}
	})
}
